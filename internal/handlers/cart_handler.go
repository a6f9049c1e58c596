package handlers

import (
	"log"
	"net/http"

	"emporium/internal/apperrors"
	"emporium/internal/middleware"
	"emporium/internal/models"
	"emporium/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for shopping carts.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app. Customers
// operate on their own cart; listing and wiping every cart in the system is
// reserved to admins and managers.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts")

	customer := middleware.RequireRole(models.RoleCustomer)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleManager)

	cartRoutes.Get("/current", customer, h.HandleGetCurrentCart)
	cartRoutes.Post("/", customer, h.HandleAddProduct)
	cartRoutes.Patch("/", customer, h.HandleCheckout)
	cartRoutes.Get("/history", customer, h.HandleGetHistory)
	cartRoutes.Delete("/products/:model", customer, h.HandleRemoveProduct)
	cartRoutes.Delete("/current", customer, h.HandleClearCart)

	cartRoutes.Get("/all", staff, h.HandleGetAllCarts)
	cartRoutes.Delete("/", staff, h.HandleDeleteAllCarts)
}

// currentUser rebuilds the authenticated user from the JWT claims the auth
// middleware stored in the request context.
func currentUser(c *fiber.Ctx) *models.User {
	username, _ := c.Locals("username").(string)
	role, _ := c.Locals("role").(string)
	return &models.User{Username: username, Role: role}
}

// respondCartError maps domain errors to their status code; anything
// outside the taxonomy becomes a 500.
func respondCartError(c *fiber.Ctx, err error, fallback string) error {
	code := apperrors.StatusCode(err)
	if code == http.StatusInternalServerError {
		return c.Status(code).JSON(fiber.Map{
			"message": fallback,
			"error":   err.Error(),
		})
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}

// HandleGetCurrentCart returns the user's active cart, or an empty unpaid
// cart if none was ever created.
func (h *CartHandler) HandleGetCurrentCart(c *fiber.Ctx) error {
	cart, err := h.service.CurrentCart(currentUser(c))
	if err != nil {
		log.Printf("Error getting current cart: %v", err)
		return respondCartError(c, err, "Could not retrieve cart")
	}
	return c.JSON(cart)
}

// HandleAddProduct adds one unit of a product to the user's active cart.
func (h *CartHandler) HandleAddProduct(c *fiber.Ctx) error {
	var input struct {
		Model string `json:"model"`
	}
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing add-to-cart request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if input.Model == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product model is required",
		})
	}

	if err := h.service.AddProductToCart(currentUser(c), input.Model); err != nil {
		log.Printf("Error adding product %s to cart: %v", input.Model, err)
		return respondCartError(c, err, "Could not add product to cart")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Product added to cart",
	})
}

// HandleCheckout converts the user's active cart into a paid order.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	if err := h.service.CheckoutCart(currentUser(c)); err != nil {
		log.Printf("Error checking out cart: %v", err)
		return respondCartError(c, err, "Could not check out cart")
	}
	return c.JSON(fiber.Map{
		"message": "Cart checked out successfully",
	})
}

// HandleGetHistory returns every cart the user has paid for.
func (h *CartHandler) HandleGetHistory(c *fiber.Ctx) error {
	carts, err := h.service.CustomerCarts(currentUser(c))
	if err != nil {
		log.Printf("Error getting cart history: %v", err)
		return respondCartError(c, err, "Could not retrieve cart history")
	}
	return c.JSON(carts)
}

// HandleRemoveProduct removes one unit of a product from the user's cart.
func (h *CartHandler) HandleRemoveProduct(c *fiber.Ctx) error {
	model := c.Params("model")
	if err := h.service.RemoveProductFromCart(currentUser(c), model); err != nil {
		log.Printf("Error removing product %s from cart: %v", model, err)
		return respondCartError(c, err, "Could not remove product from cart")
	}
	return c.JSON(fiber.Map{
		"message": "Product removed from cart",
	})
}

// HandleClearCart removes every product from the user's active cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.ClearCart(currentUser(c)); err != nil {
		log.Printf("Error clearing cart: %v", err)
		return respondCartError(c, err, "Could not clear cart")
	}
	return c.JSON(fiber.Map{
		"message": "Cart cleared",
	})
}

// HandleGetAllCarts returns every cart in the system.
func (h *CartHandler) HandleGetAllCarts(c *fiber.Ctx) error {
	carts, err := h.service.AllCarts()
	if err != nil {
		log.Printf("Error getting all carts: %v", err)
		return respondCartError(c, err, "Could not retrieve carts")
	}
	return c.JSON(carts)
}

// HandleDeleteAllCarts wipes every cart and line item in the system.
func (h *CartHandler) HandleDeleteAllCarts(c *fiber.Ctx) error {
	if err := h.service.DeleteAllCarts(); err != nil {
		log.Printf("Error deleting all carts: %v", err)
		return respondCartError(c, err, "Could not delete carts")
	}
	return c.JSON(fiber.Map{
		"message": "All carts deleted",
	})
}
