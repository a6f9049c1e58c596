package handlers

import (
	"fmt"
	"log"
	"net/http"

	"emporium/internal/apperrors"
	"emporium/internal/middleware"
	"emporium/internal/models"
	"emporium/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app. Reads are
// open to any authenticated user; catalog mutations are for managers and
// admins.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")

	staff := middleware.RequireRole(models.RoleAdmin, models.RoleManager)

	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:model", h.HandleGetProductByModel)
	productRoutes.Post("/", staff, h.HandleRegisterProduct)
	productRoutes.Patch("/:model/quantity", staff, h.HandleRestockProduct)
	productRoutes.Patch("/:model/sell", staff, h.HandleSellProduct)
	productRoutes.Delete("/:model", staff, h.HandleDeleteProduct)
	productRoutes.Delete("/", staff, h.HandleDeleteAllProducts)
}

func respondProductError(c *fiber.Ctx, err error, fallback string) error {
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

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return respondProductError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByModel retrieves a single product by its model.
func (h *ProductHandler) HandleGetProductByModel(c *fiber.Ctx) error {
	model := c.Params("model")
	product, err := h.service.GetProductByModel(model)
	if err != nil {
		log.Printf("Error getting product %s: %v", model, err)
		return respondProductError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleRegisterProduct adds a new product to the catalog.
func (h *ProductHandler) HandleRegisterProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(product); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	if err := h.service.RegisterProduct(&product); err != nil {
		log.Printf("Error registering product %s: %v", product.Model, err)
		return respondProductError(c, err, "Could not register product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleRestockProduct raises a product's stock.
func (h *ProductHandler) HandleRestockProduct(c *fiber.Ctx) error {
	model := c.Params("model")
	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing restock request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	newQuantity, err := h.service.RestockProduct(model, input.Quantity)
	if err != nil {
		log.Printf("Error restocking product %s: %v", model, err)
		return respondProductError(c, err, "Could not restock product")
	}
	return c.JSON(fiber.Map{
		"quantity": newQuantity,
	})
}

// HandleSellProduct records a direct catalog sale.
func (h *ProductHandler) HandleSellProduct(c *fiber.Ctx) error {
	model := c.Params("model")
	var input struct {
		Quantity    int    `json:"quantity"`
		SellingDate string `json:"sellingDate"`
	}
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing sell request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	newQuantity, err := h.service.SellProduct(model, input.Quantity, input.SellingDate)
	if err != nil {
		log.Printf("Error selling product %s: %v", model, err)
		return respondProductError(c, err, "Could not sell product")
	}
	return c.JSON(fiber.Map{
		"quantity": newQuantity,
	})
}

// HandleDeleteProduct deletes a product by its model.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	model := c.Params("model")
	if err := h.service.DeleteProduct(model); err != nil {
		log.Printf("Error deleting product %s: %v", model, err)
		return respondProductError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted",
	})
}

// HandleDeleteAllProducts wipes the catalog.
func (h *ProductHandler) HandleDeleteAllProducts(c *fiber.Ctx) error {
	if err := h.service.DeleteAllProducts(); err != nil {
		log.Printf("Error deleting all products: %v", err)
		return respondProductError(c, err, "Could not delete products")
	}
	return c.JSON(fiber.Map{
		"message": "All products deleted",
	})
}
