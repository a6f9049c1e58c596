package services

import (
	"encoding/json"
	"errors"
	"log"

	"emporium/internal/apperrors"
	"emporium/internal/models"
	"emporium/internal/repositories"
)

// EventPublisher publishes domain events to a message broker. It is
// satisfied by the rabbitmq client; a nil publisher disables publication.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// CartService handles business logic related to shopping carts. It enforces
// the one-active-cart-per-user rule and implements the higher-level cart
// workflows on top of the cart and product repositories.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	mqClient    EventPublisher
}

// NewCartService creates a new CartService. mqClient may be nil, in which
// case checkout events are not published.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, mqClient EventPublisher) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		mqClient:    mqClient,
	}
}

// ActiveCartID resolves the id of the user's unpaid cart. When none exists
// and createIfMissing is set, a fresh empty cart is created and its id
// returned; otherwise the lookup failure propagates.
func (s *CartService) ActiveCartID(user *models.User, createIfMissing bool) (uint, error) {
	id, err := s.cartRepo.GetActiveCartID(user.Username)
	if err == nil {
		return id, nil
	}
	if !createIfMissing || !errors.Is(err, apperrors.ErrCartNotFound) {
		return 0, err
	}
	if err := s.cartRepo.CreateEmptyCart(user.Username); err != nil {
		return 0, err
	}
	return s.cartRepo.GetActiveCartID(user.Username)
}

// AddProductToCart adds one unit of a product to the user's active cart,
// creating the cart if there is none. Adding a product already in the cart
// raises its quantity by one instead of creating a second line item.
// Products whose catalog stock is exhausted cannot be added at all.
func (s *CartService) AddProductToCart(user *models.User, model string) error {
	cartID, err := s.ActiveCartID(user, true)
	if err != nil {
		return err
	}
	product, err := s.productRepo.GetByModel(model)
	if err != nil {
		return err
	}
	if product.Quantity <= 0 {
		return apperrors.ErrNegativeQuantity
	}

	if _, err := s.cartRepo.GetLineItem(cartID, model); err != nil {
		if errors.Is(err, apperrors.ErrProductNotInCart) {
			return s.cartRepo.AddLineItem(cartID, product)
		}
		return err
	}
	return s.cartRepo.IncrementQuantity(cartID, model)
}

// CurrentCart returns the user's active cart. A user who never added
// anything gets an empty, unpaid, zero-total cart rather than an error, so
// callers always see a uniform "current cart" view.
func (s *CartService) CurrentCart(user *models.User) (*models.Cart, error) {
	cartID, err := s.cartRepo.GetActiveCartID(user.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrCartNotFound) {
			return models.NewEmptyCart(user.Username), nil
		}
		return nil, err
	}
	return s.cartRepo.GetCart(cartID)
}

// RemoveProductFromCart removes one unit of a product from the user's
// active cart. When only one unit is left the line item is deleted.
func (s *CartService) RemoveProductFromCart(user *models.User, model string) error {
	cartID, err := s.ActiveCartID(user, true)
	if err != nil {
		return err
	}
	product, err := s.productRepo.GetByModel(model)
	if err != nil {
		return err
	}
	item, err := s.cartRepo.GetLineItem(cartID, product.Model)
	if err != nil {
		return err
	}
	if item.Quantity <= 1 {
		return s.cartRepo.RemoveLineItem(cartID, product.Model)
	}
	return s.cartRepo.DecrementQuantity(cartID, product.Model)
}

// ClearCart removes every line item from the user's active cart, one by
// one. The first removal failure aborts the loop, which can leave the cart
// partially cleared.
func (s *CartService) ClearCart(user *models.User) error {
	cartID, err := s.ActiveCartID(user, true)
	if err != nil {
		return err
	}
	cart, err := s.cartRepo.GetCart(cartID)
	if err != nil {
		return err
	}
	for _, item := range cart.Items {
		if err := s.cartRepo.RemoveLineItem(cartID, item.Model); err != nil {
			return err
		}
	}
	return nil
}

// CheckoutCart converts the user's active cart into a paid order. The cart
// must exist and hold at least one line item; stock validation and the
// inventory decrement happen inside the repository's Checkout.
func (s *CartService) CheckoutCart(user *models.User) error {
	cartID, err := s.cartRepo.GetActiveCartID(user.Username)
	if err != nil {
		return err
	}
	cart, err := s.cartRepo.GetCart(cartID)
	if err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return apperrors.ErrEmptyCart
	}
	if err := s.cartRepo.Checkout(cartID); err != nil {
		return err
	}

	s.publishCheckedOut(user.Username, cartID, cart.Total)
	return nil
}

// publishCheckedOut emits a checkout event. Publication failures are
// logged and never fail the checkout itself.
func (s *CartService) publishCheckedOut(username string, cartID uint, total float64) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}

	event := map[string]interface{}{
		"cartID":   cartID,
		"customer": username,
		"total":    total,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal checkout event to JSON: %v", err)
		return
	}
	// Empty exchange and routing key make the client route to its declared
	// checkout queue on the default exchange.
	if err := s.mqClient.Publish("", "", body); err != nil {
		log.Printf("Warning: Failed to publish checkout event for cart %d: %v", cartID, err)
	} else {
		log.Printf("Successfully published checkout event for cart %d", cartID)
	}
}

// CustomerCarts returns every cart the user has paid for. The current
// unpaid cart is never included since paid carts are a disjoint set.
func (s *CartService) CustomerCarts(user *models.User) ([]models.Cart, error) {
	return s.cartRepo.ListPaidCarts(user.Username)
}

// AllCarts returns every cart in the system regardless of owner or state.
// Role enforcement lives in the HTTP middleware, not here.
func (s *CartService) AllCarts() ([]models.Cart, error) {
	return s.cartRepo.ListAllCarts()
}

// DeleteAllCarts wipes every cart and line item in the system.
func (s *CartService) DeleteAllCarts() error {
	if err := s.cartRepo.DeleteAllLineItems(); err != nil {
		return err
	}
	return s.cartRepo.DeleteAllCarts()
}
