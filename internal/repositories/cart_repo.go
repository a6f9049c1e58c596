package repositories

import (
	"emporium/internal/models"
)

// CartRepository defines the interface for cart and line-item data access.
// It persists state and performs existence checks; business rules beyond
// that live in the cart service.
type CartRepository interface {
	// GetCart returns the full cart, items included, with its derived total.
	GetCart(id uint) (*models.Cart, error)
	// GetActiveCartID returns the id of the customer's single unpaid cart.
	GetActiveCartID(username string) (uint, error)
	// CreateEmptyCart creates a new unpaid cart with no items. It fails when
	// the customer already has an unpaid cart; callers are expected to check
	// first, this is a safety net.
	CreateEmptyCart(username string) error
	GetLineItem(cartID uint, model string) (*models.CartItem, error)
	// AddLineItem inserts a quantity-1 line item snapshotting the product's
	// current category and selling price. The (cart, model) pair must not
	// already exist; callers check via GetLineItem first.
	AddLineItem(cartID uint, product *models.Product) error
	IncrementQuantity(cartID uint, model string) error
	// DecrementQuantity lowers the quantity by one. It does not forbid
	// reaching zero; callers remove the row instead when it would.
	DecrementQuantity(cartID uint, model string) error
	RemoveLineItem(cartID uint, model string) error
	// Checkout validates stock for every line item, decrements catalog stock
	// and marks the cart paid with today's date. The sufficiency check runs
	// for all items before any stock is decremented.
	Checkout(cartID uint) error
	ListPaidCarts(username string) ([]models.Cart, error)
	ListAllCarts() ([]models.Cart, error)
	DeleteAllCarts() error
	DeleteAllLineItems() error
}
