package repositories

import (
	"sync"
	"time"

	"emporium/internal/apperrors"
	"emporium/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository. Like
// the GORM implementation it holds a ProductRepository for checkout.
type MockCartRepository struct {
	carts    map[uint]*models.Cart
	nextID   uint
	products ProductRepository
	mu       sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository(products ProductRepository) *MockCartRepository {
	return &MockCartRepository{
		carts:    make(map[uint]*models.Cart),
		nextID:   1,
		products: products,
	}
}

// GetCart returns a copy of the cart with its derived total.
func (r *MockCartRepository) GetCart(id uint) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[id]
	if !ok {
		return nil, apperrors.ErrCartNotFound
	}
	copied := *cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	copied.ComputeTotal()
	return &copied, nil
}

// GetActiveCartID returns the id of the customer's unpaid cart.
func (r *MockCartRepository) GetActiveCartID(username string) (uint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, cart := range r.carts {
		if cart.Customer == username && !cart.Paid {
			return id, nil
		}
	}
	return 0, apperrors.ErrCartNotFound
}

// CreateEmptyCart creates a new unpaid cart for the customer.
func (r *MockCartRepository) CreateEmptyCart(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cart := range r.carts {
		if cart.Customer == username && !cart.Paid {
			return apperrors.ErrCartAlreadyExists
		}
	}
	cart := models.NewEmptyCart(username)
	cart.ID = r.nextID
	r.nextID++
	r.carts[cart.ID] = cart
	return nil
}

// GetLineItem returns the line item for a product in a cart.
func (r *MockCartRepository) GetLineItem(cartID uint, model string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return nil, apperrors.ErrProductNotInCart
	}
	for _, item := range cart.Items {
		if item.Model == model {
			copied := item
			return &copied, nil
		}
	}
	return nil, apperrors.ErrProductNotInCart
}

// AddLineItem inserts a quantity-1 line item with snapshot price/category.
func (r *MockCartRepository) AddLineItem(cartID uint, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return apperrors.ErrCartNotFound
	}
	cart.Items = append(cart.Items, models.CartItem{
		CartID:   cartID,
		Model:    product.Model,
		Quantity: 1,
		Category: product.Category,
		Price:    product.SellingPrice,
	})
	return nil
}

// IncrementQuantity raises the quantity of a line item by one.
func (r *MockCartRepository) IncrementQuantity(cartID uint, model string) error {
	return r.adjustQuantity(cartID, model, 1)
}

// DecrementQuantity lowers the quantity of a line item by one.
func (r *MockCartRepository) DecrementQuantity(cartID uint, model string) error {
	return r.adjustQuantity(cartID, model, -1)
}

func (r *MockCartRepository) adjustQuantity(cartID uint, model string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return apperrors.ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].Model == model {
			cart.Items[i].Quantity += delta
			return nil
		}
	}
	return apperrors.ErrProductNotInCart
}

// RemoveLineItem deletes the line item regardless of its quantity.
func (r *MockCartRepository) RemoveLineItem(cartID uint, model string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return apperrors.ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].Model == model {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrProductNotInCart
}

// Checkout validates stock for every line item before decrementing any,
// then marks the cart paid with today's date.
func (r *MockCartRepository) Checkout(cartID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return apperrors.ErrCartNotFound
	}

	for _, item := range cart.Items {
		product, err := r.products.GetByModel(item.Model)
		if err != nil {
			return err
		}
		if product.Quantity < item.Quantity {
			return apperrors.ErrNegativeQuantity
		}
	}

	for _, item := range cart.Items {
		if _, err := r.products.Sell(item.Model, item.Quantity); err != nil {
			return err
		}
	}

	cart.Paid = true
	cart.PaymentDate = time.Now().Format("2006-01-02")
	return nil
}

// ListPaidCarts returns every cart the customer has checked out.
func (r *MockCartRepository) ListPaidCarts(username string) ([]models.Cart, error) {
	return r.listCarts(func(c *models.Cart) bool {
		return c.Customer == username && c.Paid
	})
}

// ListAllCarts returns every cart, paid or not.
func (r *MockCartRepository) ListAllCarts() ([]models.Cart, error) {
	return r.listCarts(func(*models.Cart) bool { return true })
}

// DeleteAllCarts wipes every cart.
func (r *MockCartRepository) DeleteAllCarts() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts = make(map[uint]*models.Cart)
	return nil
}

// DeleteAllLineItems wipes every line item, leaving the carts in place.
func (r *MockCartRepository) DeleteAllLineItems() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cart := range r.carts {
		cart.Items = nil
	}
	return nil
}

func (r *MockCartRepository) listCarts(keep func(*models.Cart) bool) ([]models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	carts := make([]models.Cart, 0, len(r.carts))
	for _, cart := range r.carts {
		if !keep(cart) {
			continue
		}
		copied := *cart
		copied.Items = append([]models.CartItem(nil), cart.Items...)
		copied.ComputeTotal()
		carts = append(carts, copied)
	}
	return carts, nil
}
