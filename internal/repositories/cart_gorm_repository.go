package repositories

import (
	"errors"
	"fmt"
	"time"

	"emporium/internal/apperrors"
	"emporium/internal/models"

	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository. It holds a
// ProductRepository because checkout reads and decrements catalog stock.
type GORMCartRepository struct {
	db       *gorm.DB
	products ProductRepository
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB, products ProductRepository) *GORMCartRepository {
	return &GORMCartRepository{
		db:       db,
		products: products,
	}
}

// GetCart retrieves a cart with its line items and derived total.
func (r *GORMCartRepository) GetCart(id uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart %d: %w", id, err)
	}
	items, err := r.getLineItems(id)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	cart.ComputeTotal()
	return &cart, nil
}

// GetActiveCartID retrieves the id of the customer's unpaid cart.
func (r *GORMCartRepository) GetActiveCartID(username string) (uint, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "customer = ? AND paid = ?", username, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrCartNotFound
		}
		return 0, fmt.Errorf("failed to get active cart of %s: %w", username, err)
	}
	return cart.ID, nil
}

// CreateEmptyCart creates a new unpaid cart for the customer.
func (r *GORMCartRepository) CreateEmptyCart(username string) error {
	if _, err := r.GetActiveCartID(username); err == nil {
		return apperrors.ErrCartAlreadyExists
	} else if !errors.Is(err, apperrors.ErrCartNotFound) {
		return err
	}
	cart := models.Cart{Customer: username, Paid: false, PaymentDate: ""}
	if err := r.db.Create(&cart).Error; err != nil {
		return fmt.Errorf("failed to create cart for %s: %w", username, err)
	}
	return nil
}

// GetLineItem retrieves the line item for a product in a cart.
func (r *GORMCartRepository) GetLineItem(cartID uint, model string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.First(&item, "cart_id = ? AND model = ?", cartID, model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotInCart
		}
		return nil, fmt.Errorf("failed to get line item %s of cart %d: %w", model, cartID, err)
	}
	return &item, nil
}

// AddLineItem inserts a quantity-1 line item snapshotting the product's
// current category and selling price.
func (r *GORMCartRepository) AddLineItem(cartID uint, product *models.Product) error {
	item := models.CartItem{
		CartID:   cartID,
		Model:    product.Model,
		Quantity: 1,
		Category: product.Category,
		Price:    product.SellingPrice,
	}
	if err := r.db.Create(&item).Error; err != nil {
		return fmt.Errorf("failed to add %s to cart %d: %w", product.Model, cartID, err)
	}
	return nil
}

// IncrementQuantity raises the quantity of a line item by one.
func (r *GORMCartRepository) IncrementQuantity(cartID uint, model string) error {
	return r.adjustQuantity(cartID, model, "quantity + 1")
}

// DecrementQuantity lowers the quantity of a line item by one.
func (r *GORMCartRepository) DecrementQuantity(cartID uint, model string) error {
	return r.adjustQuantity(cartID, model, "quantity - 1")
}

func (r *GORMCartRepository) adjustQuantity(cartID uint, model string, expr string) error {
	res := r.db.Model(&models.CartItem{}).
		Where("cart_id = ? AND model = ?", cartID, model).
		Update("quantity", gorm.Expr(expr))
	if res.Error != nil {
		return fmt.Errorf("failed to adjust quantity of %s in cart %d: %w", model, cartID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrProductNotInCart
	}
	return nil
}

// RemoveLineItem deletes the line item regardless of its quantity.
func (r *GORMCartRepository) RemoveLineItem(cartID uint, model string) error {
	if err := r.db.Delete(&models.CartItem{}, "cart_id = ? AND model = ?", cartID, model).Error; err != nil {
		return fmt.Errorf("failed to remove %s from cart %d: %w", model, cartID, err)
	}
	return nil
}

// Checkout converts an unpaid cart into a paid order. Stock sufficiency is
// checked for every line item before any stock is decremented, so a failed
// checkout leaves catalog quantities untouched. The per-item Sell call
// re-validates on its own, which can still fail if stock moved between the
// two passes; there is no lock closing that window.
func (r *GORMCartRepository) Checkout(cartID uint) error {
	items, err := r.getLineItems(cartID)
	if err != nil {
		return err
	}
	today := time.Now().Format("2006-01-02")

	for _, item := range items {
		product, err := r.products.GetByModel(item.Model)
		if err != nil {
			return err
		}
		if product.Quantity < item.Quantity {
			return apperrors.ErrNegativeQuantity
		}
	}

	for _, item := range items {
		if _, err := r.products.Sell(item.Model, item.Quantity); err != nil {
			return err
		}
	}

	if err := r.db.Model(&models.Cart{}).Where("id = ?", cartID).
		Updates(map[string]interface{}{"paid": true, "payment_date": today}).Error; err != nil {
		return fmt.Errorf("failed to mark cart %d as paid: %w", cartID, err)
	}
	return nil
}

// ListPaidCarts retrieves every cart the customer has checked out.
func (r *GORMCartRepository) ListPaidCarts(username string) ([]models.Cart, error) {
	return r.listCarts("customer = ? AND paid = ?", username, true)
}

// ListAllCarts retrieves every cart in the system, paid or not.
func (r *GORMCartRepository) ListAllCarts() ([]models.Cart, error) {
	return r.listCarts("1 = 1")
}

// DeleteAllCarts wipes every cart. Line items are wiped separately via
// DeleteAllLineItems.
func (r *GORMCartRepository) DeleteAllCarts() error {
	if err := r.db.Where("1 = 1").Delete(&models.Cart{}).Error; err != nil {
		return fmt.Errorf("failed to delete all carts: %w", err)
	}
	return nil
}

// DeleteAllLineItems wipes every line item of every cart.
func (r *GORMCartRepository) DeleteAllLineItems() error {
	if err := r.db.Where("1 = 1").Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete all line items: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) getLineItems(cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Find(&items, "cart_id = ?", cartID).Error; err != nil {
		return nil, fmt.Errorf("failed to get line items of cart %d: %w", cartID, err)
	}
	return items, nil
}

func (r *GORMCartRepository) listCarts(query string, args ...interface{}) ([]models.Cart, error) {
	var carts []models.Cart
	if err := r.db.Where(query, args...).Find(&carts).Error; err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	for i := range carts {
		items, err := r.getLineItems(carts[i].ID)
		if err != nil {
			return nil, err
		}
		carts[i].Items = items
		carts[i].ComputeTotal()
	}
	return carts, nil
}
