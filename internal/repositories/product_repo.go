package repositories

import (
	"emporium/internal/models"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByModel(model string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	// ChangeQuantity adds delta units of stock and returns the new quantity.
	ChangeQuantity(model string, delta int) (int, error)
	// Sell removes quantity units of stock and returns the new quantity.
	// It re-validates availability and fails when stock cannot satisfy the
	// request, even if a caller checked beforehand.
	Sell(model string, quantity int) (int, error)
	Delete(model string) error
	DeleteAll() error
}
