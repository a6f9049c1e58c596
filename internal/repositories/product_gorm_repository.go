package repositories

import (
	"errors"
	"fmt"

	"emporium/internal/apperrors"
	"emporium/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByModel retrieves a single product by its model from the database.
func (r *GORMProductRepository) GetByModel(model string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "model = ?", model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", model, err)
	}
	return &product, nil
}

// Create registers a new product in the catalog.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if _, err := r.GetByModel(product.Model); err == nil {
		return apperrors.ErrProductAlreadyExists
	} else if !errors.Is(err, apperrors.ErrProductNotFound) {
		return err
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

// ChangeQuantity adds delta units of stock to a product and returns the new
// quantity. Negative deltas are rejected; sales go through Sell instead.
func (r *GORMProductRepository) ChangeQuantity(model string, delta int) (int, error) {
	product, err := r.GetByModel(model)
	if err != nil {
		return 0, err
	}
	if delta < 0 || product.Quantity+delta < 0 {
		return 0, apperrors.ErrInvalidQuantity
	}
	newQuantity := product.Quantity + delta
	if err := r.db.Model(&models.Product{}).Where("model = ?", model).
		Update("quantity", newQuantity).Error; err != nil {
		return 0, fmt.Errorf("failed to change quantity of product %s: %w", model, err)
	}
	return newQuantity, nil
}

// Sell removes quantity units of stock from a product and returns the new
// quantity. Availability is validated here regardless of earlier checks.
func (r *GORMProductRepository) Sell(model string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, apperrors.ErrInvalidQuantity
	}
	product, err := r.GetByModel(model)
	if err != nil {
		return 0, err
	}
	if product.Quantity < quantity {
		return 0, apperrors.ErrLowProductStock
	}
	if err := r.db.Model(&models.Product{}).Where("model = ?", model).
		Update("quantity", gorm.Expr("quantity - ?", quantity)).Error; err != nil {
		return 0, fmt.Errorf("failed to sell product %s: %w", model, err)
	}
	return product.Quantity - quantity, nil
}

// Delete deletes a product by its model from the database.
func (r *GORMProductRepository) Delete(model string) error {
	res := r.db.Delete(&models.Product{}, "model = ?", model)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product %s: %w", model, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

// DeleteAll removes every product from the catalog.
func (r *GORMProductRepository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&models.Product{}).Error; err != nil {
		return fmt.Errorf("failed to delete all products: %w", err)
	}
	return nil
}
