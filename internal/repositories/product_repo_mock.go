package repositories

import (
	"sync"

	"emporium/internal/apperrors"
	"emporium/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// GetByModel returns a product by its model.
func (r *MockProductRepository) GetByModel(model string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[model]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.Model]; ok {
		return apperrors.ErrProductAlreadyExists
	}
	r.products[product.Model] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.Model]; !ok {
		return apperrors.ErrProductNotFound
	}
	r.products[product.Model] = *product
	return nil
}

// ChangeQuantity adds delta units of stock and returns the new quantity.
func (r *MockProductRepository) ChangeQuantity(model string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[model]
	if !ok {
		return 0, apperrors.ErrProductNotFound
	}
	if delta < 0 || product.Quantity+delta < 0 {
		return 0, apperrors.ErrInvalidQuantity
	}
	product.Quantity += delta
	r.products[model] = product
	return product.Quantity, nil
}

// Sell removes quantity units of stock and returns the new quantity.
func (r *MockProductRepository) Sell(model string, quantity int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if quantity <= 0 {
		return 0, apperrors.ErrInvalidQuantity
	}
	product, ok := r.products[model]
	if !ok {
		return 0, apperrors.ErrProductNotFound
	}
	if product.Quantity < quantity {
		return 0, apperrors.ErrLowProductStock
	}
	product.Quantity -= quantity
	r.products[model] = product
	return product.Quantity, nil
}

// Delete removes a product by its model.
func (r *MockProductRepository) Delete(model string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[model]; !ok {
		return apperrors.ErrProductNotFound
	}
	delete(r.products, model)
	return nil
}

// DeleteAll removes every product.
func (r *MockProductRepository) DeleteAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = make(map[string]models.Product)
	return nil
}
