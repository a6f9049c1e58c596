package services

import (
	"time"

	"emporium/internal/apperrors"
	"emporium/internal/models"
	"emporium/internal/repositories"
)

// ProductService handles business logic related to the product catalog.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByModel retrieves a single product by its model.
func (s *ProductService) GetProductByModel(model string) (*models.Product, error) {
	return s.repo.GetByModel(model)
}

// RegisterProduct adds a new product to the catalog. An omitted arrival
// date defaults to today; a future one is rejected.
func (s *ProductService) RegisterProduct(product *models.Product) error {
	today := time.Now().Format("2006-01-02")
	if product.ArrivalDate == "" {
		product.ArrivalDate = today
	} else if product.ArrivalDate > today {
		return apperrors.ErrArrivalDateInFuture
	}
	return s.repo.Create(product)
}

// RestockProduct raises a product's stock by delta units and returns the
// new quantity.
func (s *ProductService) RestockProduct(model string, delta int) (int, error) {
	return s.repo.ChangeQuantity(model, delta)
}

// SellProduct records a direct catalog sale of quantity units, outside any
// cart. An omitted selling date defaults to today; a date before the
// product's arrival is rejected.
func (s *ProductService) SellProduct(model string, quantity int, sellingDate string) (int, error) {
	if sellingDate == "" {
		sellingDate = time.Now().Format("2006-01-02")
	}
	product, err := s.repo.GetByModel(model)
	if err != nil {
		return 0, err
	}
	if product.ArrivalDate != "" && sellingDate < product.ArrivalDate {
		return 0, apperrors.ErrSellBeforeArrival
	}
	return s.repo.Sell(model, quantity)
}

// DeleteProduct deletes a product by its model.
func (s *ProductService) DeleteProduct(model string) error {
	return s.repo.Delete(model)
}

// DeleteAllProducts wipes the catalog.
func (s *ProductService) DeleteAllProducts() error {
	return s.repo.DeleteAll()
}
