package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Service maintains the product catalog and serves price lookups for carts.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListProducts(ctx context.Context, categoryID *int16) ([]Product, error) {
	return s.repo.ListProducts(ctx, categoryID)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// FindProduct is the lookup used by carts to capture a product's current price.
func (s *Service) FindProduct(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if err := s.validate(ctx, &p); err != nil {
		return Product{}, err
	}
	if err := s.repo.CreateProduct(ctx, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, p Product) (Product, error) {
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return Product{}, err
	}
	p.ID = id
	if err := s.validate(ctx, &p); err != nil {
		return Product{}, err
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) validate(ctx context.Context, p *Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.CategoryID == nil {
		return ErrCategoryNotFound
	}
	if _, err := s.repo.GetCategory(ctx, *p.CategoryID); err != nil {
		return err
	}
	return nil
}
