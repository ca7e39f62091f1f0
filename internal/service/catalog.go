package service

import (
	"context"
	"fmt"

	"github.com/aman-churiwal/devtools-profiler/internal/models"
	"github.com/aman-churiwal/devtools-profiler/internal/profiler"
	"github.com/aman-churiwal/devtools-profiler/internal/repository"
)

const DefaultPageSize = 20

// CatalogService backs the demo storefront
type CatalogService struct {
	repo *repository.ProductRepository
}

func NewCatalogService(repo *repository.ProductRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func (s *CatalogService) List(ctx context.Context, page, pageSize int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	products, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	profiler.Debug(ctx).Info("Catalog page loaded", map[string]any{
		"page":     page,
		"returned": len(products),
		"total":    total,
	})

	return &ProductPage{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *CatalogService) Get(ctx context.Context, sku string) (*models.Product, error) {
	product, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *CatalogService) Create(ctx context.Context, product *models.Product) error {
	if err := s.repo.Create(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Seed inserts the demo products that are not present yet
func (s *CatalogService) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, p := range demoProducts() {
		existing, err := s.repo.FindBySKU(ctx, p.SKU)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		product := p
		if err := s.repo.Create(ctx, &product); err != nil {
			return created, fmt.Errorf("failed to seed %s: %w", p.SKU, err)
		}
		created++
	}

	return created, nil
}

func demoProducts() []models.Product {
	return []models.Product{
		{SKU: "LAMP-001", Name: "Desk Lamp", Description: "Adjustable LED desk lamp", PriceCents: 3499, Stock: 40},
		{SKU: "CHAIR-002", Name: "Office Chair", Description: "Mesh back office chair", PriceCents: 18900, Stock: 12},
		{SKU: "MUG-003", Name: "Coffee Mug", Description: "Stoneware mug, 350 ml", PriceCents: 1299, Stock: 150},
		{SKU: "DESK-004", Name: "Standing Desk", Description: "Electric height adjustable desk", PriceCents: 54900, Stock: 5},
	}
}
