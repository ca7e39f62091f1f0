package repository

import (
	"context"

	"github.com/aman-churiwal/devtools-profiler/internal/models"
	"github.com/aman-churiwal/devtools-profiler/internal/storage"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *storage.Database
}

func NewProductRepository(db *storage.Database) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.DB.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.DB.WithContext(ctx).
		Where("sku = ?", sku).
		First(&product).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.DB.WithContext(ctx).
		Order("name").
		Limit(limit).
		Offset(offset).
		Find(&products).Error

	return products, err
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.Product{}).
		Count(&count).Error

	return count, err
}

func (r *ProductRepository) UpdateStock(ctx context.Context, sku string, delta int) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("sku = ?", sku).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}
