package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nkozdemir/fakestore-backend/models"
)

// ProductFilters narrows a product listing.
type ProductFilters struct {
	Category string
}

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	FindByID(ctx context.Context, id int) (*models.Product, error)
	FindAll(ctx context.Context, page, limit int, filters ProductFilters) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	ReplaceCategories(ctx context.Context, product *models.Product, categories []models.Category) error
	// UpdateRating rewrites the denormalized rate/count columns.
	UpdateRating(ctx context.Context, id int, rate float64, count int) error
	Delete(ctx context.Context, id int) error
}

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository.
func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Categories").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindAll retrieves paginated products, optionally filtered by category name.
func (r *GormProductRepository) FindAll(ctx context.Context, page, limit int, filters ProductFilters) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if filters.Category != "" {
		query = query.
			Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Joins("JOIN categories c ON c.id = pc.category_id").
			Where("LOWER(c.name) = LOWER(?)", filters.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Categories").
		Offset(offset).
		Limit(limit).
		Order("products.id").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Categories").Save(product).Error
}

// ReplaceCategories rewrites the product's category associations.
func (r *GormProductRepository) ReplaceCategories(ctx context.Context, product *models.Product, categories []models.Category) error {
	return r.db.WithContext(ctx).Model(product).Association("Categories").Replace(categories)
}

func (r *GormProductRepository) UpdateRating(ctx context.Context, id int, rate float64, count int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"rate": rate, "count": count}).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, id int) error {
	result := r.db.WithContext(ctx).Select("Categories").Delete(&models.Product{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
