package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nkozdemir/fakestore-backend/models"
)

// RatingRepository defines the interface for product rating data access.
type RatingRepository interface {
	// FindByProductUser returns (nil, nil) when the user has not rated the
	// product.
	FindByProductUser(ctx context.Context, productID, userID int) (*models.Rating, error)
	ListByProduct(ctx context.Context, productID int) ([]models.Rating, error)
	// Save upserts the user's rating for the product.
	Save(ctx context.Context, rating *models.Rating) error
	// Delete removes the user's rating and reports whether one existed.
	Delete(ctx context.Context, productID, userID int) (bool, error)
}

// GormRatingRepository implements RatingRepository using GORM.
type GormRatingRepository struct {
	db *gorm.DB
}

// NewGormRatingRepository creates a new GormRatingRepository.
func NewGormRatingRepository(db *gorm.DB) RatingRepository {
	return &GormRatingRepository{db: db}
}

func (r *GormRatingRepository) FindByProductUser(ctx context.Context, productID, userID int) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).First(&rating, "product_id = ? AND user_id = ?", productID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *GormRatingRepository) ListByProduct(ctx context.Context, productID int) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := r.db.WithContext(ctx).Order("user_id").Find(&ratings, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *GormRatingRepository) Save(ctx context.Context, rating *models.Rating) error {
	existing, err := r.FindByProductUser(ctx, rating.ProductID, rating.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.Value = rating.Value
		*rating = *existing
		return r.db.WithContext(ctx).Save(existing).Error
	}
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *GormRatingRepository) Delete(ctx context.Context, productID, userID int) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Rating{}, "product_id = ? AND user_id = ?", productID, userID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
