package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nkozdemir/fakestore-backend/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	FindByID(ctx context.Context, id int) (*models.Cart, error)
	// FindByOwner returns (nil, nil) when the user owns no cart.
	FindByOwner(ctx context.Context, userID int) (*models.Cart, error)
	FindAll(ctx context.Context, userID *int) ([]models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	// Replace atomically persists the cart's new owner, date and line-item
	// set. Either everything commits or nothing does.
	Replace(ctx context.Context, cartID int, userID int, date time.Time, items []models.CartItem) error
	Delete(ctx context.Context, cartID int) error
}

// GormCartRepository implements CartRepository using GORM.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository.
func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

// FindByID retrieves a cart with its line items.
func (r *GormCartRepository) FindByID(ctx context.Context, id int) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByOwner retrieves the cart owned by userID, or nil when none exists.
func (r *GormCartRepository) FindByOwner(ctx context.Context, userID int) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&cart, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindAll retrieves carts, optionally filtered by owner.
func (r *GormCartRepository) FindAll(ctx context.Context, userID *int) ([]models.Cart, error) {
	var carts []models.Cart
	query := r.db.WithContext(ctx).Preload("Items").Order("id")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if err := query.Find(&carts).Error; err != nil {
		return nil, err
	}
	return carts, nil
}

// Create inserts a new cart together with its line items.
func (r *GormCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

// Replace rewrites the cart's scalar fields and line items in one
// transaction.
func (r *GormCartRepository) Replace(ctx context.Context, cartID int, userID int, date time.Time, items []models.CartItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"user_id": userID, "date": date}
		result := tx.Model(&models.Cart{}).Where("id = ?", cartID).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].CartID = cartID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a cart and, via the FK cascade, its line items.
func (r *GormCartRepository) Delete(ctx context.Context, cartID int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Cart{}, "id = ?", cartID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
