package services

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/repository"
)

// ListProductsParams narrows and pages a catalog listing.
type ListProductsParams struct {
	Page     int
	Limit    int
	Category string
}

// ProductService defines the interface for catalog business logic. Reads
// are public; writes are operator-only and enforced at the routing layer.
type ProductService interface {
	ListProducts(ctx context.Context, params ListProductsParams) ([]models.Product, int64, *ServiceError)
	GetProduct(ctx context.Context, id int) (*models.Product, *ServiceError)
	CreateProduct(ctx context.Context, req *models.ProductCreateRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, id int, req *models.ProductUpdateRequest) (*models.Product, *ServiceError)
	DeleteProduct(ctx context.Context, id int) *ServiceError
	GetRatingSummary(ctx context.Context, productID int, userID *int) (*models.RatingSummary, *ServiceError)
	SetRating(ctx context.Context, productID, userID, value int) (*models.RatingSummary, *ServiceError)
	DeleteRating(ctx context.Context, productID, userID int) (*models.RatingSummary, *ServiceError)
	ListRatings(ctx context.Context, productID int) ([]models.Rating, *ServiceError)
	ListCategories(ctx context.Context) ([]models.Category, *ServiceError)
	GetCategory(ctx context.Context, id int) (*models.Category, *ServiceError)
	CreateCategory(ctx context.Context, req *models.CategoryCreateRequest) (*models.Category, *ServiceError)
	UpdateCategory(ctx context.Context, id int, req *models.CategoryCreateRequest) (*models.Category, *ServiceError)
	DeleteCategory(ctx context.Context, id int) *ServiceError
}

type productServiceImpl struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	ratings    repository.RatingRepository
	logger     *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository, ratings repository.RatingRepository, logger *zap.Logger) ProductService {
	return &productServiceImpl{products: products, categories: categories, ratings: ratings, logger: logger}
}

func (s *productServiceImpl) ListProducts(ctx context.Context, params ListProductsParams) ([]models.Product, int64, *ServiceError) {
	products, total, err := s.products.FindAll(ctx, params.Page, params.Limit, repository.ProductFilters{Category: params.Category})
	if err != nil {
		s.logger.Error("Product listing failed", zap.Error(err))
		return nil, 0, NewDependencyError("Failed to list products")
	}
	return products, total, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id int) (*models.Product, *ServiceError) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFound("Product not found", map[string]interface{}{"id": id})
	}
	if err != nil {
		s.logger.Error("Product lookup failed", zap.Int("product_id", id), zap.Error(err))
		return nil, NewDependencyError("Failed to load product")
	}
	return product, nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req *models.ProductCreateRequest) (*models.Product, *ServiceError) {
	categories, err := s.categories.FindOrCreateByNames(ctx, req.Categories)
	if err != nil {
		s.logger.Error("Category resolution failed", zap.Error(err))
		return nil, NewDependencyError("Failed to create product")
	}

	product := &models.Product{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Categories:  categories,
	}
	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Product creation failed", zap.String("title", req.Title), zap.Error(err))
		return nil, NewDependencyError("Failed to create product")
	}

	s.logger.Info("Product created", zap.Int("product_id", product.ID), zap.String("title", product.Title))
	return product, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, id int, req *models.ProductUpdateRequest) (*models.Product, *ServiceError) {
	product, svcErr := s.GetProduct(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Image != nil {
		product.Image = *req.Image
	}

	if err := s.products.Update(ctx, product); err != nil {
		s.logger.Error("Product update failed", zap.Int("product_id", id), zap.Error(err))
		return nil, NewDependencyError("Failed to update product")
	}

	if req.Categories != nil {
		categories, err := s.categories.FindOrCreateByNames(ctx, req.Categories)
		if err != nil {
			s.logger.Error("Category resolution failed", zap.Int("product_id", id), zap.Error(err))
			return nil, NewDependencyError("Failed to update product")
		}
		if err := s.products.ReplaceCategories(ctx, product, categories); err != nil {
			s.logger.Error("Category replace failed", zap.Int("product_id", id), zap.Error(err))
			return nil, NewDependencyError("Failed to update product")
		}
		product.Categories = categories
	}

	s.logger.Info("Product updated", zap.Int("product_id", id))
	return product, nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, id int) *ServiceError {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFound("Product not found", map[string]interface{}{"id": id})
	}
	if err != nil {
		s.logger.Error("Product deletion failed", zap.Int("product_id", id), zap.Error(err))
		return NewDependencyError("Failed to delete product")
	}
	s.logger.Info("Product deleted", zap.Int("product_id", id))
	return nil
}

// GetRatingSummary returns the product's aggregate rating plus the given
// user's own rating when a user id is supplied.
func (s *productServiceImpl) GetRatingSummary(ctx context.Context, productID int, userID *int) (*models.RatingSummary, *ServiceError) {
	product, svcErr := s.GetProduct(ctx, productID)
	if svcErr != nil {
		return nil, svcErr
	}

	summary := &models.RatingSummary{
		ProductID: product.ID,
		Rating:    models.RatingAggregate{Rate: product.Rate, Count: product.Count},
	}
	if userID != nil {
		rating, err := s.ratings.FindByProductUser(ctx, productID, *userID)
		if err != nil {
			s.logger.Error("Rating lookup failed", zap.Int("product_id", productID), zap.Error(err))
			return nil, NewDependencyError("Failed to load rating")
		}
		if rating != nil {
			summary.UserRating = &rating.Value
		}
	}
	return summary, nil
}

// SetRating upserts the user's rating, recomputes the product aggregate and
// returns the new summary.
func (s *productServiceImpl) SetRating(ctx context.Context, productID, userID, value int) (*models.RatingSummary, *ServiceError) {
	if value < 0 || value > 5 {
		return nil, NewValidationError("value must be between 0 and 5", map[string]interface{}{"value": value})
	}
	if _, svcErr := s.GetProduct(ctx, productID); svcErr != nil {
		return nil, svcErr
	}

	rating := &models.Rating{ProductID: productID, UserID: userID, Value: value}
	if err := s.ratings.Save(ctx, rating); err != nil {
		s.logger.Error("Rating save failed", zap.Int("product_id", productID), zap.Int("user_id", userID), zap.Error(err))
		return nil, NewDependencyError("Failed to save rating")
	}

	if svcErr := s.recalculateRating(ctx, productID); svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("Rating set", zap.Int("product_id", productID), zap.Int("user_id", userID), zap.Int("value", value))
	return s.GetRatingSummary(ctx, productID, &userID)
}

// DeleteRating removes the user's rating if present. Deleting an absent
// rating is a no-op; the current summary is returned either way.
func (s *productServiceImpl) DeleteRating(ctx context.Context, productID, userID int) (*models.RatingSummary, *ServiceError) {
	if _, svcErr := s.GetProduct(ctx, productID); svcErr != nil {
		return nil, svcErr
	}

	deleted, err := s.ratings.Delete(ctx, productID, userID)
	if err != nil {
		s.logger.Error("Rating deletion failed", zap.Int("product_id", productID), zap.Int("user_id", userID), zap.Error(err))
		return nil, NewDependencyError("Failed to delete rating")
	}
	if deleted {
		if svcErr := s.recalculateRating(ctx, productID); svcErr != nil {
			return nil, svcErr
		}
		s.logger.Info("Rating deleted", zap.Int("product_id", productID), zap.Int("user_id", userID))
	}
	return s.GetRatingSummary(ctx, productID, &userID)
}

func (s *productServiceImpl) ListRatings(ctx context.Context, productID int) ([]models.Rating, *ServiceError) {
	if _, svcErr := s.GetProduct(ctx, productID); svcErr != nil {
		return nil, svcErr
	}
	ratings, err := s.ratings.ListByProduct(ctx, productID)
	if err != nil {
		s.logger.Error("Rating listing failed", zap.Int("product_id", productID), zap.Error(err))
		return nil, NewDependencyError("Failed to list ratings")
	}
	return ratings, nil
}

// recalculateRating rewrites the product's denormalized rate/count columns
// from the individual ratings. Rate is the mean rounded to one decimal.
func (s *productServiceImpl) recalculateRating(ctx context.Context, productID int) *ServiceError {
	ratings, err := s.ratings.ListByProduct(ctx, productID)
	if err != nil {
		s.logger.Error("Rating recalculation failed", zap.Int("product_id", productID), zap.Error(err))
		return NewDependencyError("Failed to save rating")
	}

	rate := 0.0
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r.Value
		}
		rate = math.Round(float64(sum)/float64(len(ratings))*10) / 10
	}

	if err := s.products.UpdateRating(ctx, productID, rate, len(ratings)); err != nil {
		s.logger.Error("Rating aggregate update failed", zap.Int("product_id", productID), zap.Error(err))
		return NewDependencyError("Failed to save rating")
	}
	return nil
}

func (s *productServiceImpl) ListCategories(ctx context.Context) ([]models.Category, *ServiceError) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		s.logger.Error("Category listing failed", zap.Error(err))
		return nil, NewDependencyError("Failed to list categories")
	}
	return categories, nil
}

func (s *productServiceImpl) CreateCategory(ctx context.Context, req *models.CategoryCreateRequest) (*models.Category, *ServiceError) {
	if existing, err := s.categories.FindByName(ctx, req.Name); err == nil {
		return nil, NewConflict("Category already exists", map[string]interface{}{"name": existing.Name})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Category lookup failed", zap.Error(err))
		return nil, NewDependencyError("Failed to create category")
	}

	category := &models.Category{Name: req.Name}
	if err := s.categories.Create(ctx, category); err != nil {
		s.logger.Error("Category creation failed", zap.String("name", req.Name), zap.Error(err))
		return nil, NewDependencyError("Failed to create category")
	}
	return category, nil
}

func (s *productServiceImpl) GetCategory(ctx context.Context, id int) (*models.Category, *ServiceError) {
	category, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFound("Category not found", map[string]interface{}{"id": id})
	}
	if err != nil {
		s.logger.Error("Category lookup failed", zap.Int("category_id", id), zap.Error(err))
		return nil, NewDependencyError("Failed to load category")
	}
	return category, nil
}

func (s *productServiceImpl) UpdateCategory(ctx context.Context, id int, req *models.CategoryCreateRequest) (*models.Category, *ServiceError) {
	category, svcErr := s.GetCategory(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	if existing, err := s.categories.FindByName(ctx, req.Name); err == nil {
		if existing.ID != id {
			return nil, NewConflict("Category already exists", map[string]interface{}{"name": existing.Name})
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Category lookup failed", zap.Error(err))
		return nil, NewDependencyError("Failed to update category")
	}

	category.Name = req.Name
	if err := s.categories.Update(ctx, category); err != nil {
		s.logger.Error("Category update failed", zap.Int("category_id", id), zap.Error(err))
		return nil, NewDependencyError("Failed to update category")
	}

	s.logger.Info("Category updated", zap.Int("category_id", id))
	return category, nil
}

func (s *productServiceImpl) DeleteCategory(ctx context.Context, id int) *ServiceError {
	err := s.categories.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFound("Category not found", map[string]interface{}{"id": id})
	}
	if err != nil {
		s.logger.Error("Category deletion failed", zap.Int("category_id", id), zap.Error(err))
		return NewDependencyError("Failed to delete category")
	}
	return nil
}
