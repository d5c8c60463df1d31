package models

// Product is a catalog entry. IDs are assigned by the seed dataset and kept
// stable, so the primary key is not auto-incrementing on import.
type Product struct {
	ID          int        `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Price       float64    `gorm:"type:numeric(10,2);not null" json:"price"`
	Description string     `gorm:"type:text" json:"description"`
	Image       string     `gorm:"type:text" json:"image"`
	Rate        float64    `gorm:"type:numeric(3,1);default:0" json:"rate"`
	Count       int        `gorm:"default:0" json:"count"`
	Categories  []Category `gorm:"many2many:product_categories" json:"categories,omitempty"`
}

// Category groups products.
type Category struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

// Rating is one user's score for one product. A user has at most one rating
// per product; setting again overwrites it.
type Rating struct {
	ID        int `gorm:"primaryKey" json:"id"`
	ProductID int `gorm:"not null;uniqueIndex:idx_product_user" json:"productId"`
	UserID    int `gorm:"not null;uniqueIndex:idx_product_user" json:"userId"`
	Value     int `gorm:"not null" json:"value"`
}

// RatingRequest is the payload for setting a product rating.
type RatingRequest struct {
	Value *int `json:"value" binding:"required"`
}

// RatingAggregate is the denormalized rate/count pair stored on the product.
type RatingAggregate struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// RatingSummary is the response for rating reads and writes: the product's
// aggregate plus the requesting user's own rating when authenticated.
type RatingSummary struct {
	ProductID  int             `json:"productId"`
	Rating     RatingAggregate `json:"rating"`
	UserRating *int            `json:"userRating"`
}

// ProductCreateRequest is the payload for creating a product.
type ProductCreateRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Price       float64  `json:"price" binding:"required,gte=0"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Categories  []string `json:"categories"`
}

// ProductUpdateRequest carries a partial product update.
type ProductUpdateRequest struct {
	Title       *string  `json:"title" binding:"omitempty,max=255"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Categories  []string `json:"categories"`
}

// CategoryCreateRequest is the payload for creating a category.
type CategoryCreateRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}
