package models

import "time"

// Cart is a customer's mutable collection of line items. Each customer owns
// at most one cart; the unique index on user_id backs that invariant.
type Cart struct {
	ID     int        `gorm:"primaryKey" json:"id"`
	UserID int        `gorm:"uniqueIndex;not null" json:"userId"`
	Date   time.Time  `gorm:"type:date;not null" json:"date"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"products"`
}

// CartItem is one (product, quantity) line within a cart. The composite
// unique index keeps productId unique per cart; stored quantities are always
// positive, a zero-quantity line is deleted instead.
type CartItem struct {
	ID        int `gorm:"primaryKey" json:"-"`
	CartID    int `gorm:"uniqueIndex:idx_cart_product;not null" json:"-"`
	ProductID int `gorm:"uniqueIndex:idx_cart_product;not null" json:"productId"`
	Quantity  int `gorm:"not null" json:"quantity"`
}

// CartItemInput is the wire form of a line-item operation.
type CartItemInput struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// CartCreateRequest is the payload for creating a cart.
type CartCreateRequest struct {
	Date     string          `json:"date"`
	Products []CartItemInput `json:"products"`
}

// CartReplaceRequest is the payload for a full PUT replace of a cart.
type CartReplaceRequest struct {
	Date     string          `json:"date"`
	Products []CartItemInput `json:"products"`
}

// CartPatchRequest is a single PATCH batch: ordered add/update/remove
// operations plus optional metadata changes. The canonical owner field is
// "userId"; "user_id" is accepted as a syntactic alias and folded into
// UserID before the request reaches the service layer.
type CartPatchRequest struct {
	Add    []CartItemInput `json:"add"`
	Update []CartItemInput `json:"update"`
	Remove []int           `json:"remove"`
	Date   string          `json:"date"`
	UserID *int            `json:"userId"`

	// Transport-boundary alias for UserID, not used past the controller.
	LegacyUserID *int `json:"user_id"`
}

// Normalize folds the legacy user_id alias into the canonical field. The
// canonical field wins when both are present.
func (r *CartPatchRequest) Normalize() {
	if r.UserID == nil && r.LegacyUserID != nil {
		r.UserID = r.LegacyUserID
	}
	r.LegacyUserID = nil
}

// CartResponse is the representation returned to clients. Dates are
// date-only strings.
type CartResponse struct {
	ID       int             `json:"id"`
	UserID   int             `json:"userId"`
	Date     string          `json:"date"`
	Products []CartItemInput `json:"products"`
}

// ToCartResponse maps a stored cart onto its wire representation.
func ToCartResponse(cart *Cart) *CartResponse {
	products := make([]CartItemInput, 0, len(cart.Items))
	for _, item := range cart.Items {
		products = append(products, CartItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return &CartResponse{
		ID:       cart.ID,
		UserID:   cart.UserID,
		Date:     cart.Date.Format("2006-01-02"),
		Products: products,
	}
}
