package models

import "time"

// Role determines what a principal may do. Customers own carts; staff and
// admin act as operators and never own one.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// IsOperator reports whether the role is a back-office role.
func (r Role) IsOperator() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User represents a storefront account stored in Postgres.
type User struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Firstname string    `gorm:"type:varchar(100)" json:"firstname"`
	Lastname  string    `gorm:"type:varchar(100)" json:"lastname"`
	Email     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	Address   *Address  `gorm:"constraint:OnDelete:CASCADE" json:"address,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Address is a user's shipping address.
type Address struct {
	ID        int     `gorm:"primaryKey" json:"-"`
	UserID    int     `gorm:"uniqueIndex;not null" json:"-"`
	Street    string  `gorm:"type:varchar(150)" json:"street"`
	Number    int     `json:"number"`
	City      string  `gorm:"type:varchar(100)" json:"city"`
	Zipcode   string  `gorm:"type:varchar(50)" json:"zipcode"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"long"`
}

// Principal is the authenticated actor on a request, extracted from a
// verified bearer token by the auth middleware.
type Principal struct {
	UserID int  `json:"userId"`
	Role   Role `json:"role"`
}

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Username  string          `json:"username" binding:"required,min=3,max=100"`
	Email     string          `json:"email" binding:"required,email"`
	Password  string          `json:"password" binding:"required,min=8"`
	Firstname string          `json:"firstname"`
	Lastname  string          `json:"lastname"`
	Phone     string          `json:"phone"`
	Address   *AddressRequest `json:"address"`
}

// AddressRequest mirrors Address for write payloads.
type AddressRequest struct {
	Street      string `json:"street" binding:"required"`
	Number      int    `json:"number"`
	City        string `json:"city" binding:"required"`
	Zipcode     string `json:"zipcode"`
	Geolocation *struct {
		Lat  float64 `json:"lat"`
		Long float64 `json:"long"`
	} `json:"geolocation"`
}

// LoginRequest is the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the payload for the token refresh endpoint.
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// UserUpdateRequest carries a partial user update. Nil fields are left as-is.
type UserUpdateRequest struct {
	Firstname *string         `json:"firstname"`
	Lastname  *string         `json:"lastname"`
	Email     *string         `json:"email" binding:"omitempty,email"`
	Phone     *string         `json:"phone"`
	Password  *string         `json:"password" binding:"omitempty,min=8"`
	Address   *AddressRequest `json:"address"`
}
