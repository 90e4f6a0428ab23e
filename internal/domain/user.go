package domain

import "time"

// Role names accepted in access tokens and stored on users.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is a storefront customer or back-office administrator.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	Addresses    []Address `json:"addresses"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Address is a shipping address owned by a user.
type Address struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	FullName   string    `json:"fullName"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	PostalCode string    `json:"postalCode"`
	Country    string    `json:"country"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Limit  int
	Offset int
}
