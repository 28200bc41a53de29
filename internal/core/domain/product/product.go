package product

import (
	"time"
)

// Default field values applied when a create request omits them.
const (
	DefaultCurrency = "USD"
	DefaultCategory = "General"
	DefaultBrand    = "Unknown"
)

// Product is a single catalog record. The ID and CreatedAt fields are
// assigned by the backing store; they are empty only on records that have
// not been persisted yet.
type Product struct {
	ID          string    `json:"id,omitempty" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Currency    string    `json:"currency" db:"currency"`
	Stock       int       `json:"stock" db:"stock"`
	Category    string    `json:"category" db:"category"`
	Brand       string    `json:"brand" db:"brand"`
	Rating      float64   `json:"rating" db:"rating"`
	CreatedAt   time.Time `json:"created_at,omitempty" db:"created_at"`
}

// Update lists the fields of a product to change. Nil fields stay untouched.
type Update struct {
	Name        *string
	Description *string
	Price       *float64
	Currency    *string
	Stock       *int
	Category    *string
	Brand       *string
	Rating      *float64
}

// Apply copies the non-nil fields of the update onto p.
func (u *Update) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Currency != nil {
		p.Currency = *u.Currency
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.Rating != nil {
		p.Rating = *u.Rating
	}
}

// Empty reports whether the update changes nothing.
func (u *Update) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.Currency == nil && u.Stock == nil && u.Category == nil &&
		u.Brand == nil && u.Rating == nil
}
