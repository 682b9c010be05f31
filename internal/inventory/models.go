// Package inventory holds the reference inventory application's domain:
// users, products and stock transactions, persisted in SQLite.
package inventory

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("User already exists")
	ErrMissingFields      = errors.New("All fields are required")
	ErrMissingCredentials = errors.New("Email and password are required")
	ErrPasswordMismatch   = errors.New("Passwords do not match")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInsufficientStock  = errors.New("Insufficient stock")
	ErrInvalidTransaction = errors.New("invalid transaction type")
)

// LowStockThreshold is the quantity below which a product counts as low on
// stock.
const LowStockThreshold = 10

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryFood        Category = "Food"
	CategoryBooks       Category = "Books"
	CategoryOther       Category = "Other"
)

// Categories lists every accepted product category in display order.
var Categories = []Category{CategoryElectronics, CategoryClothing, CategoryFood, CategoryBooks, CategoryOther}

// ParseCategory matches s against Categories ignoring case.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

type TransactionType string

const (
	TransactionAdd    TransactionType = "ADD"
	TransactionRemove TransactionType = "REMOVE"
	TransactionAdjust TransactionType = "ADJUST"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type Product struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Category    Category  `db:"category" json:"category"`
	Price       float64   `db:"price" json:"price"`
	Quantity    int       `db:"quantity" json:"quantity"`
	Location    string    `db:"location" json:"location"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// LowStock reports whether the product is below LowStockThreshold.
func (p Product) LowStock() bool { return p.Quantity < LowStockThreshold }

// Value is the stock value of the product.
func (p Product) Value() float64 { return p.Price * float64(p.Quantity) }

type Transaction struct {
	ID          string          `db:"id" json:"id"`
	Type        TransactionType `db:"type" json:"type"`
	ProductID   string          `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	Quantity    int             `db:"quantity" json:"quantity"`
	CreatedAt   time.Time       `db:"created_at" json:"timestamp"`
}

// Stats summarises the current inventory.
type Stats struct {
	TotalProducts   int     `json:"totalProducts"`
	TotalValue      float64 `json:"totalValue"`
	LowStockItems   int     `json:"lowStockItems"`
	OutOfStockItems int     `json:"outOfStockItems"`
}

// ComputeStats derives Stats from a product list.
func ComputeStats(products []Product) Stats {
	s := Stats{TotalProducts: len(products)}
	for _, p := range products {
		s.TotalValue += p.Value()
		if p.LowStock() {
			s.LowStockItems++
		}
		if p.Quantity == 0 {
			s.OutOfStockItems++
		}
	}
	return s
}
