package inventory

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidationError names the offending field. It matches ErrInvalidProduct
// with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidProduct }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ProductInput is the user-supplied part of a product.
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Price       float64  `json:"price"`
	Quantity    int      `json:"quantity"`
	Location    string   `json:"location"`
}

// Normalize trims text fields and canonicalises the category spelling.
func (in ProductInput) Normalize() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	if c, ok := ParseCategory(string(in.Category)); ok {
		in.Category = c
	}
	return in
}

// Validate checks the input in form order and reports the first problem.
func (in ProductInput) Validate() error {
	if in.Name == "" {
		return invalid("name", "Product name is required")
	}
	if _, ok := ParseCategory(string(in.Category)); !ok {
		return invalid("category", "Category must be one of %s", categoryList())
	}
	if in.Description == "" {
		return invalid("description", "Description is required")
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return invalid("price", "Price must be a number")
	}
	if in.Price < 0 {
		return invalid("price", "Price cannot be negative")
	}
	if in.Quantity < 0 {
		return invalid("quantity", "Quantity cannot be negative")
	}
	if in.Location == "" {
		return invalid("location", "Storage location is required")
	}
	return nil
}

// ParseProductForm builds a ProductInput from raw form values.
func ParseProductForm(name, category, description, price, quantity, location string) (ProductInput, error) {
	in := ProductInput{
		Name:        name,
		Description: description,
		Category:    Category(category),
		Location:    location,
	}

	price = strings.TrimSpace(price)
	if price == "" {
		return in, invalid("price", "Price is required")
	}
	p, err := strconv.ParseFloat(price, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return in, invalid("price", "Price must be a number")
	}
	in.Price = p

	quantity = strings.TrimSpace(quantity)
	if quantity == "" {
		return in, invalid("quantity", "Quantity is required")
	}
	q, err := strconv.Atoi(quantity)
	if err != nil {
		return in, invalid("quantity", "Quantity must be a whole number")
	}
	in.Quantity = q

	return in.Normalize(), nil
}

func categoryList() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
