package catalog

import (
	"errors"
	"fmt"
	"strconv"
)

// Product represents a storefront product as the application ships it
type Product struct {
	ID    int
	Name  string
	Price float64
	Image string
}

// ErrProductNotFound is returned when an id is not part of the fixture
var ErrProductNotFound = errors.New("product not found in product data")

// products mirrors the application's static product data
var products = []Product{
	{ID: 1, Name: "Classic White Sneakers", Price: 79.99, Image: "https://images.unsplash.com/photo-1549298916-b41d501d3772"},
	{ID: 2, Name: "Premium Leather Watch", Price: 149.99, Image: "https://images.unsplash.com/photo-1524805444758-089113d48a6d"},
	{ID: 3, Name: "Wireless Headphones", Price: 199.99, Image: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e"},
}

// Products returns a copy of the fixture in catalog order
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// Lookup returns the fixture product with the given id
func Lookup(id int) (Product, error) {
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
}

// ParseID converts a step or selector argument such as "2" into a product id
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q: %w", raw, err)
	}
	return id, nil
}

// Cents returns the price in minor units
func (p Product) Cents() int64 {
	return ToCents(p.Price)
}

// FormattedPrice returns the price as the storefront renders it, e.g. "$79.99"
func (p Product) FormattedPrice() string {
	return FormatCents(p.Cents())
}
