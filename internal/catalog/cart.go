package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CartItem is the shape the application persists under the "cart" storage key
type CartItem struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

// CartRequest asks for a quantity of one fixture product
type CartRequest struct {
	ID       int
	Quantity int
}

// BuildCart resolves every request against the fixture. No partial cart is
// returned: an unknown id fails the whole build.
func BuildCart(reqs []CartRequest) ([]CartItem, error) {
	items := make([]CartItem, 0, len(reqs))
	for _, req := range reqs {
		p, err := Lookup(req.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, CartItem{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Quantity: req.Quantity,
			Image:    p.Image,
		})
	}
	return items, nil
}

// EncodeCart serializes items into the storage value
func EncodeCart(items []CartItem) (string, error) {
	if items == nil {
		items = []CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode cart: %w", err)
	}
	return string(data), nil
}

// DecodeCart parses a storage value. A missing or empty value is an empty cart.
func DecodeCart(raw string) ([]CartItem, error) {
	if strings.TrimSpace(raw) == "" {
		return []CartItem{}, nil
	}
	var items []CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if items == nil {
		items = []CartItem{}
	}
	return items, nil
}

// SubtotalCents sums price x quantity over items in minor units
func SubtotalCents(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += ToCents(item.Price) * int64(item.Quantity)
	}
	return total
}

// ToCents rounds a decimal price to minor units
func ToCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// FormatCents renders minor units as "$X.YY"
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// FormatPrice renders a decimal price as "$X.YY"
func FormatPrice(price float64) string {
	return FormatCents(ToCents(price))
}

// ParsePrice reads a rendered price such as "$149.99" back into a float
func ParsePrice(text string) (float64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(text), "$")
	trimmed = strings.ReplaceAll(trimmed, ",", "")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", text, err)
	}
	return v, nil
}
