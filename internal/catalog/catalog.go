// Package catalog holds the static product list and the cart math. Order
// amounts are computed here exactly once, at creation time; nothing ever
// recomputes or mutates a stored amount.
package catalog

import (
	"fmt"
	"strings"

	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/model"
)

type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"` // minor units
	Category    string   `json:"category"`
	InStock     bool     `json:"inStock"`
	WeightGrams int64    `json:"weightGrams"`
	Origin      string   `json:"origin"`
	Properties  []string `json:"properties"`
	Featured    bool     `json:"featured"`
}

var products = []Product{
	{
		ID:          "amethyst-cluster",
		Name:        "Amethyst Cluster",
		Description: "Natural amethyst cluster for wisdom and spiritual growth. Perfect for meditation spaces and bedrooms.",
		Price:       4500,
		Category:    "crystals",
		InStock:     true,
		WeightGrams: 200,
		Origin:      "Brazil",
		Properties:  []string{"Wisdom", "Intuition", "Spiritual Growth", "Calming"},
		Featured:    true,
	},
	{
		ID:          "rose-quartz-heart",
		Name:        "Rose Quartz Heart",
		Description: "Beautiful rose quartz heart for love and emotional healing. Ideal for relationship corners.",
		Price:       2800,
		Category:    "crystals",
		InStock:     true,
		WeightGrams: 150,
		Origin:      "Madagascar",
		Properties:  []string{"Love", "Compassion", "Emotional Healing", "Self-Love"},
		Featured:    true,
	},
	{
		ID:          "citrine-tumbled",
		Name:        "Citrine Tumbled Stones",
		Description: "Set of 3 natural citrine tumbled stones for abundance and prosperity. Perfect for wealth corners.",
		Price:       1800,
		Category:    "crystals",
		InStock:     true,
		WeightGrams: 75,
		Origin:      "Brazil",
		Properties:  []string{"Abundance", "Prosperity", "Confidence", "Success"},
		Featured:    true,
	},
	{
		ID:          "black-tourmaline-raw",
		Name:        "Black Tourmaline Raw",
		Description: "Powerful protection stone. Perfect for entry ways and workspaces to block negative energy.",
		Price:       3200,
		Category:    "crystals",
		InStock:     true,
		WeightGrams: 180,
		Origin:      "Brazil",
		Properties:  []string{"Protection", "Grounding", "EMF Shield", "Clarity"},
	},
	{
		ID:          "clear-quartz-sphere",
		Name:        "Clear Quartz Sphere",
		Description: "Master healer crystal sphere for amplifying energy and clarity. Universal feng shui enhancer.",
		Price:       5500,
		Category:    "crystals",
		InStock:     true,
		WeightGrams: 250,
		Origin:      "Arkansas, USA",
		Properties:  []string{"Amplification", "Clarity", "Healing", "Energy Cleansing"},
	},
	{
		ID:          "feng-shui-starter-kit",
		Name:        "Feng Shui Starter Kit",
		Description: "Complete feng shui crystal starter kit with 5 essential stones, placement guide, and silk pouch.",
		Price:       8900,
		Category:    "kits",
		InStock:     true,
		WeightGrams: 400,
		Origin:      "Various",
		Properties:  []string{"Complete Protection", "Love & Abundance", "Spiritual Growth"},
		Featured:    true,
	},
}

type Filter struct {
	Category     string
	FeaturedOnly bool
	InStockOnly  bool
}

func List(f Filter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.FeaturedOnly && !p.Featured {
			continue
		}
		if f.InStockOnly && !p.InStock {
			continue
		}
		out = append(out, p)
	}
	return out
}

func FindByID(id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func Categories() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Search matches on name, description and metaphysical properties.
func Search(query string) []Product {
	q := strings.ToLower(query)
	out := []Product{}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
			continue
		}
		for _, prop := range p.Properties {
			if strings.Contains(strings.ToLower(prop), q) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

type LineItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// Calculation is the one-shot amount breakdown for a cart, all in cents.
type Calculation struct {
	Items    []model.CartItem `json:"items"`
	Subtotal int64            `json:"subtotal"`
	Shipping int64            `json:"shipping"`
	Tax      int64            `json:"tax"`
	Total    int64            `json:"total"`
	Currency string           `json:"currency"`
}

const (
	baseShipping          = 800  // $8.00
	shippingPer100g       = 200  // $2.00
	internationalShipping = 1500 // flat surcharge
	maxDomesticShipping   = 2500
	taxRateBasisPoints    = 850 // 8.5%
)

// Calculate validates the cart and produces the order amount. Shipping is
// omitted when no address is given (digital quote).
func Calculate(items []LineItem, address *model.ShippingAddress) (*Calculation, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", errs.ErrValidation)
	}

	calc := &Calculation{Currency: "usd"}
	var totalWeight int64

	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", errs.ErrValidation)
		}
		product, ok := FindByID(item.ProductID)
		if !ok {
			return nil, fmt.Errorf("%w: product not found: %s", errs.ErrValidation, item.ProductID)
		}
		if !product.InStock {
			return nil, fmt.Errorf("%w: product out of stock: %s", errs.ErrValidation, product.Name)
		}

		calc.Subtotal += product.Price * item.Quantity
		totalWeight += product.WeightGrams * item.Quantity
		calc.Items = append(calc.Items, model.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
	}

	if address != nil {
		calc.Shipping = shippingCost(totalWeight, address.Country)
	}
	// half-up rounding, matching Math.round semantics on cents
	calc.Tax = (calc.Subtotal*taxRateBasisPoints + 5000) / 10000
	calc.Total = calc.Subtotal + calc.Shipping + calc.Tax
	return calc, nil
}

func shippingCost(totalWeightGrams int64, country string) int64 {
	cost := baseShipping + ((totalWeightGrams+99)/100)*shippingPer100g

	c := strings.ToLower(country)
	if c != "usa" && c != "united states" {
		return cost + internationalShipping
	}
	if cost > maxDomesticShipping {
		return maxDomesticShipping
	}
	return cost
}
