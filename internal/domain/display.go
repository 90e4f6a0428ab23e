package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// StockStatus is the availability shown to shoppers. It is always derived
// from variant inventory and never stored.
type StockStatus string

const (
	StatusAvailable StockStatus = "available"
	StatusSoldOut   StockStatus = "soldout"
)

// RawProduct is the loosely-typed product record a client receives. Prices
// decode from either a JSON string or number; every collection may be absent.
type RawProduct struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Description     *string          `json:"description"`
	BasePrice       decimal.Decimal  `json:"basePrice"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice"`
	Variants        []Variant        `json:"variants"`
	Images          []Image          `json:"images"`
	Categories      []Category       `json:"categories"`
}

// DisplayProduct is the display-ready projection of a product.
type DisplayProduct struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	Description     string      `json:"description"`
	BasePrice       float64     `json:"basePrice"`
	DiscountedPrice *float64    `json:"discountedPrice,omitempty"`
	Variants        []Variant   `json:"variants"`
	Images          []Image     `json:"images"`
	Categories      []Category  `json:"categories"`
	Status          StockStatus `json:"status"`
}

// NormalizeProduct converts a raw record into its display shape. Missing
// description and collections are replaced by empty values, a missing
// discounted price stays unset, and status is available only when some
// variant has stock. Normalizing the Raw() of a result yields the same
// result.
func NormalizeProduct(raw RawProduct) DisplayProduct {
	d := DisplayProduct{
		ID:         raw.ID,
		Name:       raw.Name,
		Slug:       raw.Slug,
		BasePrice:  displayPrice(raw.BasePrice),
		Variants:   raw.Variants,
		Images:     raw.Images,
		Categories: raw.Categories,
		Status:     StatusSoldOut,
	}
	if raw.Description != nil {
		d.Description = *raw.Description
	}
	if raw.DiscountedPrice != nil {
		v := displayPrice(*raw.DiscountedPrice)
		d.DiscountedPrice = &v
	}
	if d.Variants == nil {
		d.Variants = []Variant{}
	}
	if d.Images == nil {
		d.Images = []Image{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	if anyInStock(d.Variants) {
		d.Status = StatusAvailable
	}
	return d
}

// displayPrice converts a price to float64, clamping values beyond the
// float64 range to ±math.MaxFloat64.
func displayPrice(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	switch {
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}

// fitsFloat reports whether d can be shown without clamping.
func fitsFloat(d decimal.Decimal) bool {
	return !math.IsInf(d.InexactFloat64(), 0)
}

// Validate rejects records that cannot be trusted for anything beyond
// display: missing identity fields, negative prices or prices beyond the
// float64 range.
func (r RawProduct) Validate() error {
	var problems []string
	if strings.TrimSpace(r.ID) == "" {
		problems = append(problems, "id is required")
	}
	if strings.TrimSpace(r.Slug) == "" {
		problems = append(problems, "slug is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "name is required")
	}
	if r.BasePrice.IsNegative() {
		problems = append(problems, "basePrice must not be negative")
	}
	if !fitsFloat(r.BasePrice) {
		problems = append(problems, "basePrice is out of range")
	}
	if r.DiscountedPrice != nil {
		if r.DiscountedPrice.IsNegative() {
			problems = append(problems, "discountedPrice must not be negative")
		}
		if !fitsFloat(*r.DiscountedPrice) {
			problems = append(problems, "discountedPrice is out of range")
		}
	}
	for i, v := range r.Variants {
		if v.Inventory != nil && v.Inventory.Stock < 0 {
			problems = append(problems, fmt.Sprintf("variants[%d].inventory.stock must not be negative", i))
		}
	}
	if len(problems) > 0 {
		return apperrors.InvalidInput("malformed product: " + strings.Join(problems, "; "))
	}
	return nil
}

// NormalizeStrict validates raw before normalizing it.
func NormalizeStrict(raw RawProduct) (DisplayProduct, error) {
	if err := raw.Validate(); err != nil {
		return DisplayProduct{}, err
	}
	return NormalizeProduct(raw), nil
}

// Raw turns a display product back into normalization input.
func (d DisplayProduct) Raw() RawProduct {
	desc := d.Description
	r := RawProduct{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: &desc,
		BasePrice:   decimal.NewFromFloat(d.BasePrice),
		Variants:    d.Variants,
		Images:      d.Images,
		Categories:  d.Categories,
	}
	if d.DiscountedPrice != nil {
		v := decimal.NewFromFloat(*d.DiscountedPrice)
		r.DiscountedPrice = &v
	}
	return r
}

// EffectivePrice is the discounted price when set, else the base price.
func (d DisplayProduct) EffectivePrice() float64 {
	if d.DiscountedPrice != nil {
		return *d.DiscountedPrice
	}
	return d.BasePrice
}
