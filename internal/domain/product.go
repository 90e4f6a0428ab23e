package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry with its full relation fan-out.
type Product struct {
	ID              string           `json:"id"`
	Slug            string           `json:"slug"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	BasePrice       decimal.Decimal  `json:"basePrice"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice"`
	Variants        []Variant        `json:"variants"`
	Images          []Image          `json:"images"`
	CoverImage      *Image           `json:"coverImage"`
	Categories      []Category       `json:"categories"`
	Inventory       *Inventory       `json:"inventory"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Variant is a purchasable configuration of a product.
type Variant struct {
	ID                string             `json:"id"`
	ProductID         string             `json:"productId"`
	SKU               string             `json:"sku"`
	Name              string             `json:"name"`
	VariantAttributes []VariantAttribute `json:"variantAttributes"`
	Inventory         *Inventory         `json:"inventory"`
	Images            []Image            `json:"images"`
}

// VariantAttribute is a name/value pair such as size=M.
type VariantAttribute struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Inventory is a stock count for a product or a single variant.
type Inventory struct {
	ID        string    `json:"id"`
	Stock     int       `json:"stock"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Image belongs to a product and optionally to one of its variants.
type Image struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId,omitempty"`
	URL       string  `json:"url"`
	AltText   string  `json:"altText"`
	SortOrder int     `json:"sortOrder"`
	IsCover   bool    `json:"isCover"`
}

// Category groups products; the relation is many-to-many.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// InStock reports whether any variant has stock. A variant without an
// inventory record counts as zero.
func (p *Product) InStock() bool {
	return anyInStock(p.Variants)
}

func anyInStock(variants []Variant) bool {
	for _, v := range variants {
		if v.Inventory != nil && v.Inventory.Stock > 0 {
			return true
		}
	}
	return false
}

// Raw projects the product into the loosely-typed normalization input.
func (p *Product) Raw() RawProduct {
	desc := p.Description
	return RawProduct{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     &desc,
		BasePrice:       p.BasePrice,
		DiscountedPrice: p.DiscountedPrice,
		Variants:        p.Variants,
		Images:          p.Images,
		Categories:      p.Categories,
	}
}

// EnsureCollections replaces nil slices with empty ones so the product
// always serializes collections as arrays.
func (p *Product) EnsureCollections() {
	if p.Variants == nil {
		p.Variants = []Variant{}
	}
	for i := range p.Variants {
		if p.Variants[i].VariantAttributes == nil {
			p.Variants[i].VariantAttributes = []VariantAttribute{}
		}
		if p.Variants[i].Images == nil {
			p.Variants[i].Images = []Image{}
		}
	}
	if p.Images == nil {
		p.Images = []Image{}
	}
	if p.Categories == nil {
		p.Categories = []Category{}
	}
}

// ProductFilter narrows admin listings.
type ProductFilter struct {
	// Category matches a category slug or id.
	Category *string
	Limit    int
	Offset   int
}
