package main

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type categoryDef struct {
	name string
	slug string
}

type productDef struct {
	name         string
	description  string
	categorySlug string
	price        string
	discount     string // empty for no discount
}

type variantDef struct {
	name       string
	sku        string
	attributes map[string]string
	stock      int
}

var seedCategories = []categoryDef{
	{name: "Electronics", slug: "electronics"},
	{name: "Clothing", slug: "clothing"},
	{name: "Home & Kitchen", slug: "home-kitchen"},
	{name: "Sports & Outdoors", slug: "sports-outdoors"},
	{name: "Books", slug: "books"},
}

var seedProducts = []productDef{
	// Electronics
	{"Wireless Bluetooth Headphones", "Noise-cancelling over-ear headphones with 30-hour battery life.", "electronics", "79.99", "64.99"},
	{"USB-C Hub Adapter", "7-in-1 hub with HDMI 4K output, three USB 3.0 ports and an SD card reader.", "electronics", "34.99", ""},
	{"Mechanical Keyboard", "RGB backlit keyboard with tactile switches and a detachable wrist rest.", "electronics", "89.99", ""},
	{"Portable SSD 1TB", "External solid state drive with USB 3.2 Gen 2 and a shock-resistant shell.", "electronics", "99.99", "84.99"},
	// Clothing
	{"Classic Cotton T-Shirt", "Everyday tee made from organic cotton with a relaxed fit.", "clothing", "24.99", ""},
	{"Slim Fit Jeans", "Stretch denim jeans with classic five-pocket styling.", "clothing", "49.99", "39.99"},
	{"Wool Sweater", "Merino wool pullover with ribbed cuffs and hem.", "clothing", "59.99", ""},
	{"Rain Jacket", "Waterproof breathable jacket with sealed seams and an adjustable hood.", "clothing", "79.99", ""},
	// Home & Kitchen
	{"Cast Iron Skillet", "Pre-seasoned 12-inch skillet, oven safe to 260C.", "home-kitchen", "34.99", ""},
	{"Coffee Maker", "12-cup programmable drip brewer with a thermal carafe.", "home-kitchen", "49.99", "44.99"},
	{"Ceramic Plate Set", "Six artisan dinner plates with a reactive glaze finish.", "home-kitchen", "39.99", ""},
	// Sports & Outdoors
	{"Yoga Mat Premium", "Non-slip 6mm exercise mat with alignment markings.", "sports-outdoors", "29.99", ""},
	{"Hiking Backpack 50L", "Adventure backpack with adjustable suspension and a rain cover.", "sports-outdoors", "89.99", ""},
	{"Water Bottle Insulated", "Double-wall bottle that keeps drinks cold for 24 hours.", "sports-outdoors", "24.99", "19.99"},
	// Books
	{"The Go Programming Language", "A thorough guide to Go from the fundamentals to concurrency.", "books", "39.99", ""},
	{"Designing Data-Intensive Apps", "The ideas behind reliable, scalable and maintainable data systems.", "books", "44.99", ""},
}

// variantsFor returns size variants for clothing, color variants for
// electronics and a single standard variant otherwise. Every fourth
// variant is sold out so the storefront shows both stock states.
func variantsFor(productSlug, categorySlug string) []variantDef {
	var variants []variantDef
	switch categorySlug {
	case "clothing":
		for _, size := range []string{"S", "M", "L", "XL"} {
			variants = append(variants, variantDef{
				name:       size,
				sku:        fmt.Sprintf("%s-%s", productSlug, size),
				attributes: map[string]string{"size": size},
			})
		}
	case "electronics":
		for _, color := range []string{"Black", "Silver", "White"} {
			variants = append(variants, variantDef{
				name:       color,
				sku:        fmt.Sprintf("%s-%s", productSlug, color),
				attributes: map[string]string{"color": color},
			})
		}
	default:
		variants = []variantDef{{
			name:       "Standard",
			sku:        productSlug + "-standard",
			attributes: map[string]string{"type": "standard"},
		}}
	}

	for i := range variants {
		if (i+1)%4 != 0 {
			variants[i].stock = 10 + 7*i
		}
	}
	return variants
}

func (p productDef) prices() (decimal.Decimal, *decimal.Decimal) {
	base := decimal.RequireFromString(p.price)
	if p.discount == "" {
		return base, nil
	}
	d := decimal.RequireFromString(p.discount)
	return base, &d
}
