package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/utafrali/storefront/internal/domain"
)

var (
	accent      = lipgloss.Color("#8BC34A")
	muted       = lipgloss.Color("#6B7280")
	destructive = lipgloss.Color("#E53935")
	warning     = lipgloss.Color("#FFC107")
)

// Styles are the lipgloss styles of one output stream. Colors are dropped
// automatically when the stream is not a terminal.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Border  lipgloss.Style
	Error   lipgloss.Style
	SoldOut lipgloss.Style
	InStock lipgloss.Style
}

// NewStyles builds styles rendered for w.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(accent),
		Label:   r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(muted),
		Header:  r.NewStyle().Bold(true).Padding(0, 1),
		Cell:    r.NewStyle().Padding(0, 1),
		Border:  r.NewStyle().Foreground(muted),
		Error:   r.NewStyle().Bold(true).Foreground(destructive),
		SoldOut: r.NewStyle().Padding(0, 1).Foreground(warning),
		InStock: r.NewStyle().Padding(0, 1).Foreground(accent),
	}
}

func (s Styles) table(headers []string, rows [][]string, styleFunc table.StyleFunc) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		Headers(headers...).
		Rows(rows...)
	if styleFunc == nil {
		styleFunc = func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		}
	}
	return t.StyleFunc(styleFunc).String()
}

// ProductTable renders the admin product list.
func (s Styles) ProductTable(products []domain.DisplayProduct) string {
	if len(products) == 0 {
		return s.Muted.Render("No products.")
	}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			p.ID, p.Slug, p.Name, formatPrice(p), string(p.Status), strconv.Itoa(len(p.Variants)),
		})
	}
	const statusCol = 4
	return s.table([]string{"ID", "SLUG", "NAME", "PRICE", "STATUS", "VARIANTS"}, rows, func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return s.Header
		case col == statusCol && products[row].Status == domain.StatusSoldOut:
			return s.SoldOut
		case col == statusCol:
			return s.InStock
		}
		return s.Cell
	})
}

// ProductDetail renders one product with its variants.
func (s Styles) ProductDetail(p domain.DisplayProduct) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(p.Name))
	b.WriteString("\n")

	field := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render(label+":"), value)
	}
	field("ID", p.ID)
	field("Slug", p.Slug)
	field("Price", formatPrice(p))
	field("Status", string(p.Status))
	if len(p.Categories) > 0 {
		names := make([]string, 0, len(p.Categories))
		for _, c := range p.Categories {
			names = append(names, c.Name)
		}
		field("Categories", strings.Join(names, ", "))
	}
	if p.Description != "" {
		field("Description", p.Description)
	}
	fmt.Fprintf(&b, "%s %d\n", s.Label.Render("Images:"), len(p.Images))

	if len(p.Variants) == 0 {
		b.WriteString(s.Muted.Render("No variants."))
		return b.String()
	}
	rows := make([][]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		stock := 0
		if v.Inventory != nil {
			stock = v.Inventory.Stock
		}
		rows = append(rows, []string{v.SKU, v.Name, formatAttributes(v.VariantAttributes), strconv.Itoa(stock)})
	}
	b.WriteString(s.table([]string{"SKU", "VARIANT", "ATTRIBUTES", "STOCK"}, rows, nil))
	return b.String()
}

// UserTable renders the admin customer list.
func (s Styles) UserTable(users []domain.User) string {
	if len(users) == 0 {
		return s.Muted.Render("No users.")
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Email, u.Name, u.Role, strconv.Itoa(len(u.Addresses))})
	}
	return s.table([]string{"ID", "EMAIL", "NAME", "ROLE", "ADDRESSES"}, rows, nil)
}

// ErrorView renders a fetch failure message.
func (s Styles) ErrorView(message string) string {
	return s.Error.Render("Error: " + message)
}

func formatPrice(p domain.DisplayProduct) string {
	if p.DiscountedPrice != nil {
		return fmt.Sprintf("%.2f (was %.2f)", *p.DiscountedPrice, p.BasePrice)
	}
	return fmt.Sprintf("%.2f", p.BasePrice)
}

func formatAttributes(attrs []domain.VariantAttribute) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, a.Name+"="+a.Value)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
