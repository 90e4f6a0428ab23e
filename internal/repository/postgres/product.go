package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Prices are read as text so NUMERIC values keep their exact decimal form.
const productSelect = `
		SELECT p.id, p.slug, p.name, p.description, p.base_price::text, p.discounted_price::text,
		       p.created_at, p.updated_at, inv.id, inv.stock, inv.updated_at`

const productFrom = `
		FROM products p
		LEFT JOIN inventories inv ON inv.product_id = p.id AND inv.variant_id IS NULL`

const categoryMatch = `EXISTS (
			SELECT 1 FROM product_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.product_id = p.id AND (c.slug = $1 OR c.id::text = $1))`

const productOrder = `
		ORDER BY p.created_at DESC, p.name`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetBySlug retrieves a product by its slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getOne(ctx, "GetBySlug", productSelect+productFrom+`
		WHERE p.slug = $1`, slug)
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if !validID(id) {
		return nil, apperrors.NotFound("Product")
	}
	return r.getOne(ctx, "GetByID", productSelect+productFrom+`
		WHERE p.id = $1`, id)
}

func (r *ProductRepository) getOne(ctx context.Context, op, query string, arg string) (p *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	p, err = scanProduct(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("Product")
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	products := []domain.Product{*p}
	if err = r.loadRelations(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// ListByCategory returns all products, or those in the category whose slug or
// id equals category, newest first.
func (r *ProductRepository) ListByCategory(ctx context.Context, category *string) (products []domain.Product, err error) {
	query := productSelect + productFrom
	var args []any
	if category != nil && *category != "" {
		query += `
		WHERE ` + categoryMatch
		args = append(args, *category)
	}
	query += productOrder

	ctx, end := database.TraceQuery(ctx, "ListByCategory", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products, _, err = collectProducts(rows, false)
	if err != nil {
		return nil, err
	}

	if err = r.loadRelations(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// List returns a page of products matching filter along with the total count.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) (products []domain.Product, total int, err error) {
	var (
		where string
		args  []any
	)
	if filter.Category != nil && *filter.Category != "" {
		where = `
		WHERE ` + categoryMatch
		args = append(args, *filter.Category)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := max(filter.Offset, 0)
	args = append(args, limit, offset)

	// count(*) OVER() yields the unpaginated total in the same round trip.
	query := fmt.Sprintf(`%s, count(*) OVER() AS total_count%s%s%s
		LIMIT $%d OFFSET $%d`,
		productSelect, productFrom, where, productOrder, len(args)-1, len(args),
	)

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	products, total, err = collectProducts(rows, true)
	if err != nil {
		return nil, 0, err
	}

	if err = r.loadRelations(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Create inserts the product and its category links in one transaction.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	const query = `
		INSERT INTO products (id, slug, name, description, base_price, discounted_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8)`

	ctx, end := database.TraceQuery(ctx, "CreateProduct", query)
	defer func() { end(err) }()

	return r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			p.ID,
			p.Slug,
			p.Name,
			p.Description,
			p.BasePrice.String(),
			decimalText(p.DiscountedPrice),
			p.CreatedAt,
			p.UpdatedAt,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.AlreadyExists("Product", "slug", p.Slug)
			}
			return fmt.Errorf("insert product: %w", err)
		}
		return linkCategories(ctx, tx, p)
	})
}

// Update rewrites the product's columns and replaces its category links.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	const query = `
		UPDATE products
		SET slug = $1, name = $2, description = $3, base_price = $4::numeric,
		    discounted_price = $5::numeric, updated_at = $6
		WHERE id = $7`

	ctx, end := database.TraceQuery(ctx, "UpdateProduct", query)
	defer func() { end(err) }()

	if !validID(p.ID) {
		return apperrors.NotFound("Product")
	}
	p.UpdatedAt = time.Now().UTC()

	return r.inTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, query,
			p.Slug,
			p.Name,
			p.Description,
			p.BasePrice.String(),
			decimalText(p.DiscountedPrice),
			p.UpdatedAt,
			p.ID,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.AlreadyExists("Product", "slug", p.Slug)
			}
			return fmt.Errorf("update product: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.NotFound("Product")
		}

		if _, err := tx.Exec(ctx, `DELETE FROM product_categories WHERE product_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clear product categories: %w", err)
		}
		return linkCategories(ctx, tx, p)
	})
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	const query = `DELETE FROM products WHERE id = $1`

	if !validID(id) {
		return apperrors.NotFound("Product")
	}

	ctx, end := database.TraceQuery(ctx, "DeleteProduct", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Product")
	}
	return nil
}

func (r *ProductRepository) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func linkCategories(ctx context.Context, tx pgx.Tx, p *domain.Product) error {
	if len(p.Categories) == 0 {
		return nil
	}
	ids := make([]string, len(p.Categories))
	for i, c := range p.Categories {
		ids[i] = c.ID
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO product_categories (product_id, category_id)
		SELECT $1::uuid, unnest($2::uuid[])`, p.ID, ids)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.InvalidInput("unknown category id")
		}
		return fmt.Errorf("link product categories: %w", err)
	}
	return nil
}

// validID reports whether id can match a UUID primary key; anything else is
// a miss rather than a query error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func decimalText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// scanProduct reads the columns of productSelect (plus total_count when
// total is non-nil).
func scanProduct(row pgx.Row, extra ...any) (*domain.Product, error) {
	var (
		p          domain.Product
		basePrice  string
		discounted *string
		invID      *string
		invStock   *int
		invUpdated *time.Time
	)

	dest := append([]any{
		&p.ID,
		&p.Slug,
		&p.Name,
		&p.Description,
		&basePrice,
		&discounted,
		&p.CreatedAt,
		&p.UpdatedAt,
		&invID,
		&invStock,
		&invUpdated,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if p.BasePrice, err = decimal.NewFromString(basePrice); err != nil {
		return nil, fmt.Errorf("parse base price %q: %w", basePrice, err)
	}
	if discounted != nil {
		d, err := decimal.NewFromString(*discounted)
		if err != nil {
			return nil, fmt.Errorf("parse discounted price %q: %w", *discounted, err)
		}
		p.DiscountedPrice = &d
	}
	if invID != nil {
		inv := &domain.Inventory{ID: *invID}
		if invStock != nil {
			inv.Stock = *invStock
		}
		if invUpdated != nil {
			inv.UpdatedAt = *invUpdated
		}
		p.Inventory = inv
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows, withTotal bool) ([]domain.Product, int, error) {
	defer rows.Close()

	var (
		products = []domain.Product{}
		total    int
	)
	for rows.Next() {
		var extra []any
		if withTotal {
			extra = append(extra, &total)
		}
		p, err := scanProduct(rows, extra...)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, total, nil
}

// loadRelations fills variants (with attributes, inventory and images),
// images, cover image and categories for every product using one batched
// query per relation.
func (r *ProductRepository) loadRelations(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		byID[products[i].ID] = &products[i]
	}

	variants, err := r.loadVariants(ctx, ids)
	if err != nil {
		return err
	}
	images, err := r.loadImages(ctx, ids)
	if err != nil {
		return err
	}
	categories, err := r.loadCategories(ctx, ids)
	if err != nil {
		return err
	}

	for _, v := range variants {
		if p, ok := byID[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	for _, img := range images {
		p, ok := byID[img.ProductID]
		if !ok {
			continue
		}
		p.Images = append(p.Images, img)
		if img.IsCover && p.CoverImage == nil {
			cover := img
			p.CoverImage = &cover
		}
		if img.VariantID != nil {
			for i := range p.Variants {
				if p.Variants[i].ID == *img.VariantID {
					p.Variants[i].Images = append(p.Variants[i].Images, img)
				}
			}
		}
	}
	for productID, cats := range categories {
		if p, ok := byID[productID]; ok {
			p.Categories = cats
		}
	}

	for i := range products {
		products[i].EnsureCollections()
	}
	return nil
}

func (r *ProductRepository) loadVariants(ctx context.Context, productIDs []string) (variants []domain.Variant, err error) {
	const query = `
		SELECT v.id, v.product_id, v.sku, v.name, inv.id, inv.stock, inv.updated_at
		FROM variants v
		LEFT JOIN inventories inv ON inv.variant_id = v.id
		WHERE v.product_id = ANY($1::uuid[])
		ORDER BY v.created_at, v.sku`

	ctx, end := database.TraceQuery(ctx, "LoadVariants", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var (
			v          domain.Variant
			invID      *string
			invStock   *int
			invUpdated *time.Time
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &invID, &invStock, &invUpdated); err != nil {
			return nil, fmt.Errorf("scan variant row: %w", err)
		}
		if invID != nil {
			v.Inventory = &domain.Inventory{ID: *invID}
			if invStock != nil {
				v.Inventory.Stock = *invStock
			}
			if invUpdated != nil {
				v.Inventory.UpdatedAt = *invUpdated
			}
		}
		index[v.ID] = len(variants)
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variant rows: %w", err)
	}
	if len(variants) == 0 {
		return variants, nil
	}

	attrs, err := r.loadVariantAttributes(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	for variantID, list := range attrs {
		if i, ok := index[variantID]; ok {
			variants[i].VariantAttributes = list
		}
	}
	return variants, nil
}

func (r *ProductRepository) loadVariantAttributes(ctx context.Context, productIDs []string) (attrs map[string][]domain.VariantAttribute, err error) {
	const query = `
		SELECT a.id, a.variant_id, a.name, a.value
		FROM variant_attributes a
		JOIN variants v ON v.id = a.variant_id
		WHERE v.product_id = ANY($1::uuid[])
		ORDER BY a.name, a.value`

	ctx, end := database.TraceQuery(ctx, "LoadVariantAttributes", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("query variant attributes: %w", err)
	}
	defer rows.Close()

	attrs = map[string][]domain.VariantAttribute{}
	for rows.Next() {
		var (
			a         domain.VariantAttribute
			variantID string
		)
		if err := rows.Scan(&a.ID, &variantID, &a.Name, &a.Value); err != nil {
			return nil, fmt.Errorf("scan variant attribute row: %w", err)
		}
		attrs[variantID] = append(attrs[variantID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variant attribute rows: %w", err)
	}
	return attrs, nil
}

func (r *ProductRepository) loadImages(ctx context.Context, productIDs []string) (images []domain.Image, err error) {
	const query = `
		SELECT id, product_id, variant_id, url, alt_text, sort_order, is_cover
		FROM images
		WHERE product_id = ANY($1::uuid[])
		ORDER BY sort_order, id`

	ctx, end := database.TraceQuery(ctx, "LoadImages", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.VariantID, &img.URL, &img.AltText, &img.SortOrder, &img.IsCover); err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate image rows: %w", err)
	}
	return images, nil
}

func (r *ProductRepository) loadCategories(ctx context.Context, productIDs []string) (categories map[string][]domain.Category, err error) {
	const query = `
		SELECT pc.product_id, c.id, c.name, c.slug
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1::uuid[])
		ORDER BY c.name`

	ctx, end := database.TraceQuery(ctx, "LoadCategories", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories = map[string][]domain.Category{}
	for rows.Next() {
		var (
			productID string
			c         domain.Category
		)
		if err := rows.Scan(&productID, &c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories[productID] = append(categories[productID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}
