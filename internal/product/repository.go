package product

import (
	"context"
	"database/sql"
	"errors"

	"gerai-be/internal/logger"

	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	GetProductByID(ctx context.Context, opts GetProductOptions) (*Product, error)
	GetProductVariantByID(ctx context.Context, opts GetVariantOptions) (*Variant, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetProductByID(ctx context.Context, opts GetProductOptions) (*Product, error) {
	query := `
		SELECT id, name, slug, description, status, imageurl,
		       price, stock, has_variants
		FROM products
		WHERE id = $1
	`
	args := []any{opts.ProductID}
	if opts.OnlyActive {
		query += ` AND status = $2`
		args = append(args, StatusActive)
	}

	var p Product
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Status, &p.ImageURL,
		&p.Price, &p.Stock, &p.HasVariants,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if p.HasVariants {
		if err := r.loadVariants(ctx, &p); err != nil {
			return nil, err
		}
	}

	return &p, nil
}

func (r *repository) loadVariants(ctx context.Context, p *Product) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, name, price, stock, imageurl
		FROM variants
		WHERE product_id = $1
		ORDER BY name
	`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &v.Stock, &v.ImageURL); err != nil {
			return err
		}
		p.Variants = append(p.Variants, &v)
	}

	return rows.Err()
}

func (r *repository) GetProductVariantByID(ctx context.Context, opts GetVariantOptions) (*Variant, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetProductVariantByID"),
		zap.String("variant_id", opts.VariantID),
	)

	query := `
		SELECT v.id, v.product_id, v.name, v.price, v.stock, v.imageurl
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1
	`
	args := []any{opts.VariantID}
	if opts.OnlyActive {
		query += ` AND p.status = $2`
		args = append(args, StatusActive)
	}

	var v Variant
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&v.ID, &v.ProductID, &v.Name, &v.Price, &v.Stock, &v.ImageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to query variant", zap.Error(err))
		return nil, err
	}

	return &v, nil
}

func (r *repository) ListProducts(ctx context.Context, limit, offset int) ([]*Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, description, status, imageurl,
		       price, stock, has_variants
		FROM products
		WHERE status = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`, StatusActive, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.Status, &p.ImageURL,
			&p.Price, &p.Stock, &p.HasVariants,
		); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}
