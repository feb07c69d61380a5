package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gerai-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetCartItems(
		ctx context.Context,
		userID uint,
		filter *CartFilter,
		sort *CartSort,
		limit, page *uint16,
	) ([]*CartItem, error)
	GetCartItemByTarget(ctx context.Context, userID uint, target Target) (*CartItem, error)
	CreateCartItem(ctx context.Context, params CreateCartItemParams) (*CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, cartItemID string, quantity int) (*CartItem, error)
	RemoveFromCart(ctx context.Context, userID uint, target Target) error
	ClearCart(ctx context.Context, userID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetCartItems(
	ctx context.Context,
	userID uint,
	filter *CartFilter,
	sort *CartSort,
	limit, page *uint16,
) ([]*CartItem, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetCartItems"),
		zap.Uint("user_id", userID),
	)

	start := time.Now()

	// ---------- pagination ----------
	finalLimit := uint16(20)
	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if finalLimit > 100 {
		finalLimit = 100
	}

	finalPage := uint16(1)
	if page != nil && *page > 0 {
		finalPage = *page
	}

	offset := int((finalPage - 1) * finalLimit)

	// ---------- where ----------
	// Each line resolves name/price/stock from its variant when set,
	// otherwise from the simple product row.
	where := []string{"c.user_id = $1"}
	args := []any{userID}

	if filter != nil {
		if filter.InStock != nil {
			if *filter.InStock {
				where = append(where, "COALESCE(v.stock, p.stock) > 0")
			} else {
				where = append(where, "COALESCE(v.stock, p.stock) = 0")
			}
		}

		if filter.Search != nil && *filter.Search != "" {
			where = append(where,
				fmt.Sprintf(
					"(p.name ILIKE $%d OR v.name ILIKE $%d)",
					len(args)+1,
					len(args)+1,
				),
			)
			args = append(args, "%"+*filter.Search+"%")
		}
	}

	// ---------- sort ----------
	orderBy := "c.created_at DESC"
	if sort != nil {
		field := "c.created_at"
		switch sort.Field {
		case "price":
			field = "COALESCE(v.price, p.price)"
		case "name":
			field = "p.name"
		case "stock":
			field = "COALESCE(v.stock, p.stock)"
		}

		dir := "DESC"
		if strings.EqualFold(sort.Direction, "asc") {
			dir = "ASC"
		}

		orderBy = field + " " + dir
	}

	// ---------- query ----------
	query := `
	SELECT
		c.id,
		c.user_id,
		c.product_id,
		c.variant_id,
		c.quantity,
		c.created_at,
		c.updated_at,

		COALESCE(v.name, p.name),
		p.slug,
		COALESCE(v.price, p.price),
		COALESCE(v.stock, p.stock),
		COALESCE(v.imageurl, p.imageurl)
	FROM carts c
	LEFT JOIN variants v ON c.variant_id = v.id
	JOIN products p ON p.id = COALESCE(v.product_id, c.product_id)
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY ` + orderBy + `
	LIMIT $` + fmt.Sprint(len(args)+1) + `
	OFFSET $` + fmt.Sprint(len(args)+2)

	args = append(args, finalLimit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}
	defer rows.Close()

	items := make([]*CartItem, 0, finalLimit)

	for rows.Next() {
		var item CartItem
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.VariantID,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,

			&item.Name,
			&item.Slug,
			&item.Price,
			&item.Stock,
			&item.ImageURL,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}

		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	log.Info("query success",
		zap.Int("rows", len(items)),
		zap.Duration("duration", time.Since(start)),
	)

	return items, nil
}

func (r *repository) GetCartItemByTarget(
	ctx context.Context,
	userID uint,
	target Target,
) (*CartItem, error) {

	query := `
	SELECT
		id,
		user_id,
		product_id,
		variant_id,
		quantity,
		created_at,
		updated_at
	FROM carts
	WHERE user_id = $1 AND `

	var args []any
	if target.VariantID != nil {
		query += `variant_id = $2`
		args = []any{userID, *target.VariantID}
	} else {
		query += `product_id = $2`
		args = []any{userID, *target.ProductID}
	}

	var item CartItem
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.VariantID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *repository) CreateCartItem(
	ctx context.Context,
	params CreateCartItemParams,
) (*CartItem, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateCartItem"),
		zap.Uint("user_id", params.UserID),
		zap.String("target", params.Target.Key()),
	)

	log.Debug("start create cart item")

	query := `
	INSERT INTO carts (
		user_id,
		product_id,
		variant_id,
		quantity
	)
	VALUES ($1, $2, $3, $4)
	RETURNING
		id,
		user_id,
		product_id,
		variant_id,
		quantity,
		created_at,
		updated_at
	`

	var item CartItem
	err := r.db.QueryRowContext(
		ctx,
		query,
		params.UserID,
		params.Target.ProductID,
		params.Target.VariantID,
		params.Quantity,
	).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.VariantID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create cart item", zap.Error(err))
		return nil, err
	}

	log.Info("success create cart item",
		zap.String("cart_item_id", item.ID),
	)

	return &item, nil
}

func (r *repository) UpdateCartItemQuantity(
	ctx context.Context,
	cartItemID string,
	quantity int,
) (*CartItem, error) {

	query := `
	UPDATE carts
	SET quantity = $1,
	    updated_at = NOW()
	WHERE id = $2
	RETURNING
		id,
		user_id,
		product_id,
		variant_id,
		quantity,
		created_at,
		updated_at
	`

	var item CartItem
	err := r.db.QueryRowContext(ctx, query, quantity, cartItemID).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.VariantID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *repository) RemoveFromCart(ctx context.Context, userID uint, target Target) error {
	query := `DELETE FROM carts WHERE user_id = $1 AND `

	var args []any
	if target.VariantID != nil {
		query += `variant_id = $2`
		args = []any{userID, *target.VariantID}
	} else {
		query += `product_id = $2`
		args = []any{userID, *target.ProductID}
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// ClearCart removes every line for the user. Clearing an empty cart is
// not an error so the post-checkout cleanup path stays idempotent.
func (r *repository) ClearCart(ctx context.Context, userID uint) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	return err
}
