package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gerai-be/internal/logger"
	"gerai-be/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, order *Order) error
	CancelOrderTx(ctx context.Context, orderID string) (*Order, error)

	GetOrders(ctx context.Context, filter *OrderFilter, sort *OrderSort, limit, page *int32) ([]*Order, error)
	GetOrderDetail(ctx context.Context, orderID string) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, from, to OrderStatus) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateOrderTx creates the order and its items and deducts stock in one
// transaction. Every line's stock row is locked with FOR UPDATE before
// the check, so two concurrent checkouts of the same last unit serialize
// and exactly one succeeds. Any shortage aborts the whole order.
func (r *repository) CreateOrderTx(ctx context.Context, order *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("order_id", order.ID),
		zap.Int("item_count", len(order.Items)),
	)

	log.Debug("starting order transaction")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	// Lock rows in a stable order to keep concurrent checkouts from
	// deadlocking against each other.
	for _, item := range sortedByTarget(order.Items) {
		if err := r.deductStockLocked(ctx, tx, item); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, status,
			subtotal, tax, shipping_fee, discount, total, currency,
			shipping_address_id, payment_method, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14)
	`,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.Status,
		order.Subtotal,
		order.Tax,
		order.ShippingFee,
		order.Discount,
		order.Total,
		order.Currency,
		order.ShippingAddressID,
		order.PaymentMethod,
		order.Notes,
		order.CreatedAt,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, variant_id,
				name, imageurl, quantity, price, subtotal
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING id
		`,
			order.ID,
			item.ProductID,
			item.VariantID,
			item.Name,
			item.ImageURL,
			item.Quantity,
			item.Price,
			item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order transaction committed")

	return nil
}

// deductStockLocked locks the item's stock row, verifies availability,
// and decrements. Returns *InsufficientStockError on shortage.
func (r *repository) deductStockLocked(ctx context.Context, tx *sql.Tx, item OrderItem) error {
	var (
		table string
		id    string
	)
	if item.VariantID != nil {
		table, id = "variants", *item.VariantID
	} else {
		table, id = "products", *item.ProductID
	}

	var available int
	err := tx.QueryRowContext(ctx,
		`SELECT stock FROM `+table+` WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return &InsufficientStockError{ItemName: item.Name, Requested: item.Quantity, Available: 0}
	}
	if err != nil {
		return err
	}

	if available < item.Quantity {
		return &InsufficientStockError{
			ItemName:  item.Name,
			Requested: item.Quantity,
			Available: available,
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE `+table+` SET stock = stock - $1 WHERE id = $2 AND stock >= $1`,
		item.Quantity, id,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &InsufficientStockError{
			ItemName:  item.Name,
			Requested: item.Quantity,
			Available: available,
		}
	}

	return nil
}

func sortedByTarget(items []OrderItem) []OrderItem {
	sorted := make([]OrderItem, len(items))
	copy(sorted, items)

	key := func(it OrderItem) string {
		if it.VariantID != nil {
			return "v:" + *it.VariantID
		}
		return "p:" + *it.ProductID
	}

	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && key(sorted[j]) < key(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

// CancelOrderTx flips a pending order to CANCELLED and restores the
// stock of every line, atomically. The order row is locked first so a
// concurrent status change or double cancel cannot slip through.
func (r *repository) CancelOrderTx(ctx context.Context, orderID string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CancelOrderTx"),
		zap.String("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	var o Order
	err = tx.QueryRowContext(ctx, `
		SELECT id, order_number, user_id, status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderID).Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to lock order row", zap.Error(err))
		return nil, err
	}

	if o.Status != StatusPending {
		return nil, ErrNotCancellable
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, product_id, variant_id, name, quantity, price, subtotal
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, err
	}

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.VariantID,
			&item.Name, &item.Quantity, &item.Price, &item.Subtotal,
		); err != nil {
			rows.Close()
			return nil, err
		}
		item.OrderID = orderID
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Restore exactly what the order deducted.
	for _, item := range o.Items {
		var (
			table string
			id    string
		)
		if item.VariantID != nil {
			table, id = "variants", *item.VariantID
		} else {
			table, id = "products", *item.ProductID
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE `+table+` SET stock = stock + $1 WHERE id = $2`,
			item.Quantity, id,
		)
		if err != nil {
			log.Error("failed to restore stock",
				zap.String("item_name", item.Name),
				zap.Error(err),
			)
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, StatusCancelled, orderID)
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit cancel transaction", zap.Error(err))
		return nil, err
	}

	committed = true
	o.Status = StatusCancelled

	log.Info("order cancelled, stock restored",
		zap.Int("items_restored", len(o.Items)),
	)

	return &o, nil
}

// GetOrders lists orders for the calling user; admins see everyone's.
func (r *repository) GetOrders(
	ctx context.Context,
	filter *OrderFilter,
	sort *OrderSort,
	limit, page *int32,
) ([]*Order, error) {

	// ---------- AUTH ----------
	userID, _ := utils.GetUserIDFromContext(ctx)
	role := utils.GetUserRoleFromContext(ctx)
	isAdmin := role == utils.RoleAdmin

	// ---------- PAGINATION ----------
	finalLimit := int32(20)
	finalPage := int32(1)

	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if page != nil && *page > 0 {
		finalPage = *page
	}
	if finalLimit > 100 {
		finalLimit = 100
	}

	offset := (finalPage - 1) * finalLimit

	log := logger.FromCtx(ctx).With(
		zap.String("method", "GetOrders"),
		zap.String("role", role),
		zap.Int32("limit", finalLimit),
		zap.Int32("page", finalPage),
		zap.Int32("offset", offset),
	)

	log.Debug("start get orders")

	// ---------- BASE QUERY ----------
	query := `
		SELECT
			o.id,
			o.order_number,
			o.user_id,
			o.status,
			o.subtotal,
			o.tax,
			o.shipping_fee,
			o.discount,
			o.total,
			o.currency,
			o.created_at,
			o.updated_at
		FROM orders o
		WHERE 1=1
	`

	args := []any{}
	argIndex := 1

	// ---------- ACCESS CONTROL ----------
	if !isAdmin {
		query += fmt.Sprintf(" AND o.user_id = $%d", argIndex)
		args = append(args, userID)
		argIndex++
	}

	// ---------- FILTERING ----------
	if filter != nil {

		if filter.Search != nil && *filter.Search != "" {
			query += fmt.Sprintf(
				" AND (o.order_number ILIKE $%d OR o.status ILIKE $%d)",
				argIndex, argIndex,
			)
			args = append(args, "%"+*filter.Search+"%")
			argIndex++
		}

		if filter.Status != nil && *filter.Status != "" {
			query += fmt.Sprintf(" AND o.status = $%d", argIndex)
			args = append(args, *filter.Status)
			argIndex++
		}

		if filter.DateFrom != nil {
			query += fmt.Sprintf(" AND o.created_at >= $%d", argIndex)
			args = append(args, *filter.DateFrom)
			argIndex++
		}

		if filter.DateTo != nil {
			query += fmt.Sprintf(" AND o.created_at <= $%d", argIndex)
			args = append(args, *filter.DateTo)
			argIndex++
		}
	}

	// ---------- SORTING ----------
	orderBy := "o.created_at DESC"

	if sort != nil {
		dir := strings.ToUpper(sort.Direction)
		if dir != "ASC" && dir != "DESC" {
			dir = "DESC"
		}

		switch sort.Field {
		case "total":
			orderBy = "o.total " + dir
		case "created_at":
			orderBy = "o.created_at " + dir
		}
	}

	query += " ORDER BY " + orderBy

	// ---------- PAGINATION ----------
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, finalLimit, offset)

	// ---------- EXECUTE ----------
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order

	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID,
			&o.OrderNumber,
			&o.UserID,
			&o.Status,
			&o.Subtotal,
			&o.Tax,
			&o.ShippingFee,
			&o.Discount,
			&o.Total,
			&o.Currency,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, &o)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	if err := r.loadItems(ctx, orders); err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, err
	}

	log.Info("get orders success",
		zap.Int("count", len(orders)),
	)

	return orders, nil
}

// loadItems attaches items to each order in one batched query.
func (r *repository) loadItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[string]*Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, variant_id, name, imageurl, quantity, price, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.VariantID,
			&item.Name, &item.ImageURL, &item.Quantity, &item.Price, &item.Subtotal,
		); err != nil {
			return err
		}
		if o := byID[item.OrderID]; o != nil {
			o.Items = append(o.Items, item)
		}
	}

	return rows.Err()
}

// GetOrderDetail loads one order with its items.
func (r *repository) GetOrderDetail(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT
			id, order_number, user_id, status,
			subtotal, tax, shipping_fee, discount, total, currency,
			shipping_address_id, payment_method, notes,
			created_at, updated_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status,
		&o.Subtotal, &o.Tax, &o.ShippingFee, &o.Discount, &o.Total, &o.Currency,
		&o.ShippingAddressID, &o.PaymentMethod, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, variant_id, name, imageurl, quantity, price, subtotal
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.VariantID,
			&item.Name, &item.ImageURL, &item.Quantity, &item.Price, &item.Subtotal,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}

	return &o, rows.Err()
}

// UpdateOrderStatus moves an order between statuses, guarded by the
// expected current status so concurrent updates can't race past the
// transition rules.
func (r *repository) UpdateOrderStatus(ctx context.Context, orderID string, from, to OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, orderID, from)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	return nil
}
