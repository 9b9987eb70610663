package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderdesk/orderdesk/internal/domain/order"
)

const (
	listOrdersSQL = `SELECT id, order_number, status, order_date, lines FROM orders ORDER BY id`

	getOrderSQL = `SELECT id, order_number, status, order_date, lines FROM orders WHERE id = $1`

	insertOrderSQL = `INSERT INTO orders (order_number, status, lines) VALUES ($1, $2, $3) RETURNING id`

	updateOrderSQL = `UPDATE orders SET order_number = $2, status = $3, lines = $4 WHERE id = $1`

	setOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Order
// lines are serialized to a JSONB column.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// List returns the summary projection of every order.
func (r *OrderRepository) List(ctx context.Context) ([]order.Summary, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	summaries := make([]order.Summary, len(orders))
	for i := range orders {
		o := &orders[i]
		summaries[i] = order.Summary{
			ID:           o.ID,
			OrderNumber:  o.OrderNumber,
			Date:         o.Date,
			ProductCount: len(o.Lines),
			FinalPrice:   o.FinalPrice(),
			Status:       o.Status,
		}
	}
	return summaries, nil
}

// GetByID returns one order with its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %d", id)
	}
	return &o, nil
}

// Create persists a new order and returns its generated id. The order date
// is assigned by the database.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (int64, error) {
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return 0, errors.Wrap(err, "marshal order lines")
	}

	var id int64
	if err := r.pool.QueryRow(ctx, insertOrderSQL, o.OrderNumber, string(o.Status), lines).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "create order")
	}
	return id, nil
}

// Update replaces order number, status and lines of an existing order.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return errors.Wrap(err, "marshal order lines")
	}

	tag, err := r.pool.Exec(ctx, updateOrderSQL, o.ID, o.OrderNumber, string(o.Status), lines)
	if err != nil {
		return errors.Wrapf(err, "update order %d", o.ID)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// SetStatus updates only the status column.
func (r *OrderRepository) SetStatus(ctx context.Context, id int64, status order.Status) error {
	tag, err := r.pool.Exec(ctx, setOrderStatusSQL, id, string(status))
	if err != nil {
		return errors.Wrapf(err, "set order %d status", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Delete removes an order.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return errors.Wrapf(err, "delete order %d", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o     order.Order
		st    string
		date  time.Time
		lines []byte
	)
	if err := row.Scan(&o.ID, &o.OrderNumber, &st, &date, &lines); err != nil {
		return order.Order{}, err
	}
	o.Status = order.Status(st)
	o.Date = date
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return order.Order{}, errors.Wrapf(err, "decode order %d lines", o.ID)
	}
	return o, nil
}
