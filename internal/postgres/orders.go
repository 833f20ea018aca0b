package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepo stores each order as one row; items live in a JSONB document.
type OrderRepo struct{ DB *pgxpool.Pool }

const orderColumns = `id, items, status, total_items, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (inventory.Order, error) {
	var (
		o     inventory.Order
		items []byte
		st    string
	)
	if err := row.Scan(&o.ID, &items, &st, &o.TotalItems, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return o, err
	}
	o.Status = inventory.Status(st)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	return o, nil
}

func (r *OrderRepo) list(ctx context.Context, where string, args ...any) ([]inventory.Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders `+where+`
                                ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []inventory.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) ListOrders(ctx context.Context) ([]inventory.Order, error) {
	return r.list(ctx, "")
}

func (r *OrderRepo) ListOrdersByStaff(ctx context.Context, staffID string) ([]inventory.Order, error) {
	return r.list(ctx, "WHERE created_by=$1", staffID)
}

func (r *OrderRepo) GetOrder(ctx context.Context, id string) (inventory.Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return inventory.Order{}, fmt.Errorf("%w: order %s", inventory.ErrNotFound, id)
	}
	return o, err
}

func (r *OrderRepo) InsertOrder(ctx context.Context, o inventory.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO orders(id, items, status, total_items, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, o.ID, items, string(o.Status), o.TotalItems, o.CreatedBy, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OrderRepo) UpdateOrderStatus(ctx context.Context, id string, status inventory.Status, at time.Time) (inventory.Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `
		UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1
		RETURNING `+orderColumns, id, string(status), at))
	if errors.Is(err, pgx.ErrNoRows) {
		return inventory.Order{}, fmt.Errorf("%w: order %s", inventory.ErrNotFound, id)
	}
	return o, err
}
