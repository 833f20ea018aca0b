package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type ProductRepo struct{ DB *pgxpool.Pool }

// minimum_stock_level may be NULL on rows that predate the column, and
// is_low_stock is derived on read so such rows still honour the threshold.
const (
	minimumExpr    = `COALESCE(minimum_stock_level, 10)`
	productColumns = `id, name, sku, quantity,
	` + minimumExpr + `, quantity <= ` + minimumExpr + `, last_updated, created_at, updated_at`
)

func scanProduct(row pgx.Row) (inventory.Product, error) {
	var p inventory.Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Quantity, &p.MinimumStockLevel,
		&p.IsLowStock, &p.LastUpdated, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProductRepo) list(ctx context.Context, where string) ([]inventory.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products `+where+`
                                ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []inventory.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	return r.list(ctx, "")
}

func (r *ProductRepo) ListLowStock(ctx context.Context) ([]inventory.Product, error) {
	return r.list(ctx, "WHERE quantity <= "+minimumExpr)
}

func (r *ProductRepo) GetProduct(ctx context.Context, id string) (inventory.Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return inventory.Product{}, fmt.Errorf("%w: product %s", inventory.ErrNotFound, id)
	}
	if err != nil {
		return inventory.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (r *ProductRepo) InsertProduct(ctx context.Context, p inventory.Product) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, sku, quantity, minimum_stock_level, is_low_stock, last_updated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Name, p.SKU, p.Quantity, p.MinimumStockLevel, p.IsLowStock, p.LastUpdated, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapWriteErr(p.SKU, err)
	}
	return nil
}

func (r *ProductRepo) UpdateProduct(ctx context.Context, p inventory.Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		   SET name=$2, sku=$3, quantity=$4, minimum_stock_level=$5, is_low_stock=$6, last_updated=$7, updated_at=$8
		 WHERE id=$1
	`, p.ID, p.Name, p.SKU, p.Quantity, p.MinimumStockLevel, p.IsLowStock, p.LastUpdated, p.UpdatedAt)
	if err != nil {
		return mapWriteErr(p.SKU, err)
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: product %s", inventory.ErrNotFound, p.ID)
	}
	return nil
}

func (r *ProductRepo) DeleteProduct(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: product %s", inventory.ErrNotFound, id)
	}
	return nil
}

func mapWriteErr(sku string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: sku %q already exists", inventory.ErrValidation, sku)
		case "23514": // check_violation
			return fmt.Errorf("%w: %s", inventory.ErrValidation, pgErr.Message)
		}
	}
	return err
}
