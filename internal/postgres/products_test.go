package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Runs against a live database: STOCK_TEST_POSTGRES_DSN=postgres://... go test ./internal/postgres
func TestProducts_LegacyRowWithoutMinimum(t *testing.T) {
	dsn := os.Getenv("STOCK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STOCK_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	id := uuid.NewString()
	// a row as written before minimum_stock_level had a default
	if _, err := db.Exec(ctx, `INSERT INTO products (id, name, sku, quantity, minimum_stock_level, is_low_stock)
		VALUES ($1, 'Legacy', $2, 3, NULL, FALSE)`, id, "LEGACY-"+id); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}
	t.Cleanup(func() { _, _ = db.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, id) })

	repo := &ProductRepo{DB: db}
	p, err := repo.GetProduct(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.MinimumStockLevel != 10 || !p.IsLowStock {
		t.Fatalf("legacy row read as min=%d low=%v", p.MinimumStockLevel, p.IsLowStock)
	}

	low, err := repo.ListLowStock(ctx)
	if err != nil {
		t.Fatalf("low: %v", err)
	}
	found := false
	for _, l := range low {
		found = found || l.ID == id
	}
	if !found {
		t.Fatalf("legacy row missing from low-stock list")
	}

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}
	var (
		min    *int
		stored bool
	)
	if err := db.QueryRow(ctx, `SELECT minimum_stock_level, is_low_stock FROM products WHERE id = $1`, id).
		Scan(&min, &stored); err != nil {
		t.Fatalf("select: %v", err)
	}
	if min == nil || *min != 10 || !stored {
		t.Fatalf("backfill left min=%v low=%v", min, stored)
	}
}
