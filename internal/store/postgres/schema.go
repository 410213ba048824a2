package postgres

import (
	"context"
)

// Bootstrap creates the schema when it does not exist yet and seeds the
// default payment method catalog. It is safe to run on every start.
func (s *Store) Bootstrap(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			barcode TEXT UNIQUE,
			category_id BIGINT REFERENCES categories(id),
			unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			purchase_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL DEFAULT 0,
			min_stock INTEGER NOT NULL DEFAULT 0,
			reorder_point INTEGER NOT NULL DEFAULT 0,
			has_variants BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS product_variants (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			attribute_values TEXT NOT NULL DEFAULT '{}',
			stock INTEGER NOT NULL DEFAULT 0,
			price_adjustment DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT REFERENCES users(id),
			customer_id BIGINT REFERENCES customers(id),
			total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			discount DOUBLE PRECISION NOT NULL DEFAULT 0,
			final_total DOUBLE PRECISION NOT NULL DEFAULT 0,
			payment_method TEXT NOT NULL DEFAULT '',
			reference TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS sale_items (
			id BIGSERIAL PRIMARY KEY,
			sale_id BIGINT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES products(id),
			variant_id BIGINT REFERENCES product_variants(id),
			quantity INTEGER NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			unit_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			subtotal DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS stock_movements (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id),
			variant_id BIGINT REFERENCES product_variants(id),
			movement_type TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			reference TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			user_id BIGINT REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS payment_methods (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT true,
			requires_reference BOOLEAN NOT NULL DEFAULT false,
			reference_label TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS sale_payments (
			id BIGSERIAL PRIMARY KEY,
			sale_id BIGINT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
			payment_method_id BIGINT REFERENCES payment_methods(id),
			amount DOUBLE PRECISION NOT NULL,
			reference TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sale_items_sale_id ON sale_items (sale_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sale_items_product_id ON sale_items (product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_movements_created_at ON stock_movements (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sale_payments_sale_id ON sale_payments (sale_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return s.seedPaymentMethods(ctx)
}

// seedPaymentMethods installs the default method catalog. It only runs when
// the table is empty so operator changes are never overwritten.
func (s *Store) seedPaymentMethods(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payment_methods`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		name              string
		code              string
		requiresReference bool
		referenceLabel    string
	}{
		{"Espèces", "CASH", false, ""},
		{"Carte", "CARD", true, "N° Transaction"},
		{"Chèque", "CHECK", true, "N° Chèque"},
		{"Virement", "TRANSFER", true, "Référence"},
		{"Crédit", "CREDIT", false, ""},
	}
	for _, m := range defaults {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO payment_methods (name, code, is_active, requires_reference, reference_label, created_at)
			VALUES ($1,$2,true,$3,$4,now())
			ON CONFLICT (name) DO NOTHING
		`, m.name, m.code, m.requiresReference, m.referenceLabel)
		if err != nil {
			return err
		}
	}
	return nil
}
