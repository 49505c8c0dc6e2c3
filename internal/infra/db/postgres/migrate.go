package postgres

import "context"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		is_prospect BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS offers (
		id UUID PRIMARY KEY,
		customer_id UUID NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		offer_number TEXT NOT NULL UNIQUE,
		job_description TEXT,
		measurements TEXT,
		materials_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		labor_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY,
		customer_id UUID NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		offer_id UUID NOT NULL UNIQUE REFERENCES offers(id) ON DELETE CASCADE,
		invoice_number TEXT NOT NULL UNIQUE,
		total_amount DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id UUID PRIMARY KEY,
		customer_id UUID NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		date TIMESTAMPTZ NOT NULL,
		notes TEXT,
		photos TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS document_counters (
		scope TEXT PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_offers_customer ON offers(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_customer ON invoices(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_customer ON appointments(customer_id)`,
}

// Migrate creates the schema. Statements are idempotent, so running it on
// every startup is safe.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
