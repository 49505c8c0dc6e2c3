package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"handwerk-crm/go_backend/internal/domain/crm"
)

// Store implements crm.Store on top of a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ crm.Store = (*Store)(nil)

func NewStore(db *DB) *Store {
	return &Store{pool: db.Pool}
}

const customerColumns = `id, first_name, last_name, email, phone, address, is_prospect, created_at, updated_at`

const offerColumns = `id, customer_id, offer_number, job_description, measurements,
	materials_cost, labor_cost, total_cost, status, created_at, updated_at`

const invoiceColumns = `id, customer_id, offer_id, invoice_number, total_amount, status, created_at, updated_at`

func (s *Store) CreateCustomer(ctx context.Context, in crm.CustomerInput) (*crm.Customer, error) {
	now := time.Now().UTC()
	c := crm.Customer{
		ID:         uuid.NewString(),
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      normalizeOptional(in.Email),
		Phone:      normalizeOptional(in.Phone),
		Address:    normalizeOptional(in.Address),
		IsProspect: in.IsProspect,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO customers (id, first_name, last_name, email, phone, address, is_prospect, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.IsProspect, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return &c, nil
}

func (s *Store) ListCustomers(ctx context.Context, search string) ([]crm.CustomerWithCounts, error) {
	query := `
		SELECT c.id, c.first_name, c.last_name, c.email, c.phone, c.address, c.is_prospect, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM offers o WHERE o.customer_id = c.id),
			(SELECT COUNT(*) FROM invoices i WHERE i.customer_id = c.id),
			(SELECT COUNT(*) FROM appointments a WHERE a.customer_id = c.id)
		FROM customers c`
	args := []any{}
	if term := strings.TrimSpace(search); term != "" {
		query += `
		WHERE c.first_name ILIKE '%' || $1 || '%'
			OR c.last_name ILIKE '%' || $1 || '%'
			OR c.email ILIKE '%' || $1 || '%'`
		args = append(args, term)
	}
	query += `
		ORDER BY c.updated_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []crm.CustomerWithCounts
	for rows.Next() {
		var c crm.CustomerWithCounts
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address,
			&c.IsProspect, &c.CreatedAt, &c.UpdatedAt,
			&c.OfferCount, &c.InvoiceCount, &c.AppointmentCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if out == nil {
		out = []crm.CustomerWithCounts{}
	}
	return out, rows.Err()
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*crm.Customer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, id string, patch crm.CustomerPatch) (*crm.Customer, error) {
	set := newSetBuilder()
	if patch.FirstName != nil {
		set.add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set.add("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		set.add("email", normalizeOptional(patch.Email))
	}
	if patch.Phone != nil {
		set.add("phone", normalizeOptional(patch.Phone))
	}
	if patch.Address != nil {
		set.add("address", normalizeOptional(patch.Address))
	}
	if patch.IsProspect != nil {
		set.add("is_prospect", *patch.IsProspect)
	}
	set.add("updated_at", time.Now().UTC())

	row := s.pool.QueryRow(ctx,
		`UPDATE customers SET `+set.clause()+` WHERE id = `+set.next()+` RETURNING `+customerColumns,
		append(set.args, id)...)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return c, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	// Offers, invoices and appointments go with the customer (ON DELETE CASCADE).
	tag, err := s.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return crm.ErrNotFound
	}
	return nil
}

func (s *Store) CreateOffer(ctx context.Context, in crm.OfferInput) (*crm.Offer, error) {
	now := time.Now().UTC()
	o := crm.Offer{
		ID:             uuid.NewString(),
		CustomerID:     in.CustomerID,
		JobDescription: normalizeOptional(in.JobDescription),
		Measurements:   normalizeOptional(in.Measurements),
		MaterialsCost:  in.MaterialsCost,
		LaborCost:      in.LaborCost,
		TotalCost:      in.TotalCost,
		Status:         crm.OfferDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, in.CustomerID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("customer %s: %w", in.CustomerID, crm.ErrNotFound)
		}
		seq, err := nextSeq(ctx, tx, fmt.Sprintf("offer-%d", now.Year()))
		if err != nil {
			return err
		}
		o.OfferNumber = crm.FormatOfferNumber(now.Year(), seq)
		_, err = tx.Exec(ctx, `
			INSERT INTO offers (id, customer_id, offer_number, job_description, measurements,
				materials_cost, labor_cost, total_cost, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			o.ID, o.CustomerID, o.OfferNumber, o.JobDescription, o.Measurements,
			o.MaterialsCost, o.LaborCost, o.TotalCost, o.Status, o.CreatedAt, o.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) ListOffers(ctx context.Context, customerID string) ([]crm.OfferWithCustomer, error) {
	query := `
		SELECT o.id, o.customer_id, o.offer_number, o.job_description, o.measurements,
			o.materials_cost, o.labor_cost, o.total_cost, o.status, o.created_at, o.updated_at,
			c.id, c.first_name, c.last_name, c.email, c.phone, c.address, c.is_prospect, c.created_at, c.updated_at
		FROM offers o
		JOIN customers c ON c.id = o.customer_id`
	args := []any{}
	if customerID != "" {
		query += `
		WHERE o.customer_id = $1`
		args = append(args, customerID)
	}
	query += `
		ORDER BY o.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	out := []crm.OfferWithCustomer{}
	for rows.Next() {
		var row crm.OfferWithCustomer
		var c crm.Customer
		if err := rows.Scan(&row.ID, &row.CustomerID, &row.OfferNumber, &row.JobDescription, &row.Measurements,
			&row.MaterialsCost, &row.LaborCost, &row.TotalCost, &row.Status, &row.CreatedAt, &row.UpdatedAt,
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.IsProspect, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		row.Customer = &c
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) GetOffer(ctx context.Context, id string) (*crm.OfferWithCustomer, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT o.id, o.customer_id, o.offer_number, o.job_description, o.measurements,
			o.materials_cost, o.labor_cost, o.total_cost, o.status, o.created_at, o.updated_at,
			c.id, c.first_name, c.last_name, c.email, c.phone, c.address, c.is_prospect, c.created_at, c.updated_at
		FROM offers o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1`, id)

	var out crm.OfferWithCustomer
	var c crm.Customer
	err := row.Scan(&out.ID, &out.CustomerID, &out.OfferNumber, &out.JobDescription, &out.Measurements,
		&out.MaterialsCost, &out.LaborCost, &out.TotalCost, &out.Status, &out.CreatedAt, &out.UpdatedAt,
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.IsProspect, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	out.Customer = &c
	return &out, nil
}

func (s *Store) UpdateOffer(ctx context.Context, id string, patch crm.OfferPatch) (*crm.Offer, error) {
	var out *crm.Offer
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var current crm.OfferStatus
		err := tx.QueryRow(ctx, `SELECT status FROM offers WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			return mapNoRows(err)
		}
		if patch.Status != nil && !current.CanTransitionTo(*patch.Status) {
			return fmt.Errorf("%s -> %s: %w", current, *patch.Status, crm.ErrInvalidTransition)
		}

		set := newSetBuilder()
		if patch.JobDescription != nil {
			set.add("job_description", normalizeOptional(patch.JobDescription))
		}
		if patch.Measurements != nil {
			set.add("measurements", normalizeOptional(patch.Measurements))
		}
		if patch.MaterialsCost != nil {
			set.add("materials_cost", *patch.MaterialsCost)
		}
		if patch.LaborCost != nil {
			set.add("labor_cost", *patch.LaborCost)
		}
		if patch.TotalCost != nil {
			set.add("total_cost", *patch.TotalCost)
		}
		if patch.Status != nil {
			set.add("status", *patch.Status)
		}
		set.add("updated_at", time.Now().UTC())

		row := tx.QueryRow(ctx,
			`UPDATE offers SET `+set.clause()+` WHERE id = `+set.next()+` RETURNING `+offerColumns,
			append(set.args, id)...)
		o, err := scanOffer(row)
		if err != nil {
			return mapNoRows(err)
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateInvoice(ctx context.Context, offerID string) (*crm.Invoice, error) {
	now := time.Now().UTC()
	inv := crm.Invoice{
		ID:        uuid.NewString(),
		OfferID:   offerID,
		Status:    crm.InvoiceDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var status crm.OfferStatus
		err := tx.QueryRow(ctx, `
			SELECT customer_id, total_cost, status FROM offers WHERE id = $1 FOR UPDATE`, offerID).
			Scan(&inv.CustomerID, &inv.TotalAmount, &status)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("offer %s: %w", offerID, crm.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if status != crm.OfferAccepted {
			return crm.ErrOfferNotAccepted
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE offer_id = $1)`, offerID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return crm.ErrInvoiceExists
		}
		seq, err := nextSeq(ctx, tx, fmt.Sprintf("invoice-%d", now.Year()))
		if err != nil {
			return err
		}
		inv.InvoiceNumber = crm.FormatInvoiceNumber(now.Year(), seq)
		_, err = tx.Exec(ctx, `
			INSERT INTO invoices (id, customer_id, offer_id, invoice_number, total_amount, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			inv.ID, inv.CustomerID, inv.OfferID, inv.InvoiceNumber, inv.TotalAmount, inv.Status, inv.CreatedAt, inv.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

const invoiceJoinQuery = `
	SELECT i.id, i.customer_id, i.offer_id, i.invoice_number, i.total_amount, i.status, i.created_at, i.updated_at,
		c.id, c.first_name, c.last_name, c.email, c.phone, c.address, c.is_prospect, c.created_at, c.updated_at,
		o.id, o.customer_id, o.offer_number, o.job_description, o.measurements,
		o.materials_cost, o.labor_cost, o.total_cost, o.status, o.created_at, o.updated_at
	FROM invoices i
	JOIN customers c ON c.id = i.customer_id
	JOIN offers o ON o.id = i.offer_id`

func scanInvoiceRow(row pgx.Row) (*crm.InvoiceWithRelations, error) {
	var out crm.InvoiceWithRelations
	var c crm.Customer
	var o crm.Offer
	err := row.Scan(&out.ID, &out.CustomerID, &out.OfferID, &out.InvoiceNumber, &out.TotalAmount,
		&out.Status, &out.CreatedAt, &out.UpdatedAt,
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.IsProspect, &c.CreatedAt, &c.UpdatedAt,
		&o.ID, &o.CustomerID, &o.OfferNumber, &o.JobDescription, &o.Measurements,
		&o.MaterialsCost, &o.LaborCost, &o.TotalCost, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	out.Customer = &c
	out.Offer = &o
	return &out, nil
}

func (s *Store) ListInvoices(ctx context.Context, customerID string) ([]crm.InvoiceWithRelations, error) {
	query := invoiceJoinQuery
	args := []any{}
	if customerID != "" {
		query += `
	WHERE i.customer_id = $1`
		args = append(args, customerID)
	}
	query += `
	ORDER BY i.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	out := []crm.InvoiceWithRelations{}
	for rows.Next() {
		inv, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*crm.InvoiceWithRelations, error) {
	row := s.pool.QueryRow(ctx, invoiceJoinQuery+`
	WHERE i.id = $1`, id)
	inv, err := scanInvoiceRow(row)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return inv, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, id string, patch crm.InvoicePatch) (*crm.Invoice, error) {
	var out *crm.Invoice
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var current crm.InvoiceStatus
		err := tx.QueryRow(ctx, `SELECT status FROM invoices WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			return mapNoRows(err)
		}
		if patch.Status != nil && !current.CanTransitionTo(*patch.Status) {
			return fmt.Errorf("%s -> %s: %w", current, *patch.Status, crm.ErrInvalidTransition)
		}

		set := newSetBuilder()
		if patch.Status != nil {
			set.add("status", *patch.Status)
		}
		set.add("updated_at", time.Now().UTC())

		row := tx.QueryRow(ctx,
			`UPDATE invoices SET `+set.clause()+` WHERE id = `+set.next()+` RETURNING `+invoiceColumns,
			append(set.args, id)...)
		var inv crm.Invoice
		if err := row.Scan(&inv.ID, &inv.CustomerID, &inv.OfferID, &inv.InvoiceNumber,
			&inv.TotalAmount, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return mapNoRows(err)
		}
		out = &inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateAppointment(ctx context.Context, in crm.AppointmentInput) (*crm.Appointment, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, in.CustomerID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("customer %s: %w", in.CustomerID, crm.ErrNotFound)
	}

	now := time.Now().UTC()
	a := crm.Appointment{
		ID:         uuid.NewString(),
		CustomerID: in.CustomerID,
		Date:       in.Date,
		Notes:      normalizeOptional(in.Notes),
		Photos:     normalizeOptional(in.Photos),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO appointments (id, customer_id, date, notes, photos, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.CustomerID, a.Date, a.Notes, a.Photos, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return &a, nil
}

func (s *Store) ListAppointments(ctx context.Context, customerID string) ([]crm.Appointment, error) {
	query := `
		SELECT id, customer_id, date, notes, photos, created_at, updated_at
		FROM appointments`
	args := []any{}
	if customerID != "" {
		query += `
		WHERE customer_id = $1`
		args = append(args, customerID)
	}
	query += `
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	out := []crm.Appointment{}
	for rows.Next() {
		var a crm.Appointment
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Date, &a.Notes, &a.Photos, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// nextSeq increments the per-scope document counter inside the caller's
// transaction, so concurrent creates never hand out the same number.
func nextSeq(ctx context.Context, tx pgx.Tx, scope string) (int64, error) {
	var value int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_counters (scope, value) VALUES ($1, 1)
		ON CONFLICT (scope) DO UPDATE SET value = document_counters.value + 1
		RETURNING value`, scope).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", scope, err)
	}
	return value, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanCustomer(row pgx.Row) (*crm.Customer, error) {
	var c crm.Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address,
		&c.IsProspect, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanOffer(row pgx.Row) (*crm.Offer, error) {
	var o crm.Offer
	err := row.Scan(&o.ID, &o.CustomerID, &o.OfferNumber, &o.JobDescription, &o.Measurements,
		&o.MaterialsCost, &o.LaborCost, &o.TotalCost, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return crm.ErrNotFound
	}
	return err
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// setBuilder assembles the SET clause of a partial UPDATE from the patch
// fields that are actually present.
type setBuilder struct {
	parts []string
	args  []any
}

func newSetBuilder() *setBuilder {
	return &setBuilder{}
}

func (b *setBuilder) add(column string, value any) {
	b.args = append(b.args, value)
	b.parts = append(b.parts, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// next returns the placeholder for the argument appended after the SET list,
// i.e. the WHERE id parameter.
func (b *setBuilder) next() string {
	return fmt.Sprintf("$%d", len(b.args)+1)
}

func (b *setBuilder) clause() string {
	return strings.Join(b.parts, ", ")
}
