// Package memstore is a mutex-guarded in-memory crm.Store. It mirrors the
// postgres semantics closely enough to back the test suite and local
// development without a database.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"handwerk-crm/go_backend/internal/domain/crm"
)

type Store struct {
	mu           sync.Mutex
	customers    map[string]*crm.Customer
	offers       map[string]*crm.Offer
	invoices     map[string]*crm.Invoice
	appointments map[string]*crm.Appointment
	counters     map[string]int64
	lastTick     time.Time
}

var _ crm.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		customers:    make(map[string]*crm.Customer),
		offers:       make(map[string]*crm.Offer),
		invoices:     make(map[string]*crm.Invoice),
		appointments: make(map[string]*crm.Appointment),
		counters:     make(map[string]int64),
	}
}

func (s *Store) nextSeq(scope string) int64 {
	s.counters[scope]++
	return s.counters[scope]
}

// now returns strictly increasing timestamps so list ordering stays stable
// even when writes land within the same clock tick.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.lastTick) {
		t = s.lastTick.Add(time.Microsecond)
	}
	s.lastTick = t
	return t
}

func (s *Store) CreateCustomer(_ context.Context, in crm.CustomerInput) (*crm.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := &crm.Customer{
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
	s.customers[c.ID] = c
	out := *c
	return &out, nil
}

func (s *Store) ListCustomers(_ context.Context, search string) ([]crm.CustomerWithCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]crm.CustomerWithCounts, 0, len(s.customers))
	for _, c := range s.customers {
		if term != "" && !matchesCustomer(c, term) {
			continue
		}
		row := crm.CustomerWithCounts{Customer: *c}
		for _, o := range s.offers {
			if o.CustomerID == c.ID {
				row.OfferCount++
			}
		}
		for _, inv := range s.invoices {
			if inv.CustomerID == c.ID {
				row.InvoiceCount++
			}
		}
		for _, a := range s.appointments {
			if a.CustomerID == c.ID {
				row.AppointmentCount++
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func matchesCustomer(c *crm.Customer, term string) bool {
	if strings.Contains(strings.ToLower(c.FirstName), term) {
		return true
	}
	if strings.Contains(strings.ToLower(c.LastName), term) {
		return true
	}
	return c.Email != nil && strings.Contains(strings.ToLower(*c.Email), term)
}

func (s *Store) GetCustomer(_ context.Context, id string) (*crm.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, crm.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *Store) UpdateCustomer(_ context.Context, id string, patch crm.CustomerPatch) (*crm.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, crm.ErrNotFound
	}
	if patch.FirstName != nil {
		c.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		c.LastName = *patch.LastName
	}
	if patch.Email != nil {
		c.Email = normalizeOptional(patch.Email)
	}
	if patch.Phone != nil {
		c.Phone = normalizeOptional(patch.Phone)
	}
	if patch.Address != nil {
		c.Address = normalizeOptional(patch.Address)
	}
	if patch.IsProspect != nil {
		c.IsProspect = *patch.IsProspect
	}
	c.UpdatedAt = s.now()
	out := *c
	return &out, nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return crm.ErrNotFound
	}
	delete(s.customers, id)
	for oid, o := range s.offers {
		if o.CustomerID == id {
			delete(s.offers, oid)
		}
	}
	for iid, inv := range s.invoices {
		if inv.CustomerID == id {
			delete(s.invoices, iid)
		}
	}
	for aid, a := range s.appointments {
		if a.CustomerID == id {
			delete(s.appointments, aid)
		}
	}
	return nil
}

func (s *Store) CreateOffer(_ context.Context, in crm.OfferInput) (*crm.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[in.CustomerID]; !ok {
		return nil, fmt.Errorf("customer %s: %w", in.CustomerID, crm.ErrNotFound)
	}
	now := s.now()
	year := now.Year()
	seq := s.nextSeq(fmt.Sprintf("offer-%d", year))
	o := &crm.Offer{
		ID:             uuid.NewString(),
		CustomerID:     in.CustomerID,
		OfferNumber:    crm.FormatOfferNumber(year, seq),
		JobDescription: normalizeOptional(in.JobDescription),
		Measurements:   normalizeOptional(in.Measurements),
		MaterialsCost:  in.MaterialsCost,
		LaborCost:      in.LaborCost,
		TotalCost:      in.TotalCost,
		Status:         crm.OfferDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.offers[o.ID] = o
	out := *o
	return &out, nil
}

func (s *Store) ListOffers(_ context.Context, customerID string) ([]crm.OfferWithCustomer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]crm.OfferWithCustomer, 0, len(s.offers))
	for _, o := range s.offers {
		if customerID != "" && o.CustomerID != customerID {
			continue
		}
		row := crm.OfferWithCustomer{Offer: *o}
		if c, ok := s.customers[o.CustomerID]; ok {
			cc := *c
			row.Customer = &cc
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetOffer(_ context.Context, id string) (*crm.OfferWithCustomer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offers[id]
	if !ok {
		return nil, crm.ErrNotFound
	}
	row := crm.OfferWithCustomer{Offer: *o}
	if c, ok := s.customers[o.CustomerID]; ok {
		cc := *c
		row.Customer = &cc
	}
	return &row, nil
}

func (s *Store) UpdateOffer(_ context.Context, id string, patch crm.OfferPatch) (*crm.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offers[id]
	if !ok {
		return nil, crm.ErrNotFound
	}
	if patch.Status != nil && !o.Status.CanTransitionTo(*patch.Status) {
		return nil, fmt.Errorf("%s -> %s: %w", o.Status, *patch.Status, crm.ErrInvalidTransition)
	}
	if patch.JobDescription != nil {
		o.JobDescription = normalizeOptional(patch.JobDescription)
	}
	if patch.Measurements != nil {
		o.Measurements = normalizeOptional(patch.Measurements)
	}
	if patch.MaterialsCost != nil {
		o.MaterialsCost = *patch.MaterialsCost
	}
	if patch.LaborCost != nil {
		o.LaborCost = *patch.LaborCost
	}
	if patch.TotalCost != nil {
		o.TotalCost = *patch.TotalCost
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	o.UpdatedAt = s.now()
	out := *o
	return &out, nil
}

func (s *Store) CreateInvoice(_ context.Context, offerID string) (*crm.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offers[offerID]
	if !ok {
		return nil, fmt.Errorf("offer %s: %w", offerID, crm.ErrNotFound)
	}
	if o.Status != crm.OfferAccepted {
		return nil, crm.ErrOfferNotAccepted
	}
	for _, inv := range s.invoices {
		if inv.OfferID == offerID {
			return nil, crm.ErrInvoiceExists
		}
	}
	now := s.now()
	year := now.Year()
	seq := s.nextSeq(fmt.Sprintf("invoice-%d", year))
	inv := &crm.Invoice{
		ID:            uuid.NewString(),
		CustomerID:    o.CustomerID,
		OfferID:       offerID,
		InvoiceNumber: crm.FormatInvoiceNumber(year, seq),
		TotalAmount:   o.TotalCost,
		Status:        crm.InvoiceDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.invoices[inv.ID] = inv
	out := *inv
	return &out, nil
}

func (s *Store) ListInvoices(_ context.Context, customerID string) ([]crm.InvoiceWithRelations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]crm.InvoiceWithRelations, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if customerID != "" && inv.CustomerID != customerID {
			continue
		}
		out = append(out, s.invoiceRow(inv))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetInvoice(_ context.Context, id string) (*crm.InvoiceWithRelations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, crm.ErrNotFound
	}
	row := s.invoiceRow(inv)
	return &row, nil
}

func (s *Store) invoiceRow(inv *crm.Invoice) crm.InvoiceWithRelations {
	row := crm.InvoiceWithRelations{Invoice: *inv}
	if c, ok := s.customers[inv.CustomerID]; ok {
		cc := *c
		row.Customer = &cc
	}
	if o, ok := s.offers[inv.OfferID]; ok {
		oo := *o
		row.Offer = &oo
	}
	return row
}

func (s *Store) UpdateInvoice(_ context.Context, id string, patch crm.InvoicePatch) (*crm.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, crm.ErrNotFound
	}
	if patch.Status != nil {
		if !inv.Status.CanTransitionTo(*patch.Status) {
			return nil, fmt.Errorf("%s -> %s: %w", inv.Status, *patch.Status, crm.ErrInvalidTransition)
		}
		inv.Status = *patch.Status
	}
	inv.UpdatedAt = s.now()
	out := *inv
	return &out, nil
}

func (s *Store) CreateAppointment(_ context.Context, in crm.AppointmentInput) (*crm.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[in.CustomerID]; !ok {
		return nil, fmt.Errorf("customer %s: %w", in.CustomerID, crm.ErrNotFound)
	}
	now := s.now()
	a := &crm.Appointment{
		ID:         uuid.NewString(),
		CustomerID: in.CustomerID,
		Date:       in.Date,
		Notes:      normalizeOptional(in.Notes),
		Photos:     normalizeOptional(in.Photos),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.appointments[a.ID] = a
	out := *a
	return &out, nil
}

func (s *Store) ListAppointments(_ context.Context, customerID string) ([]crm.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]crm.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if customerID != "" && a.CustomerID != customerID {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// normalizeOptional maps empty strings to nil so optional fields are stored
// as absent, matching the postgres NULL handling.
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
