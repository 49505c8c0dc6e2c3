package crm

import "context"

// Store is the persistence boundary for all CRM records. The postgres
// implementation lives in internal/infra/db/postgres, an in-memory one in
// internal/infra/db/memstore.
type Store interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error)
	// ListCustomers returns customers newest-updated first. A non-empty
	// search narrows the result to rows whose first name, last name or
	// email contains the term, case-insensitively.
	ListCustomers(ctx context.Context, search string) ([]CustomerWithCounts, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	UpdateCustomer(ctx context.Context, id string, patch CustomerPatch) (*Customer, error)
	// DeleteCustomer removes the customer and everything it owns.
	DeleteCustomer(ctx context.Context, id string) error

	// CreateOffer assigns the next offer number atomically.
	CreateOffer(ctx context.Context, in OfferInput) (*Offer, error)
	// ListOffers returns offers newest first with the owning customer
	// joined; customerID narrows the list when non-empty.
	ListOffers(ctx context.Context, customerID string) ([]OfferWithCustomer, error)
	GetOffer(ctx context.Context, id string) (*OfferWithCustomer, error)
	UpdateOffer(ctx context.Context, id string, patch OfferPatch) (*Offer, error)

	// CreateInvoice bills an accepted offer. It fails with
	// ErrOfferNotAccepted or ErrInvoiceExists without writing anything;
	// the total amount is copied from the offer.
	CreateInvoice(ctx context.Context, offerID string) (*Invoice, error)
	ListInvoices(ctx context.Context, customerID string) ([]InvoiceWithRelations, error)
	GetInvoice(ctx context.Context, id string) (*InvoiceWithRelations, error)
	UpdateInvoice(ctx context.Context, id string, patch InvoicePatch) (*Invoice, error)

	CreateAppointment(ctx context.Context, in AppointmentInput) (*Appointment, error)
	ListAppointments(ctx context.Context, customerID string) ([]Appointment, error)
}
