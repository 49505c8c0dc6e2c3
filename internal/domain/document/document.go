// Package document renders offers and invoices as printable PDFs.
package document

import "handwerk-crm/go_backend/internal/domain/crm"

// Company is the letterhead printed on every document.
type Company struct {
	Name    string
	Address string
}

// Generator turns CRM records into ready-to-download PDF bytes.
type Generator interface {
	Offer(o *crm.OfferWithCustomer) ([]byte, error)
	Invoice(inv *crm.InvoiceWithRelations) ([]byte, error)
}
