// Package tool is the contract layer between the CRM store, the HTTP
// surface and the conversational assistant: a fixed catalog of named
// operations, each with an input schema, a handler and a render template,
// all answering with the same envelope shape.
package tool

import "handwerk-crm/go_backend/internal/domain/crm"

// Envelope is the uniform result of every tool invocation, success or
// failure. Message carries a German, user-facing sentence; Error holds the
// machine-readable diagnostic.
type Envelope struct {
	Success      bool                       `json:"success"`
	Customer     *crm.Customer              `json:"customer,omitempty"`
	Customers    []crm.CustomerWithCounts   `json:"customers,omitempty"`
	Offer        *crm.Offer                 `json:"offer,omitempty"`
	Offers       []crm.OfferWithCustomer    `json:"offers,omitempty"`
	Invoice      *crm.Invoice               `json:"invoice,omitempty"`
	Invoices     []crm.InvoiceWithRelations `json:"invoices,omitempty"`
	Appointment  *crm.Appointment           `json:"appointment,omitempty"`
	Appointments []crm.Appointment          `json:"appointments,omitempty"`
	Count        *int                       `json:"count,omitempty"`
	Message      string                     `json:"message"`
	Error        string                     `json:"error,omitempty"`
}

func failure(message, diagnostic string) Envelope {
	return Envelope{Success: false, Message: message, Error: diagnostic}
}

func countOf(n int) *int { return &n }
