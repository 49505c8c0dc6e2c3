// Package crm holds the business entities of the Handwerker-CRM:
// customers and the offers, invoices and appointments they own.
package crm

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrOfferNotAccepted  = errors.New("offer not accepted")
	ErrInvoiceExists     = errors.New("invoice already exists for offer")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type OfferStatus string

const (
	OfferDraft    OfferStatus = "DRAFT"
	OfferSent     OfferStatus = "SENT"
	OfferAccepted OfferStatus = "ACCEPTED"
	OfferDeclined OfferStatus = "DECLINED"
)

func ParseOfferStatus(s string) (OfferStatus, error) {
	switch OfferStatus(s) {
	case OfferDraft, OfferSent, OfferAccepted, OfferDeclined:
		return OfferStatus(s), nil
	}
	return "", fmt.Errorf("unknown offer status %q", s)
}

// CanTransitionTo reports whether the move to next is a legal step of the
// offer lifecycle DRAFT -> SENT -> {ACCEPTED, DECLINED}. Writing the current
// status again is a no-op and always allowed; backward moves are not.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case OfferDraft:
		return next == OfferSent
	case OfferSent:
		return next == OfferAccepted || next == OfferDeclined
	}
	return false
}

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "DRAFT"
	InvoiceSent  InvoiceStatus = "SENT"
	InvoicePaid  InvoiceStatus = "PAID"
)

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch InvoiceStatus(s) {
	case InvoiceDraft, InvoiceSent, InvoicePaid:
		return InvoiceStatus(s), nil
	}
	return "", fmt.Errorf("unknown invoice status %q", s)
}

// CanTransitionTo reports whether the move to next is a legal step of the
// invoice lifecycle DRAFT -> SENT -> PAID.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case InvoiceDraft:
		return next == InvoiceSent
	case InvoiceSent:
		return next == InvoicePaid
	}
	return false
}

type Customer struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Address    *string   `json:"address,omitempty"`
	IsProspect bool      `json:"isProspect"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CustomerWithCounts is a customer row plus the number of records it owns,
// as returned by list queries.
type CustomerWithCounts struct {
	Customer
	OfferCount       int `json:"offerCount"`
	InvoiceCount     int `json:"invoiceCount"`
	AppointmentCount int `json:"appointmentCount"`
}

type CustomerInput struct {
	FirstName  string
	LastName   string
	Email      *string
	Phone      *string
	Address    *string
	IsProspect bool
}

// CustomerPatch is a partial update: nil fields stay unchanged. An empty
// Email string clears the stored address.
type CustomerPatch struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	Address    *string
	IsProspect *bool
}

type Offer struct {
	ID             string      `json:"id"`
	CustomerID     string      `json:"customerId"`
	OfferNumber    string      `json:"offerNumber"`
	JobDescription *string     `json:"jobDescription,omitempty"`
	Measurements   *string     `json:"measurements,omitempty"`
	MaterialsCost  float64     `json:"materialsCost"`
	LaborCost      float64     `json:"laborCost"`
	TotalCost      float64     `json:"totalCost"`
	Status         OfferStatus `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type OfferWithCustomer struct {
	Offer
	Customer *Customer `json:"customer,omitempty"`
}

type OfferInput struct {
	CustomerID     string
	JobDescription *string
	Measurements   *string
	MaterialsCost  float64
	LaborCost      float64
	TotalCost      float64
}

type OfferPatch struct {
	JobDescription *string
	Measurements   *string
	MaterialsCost  *float64
	LaborCost      *float64
	TotalCost      *float64
	Status         *OfferStatus
}

type Invoice struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customerId"`
	OfferID       string        `json:"offerId"`
	InvoiceNumber string        `json:"invoiceNumber"`
	TotalAmount   float64       `json:"totalAmount"`
	Status        InvoiceStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type InvoiceWithRelations struct {
	Invoice
	Customer *Customer `json:"customer,omitempty"`
	Offer    *Offer    `json:"offer,omitempty"`
}

type InvoicePatch struct {
	Status *InvoiceStatus
}

type Appointment struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	Date       time.Time `json:"date"`
	Notes      *string   `json:"notes,omitempty"`
	Photos     *string   `json:"photos,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type AppointmentInput struct {
	CustomerID string
	Date       time.Time
	Notes      *string
	Photos     *string
}

// FormatOfferNumber builds the human-readable offer number, e.g.
// ANG-2026-0001 for the first offer of 2026.
func FormatOfferNumber(year int, seq int64) string {
	return fmt.Sprintf("ANG-%d-%04d", year, seq)
}

// FormatInvoiceNumber builds the human-readable invoice number, e.g.
// RE-2026-0001.
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("RE-%d-%04d", year, seq)
}
