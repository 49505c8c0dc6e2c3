package gofpdf

import (
	"bytes"
	"testing"
	"time"

	"handwerk-crm/go_backend/internal/domain/crm"
	"handwerk-crm/go_backend/internal/domain/document"
)

func testGenerator() *Generator {
	return New(document.Company{
		Name:    "Mustermann Haustechnik GmbH",
		Address: "Handwerkerstraße 12, 80331 München",
	})
}

func str(s string) *string { return &s }

func TestOfferPDF(t *testing.T) {
	t.Parallel()

	o := &crm.OfferWithCustomer{
		Offer: crm.Offer{
			OfferNumber:    "ANG-2026-0001",
			JobDescription: str("Badsanierung inkl. Fliesenarbeiten"),
			MaterialsCost:  1200,
			LaborCost:      800,
			TotalCost:      2000,
			Status:         crm.OfferDraft,
			CreatedAt:      time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		},
		Customer: &crm.Customer{
			FirstName: "Jörg",
			LastName:  "Müller",
			Address:   str("Gartenweg 5, 81543 München"),
		},
	}

	out, err := testGenerator().Offer(o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", out[:min(8, len(out))])
	}
}

func TestInvoicePDF(t *testing.T) {
	t.Parallel()

	inv := &crm.InvoiceWithRelations{
		Invoice: crm.Invoice{
			InvoiceNumber: "RE-2026-0001",
			TotalAmount:   2000,
			Status:        crm.InvoiceDraft,
			CreatedAt:     time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
		},
		Customer: &crm.Customer{FirstName: "Jörg", LastName: "Müller"},
		Offer: &crm.Offer{
			OfferNumber:    "ANG-2026-0001",
			JobDescription: str("Badsanierung inkl. Fliesenarbeiten"),
			MaterialsCost:  1200,
			LaborCost:      800,
			TotalCost:      2000,
		},
	}

	out, err := testGenerator().Invoice(inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestInvoicePDFWithoutOffer(t *testing.T) {
	t.Parallel()

	inv := &crm.InvoiceWithRelations{
		Invoice: crm.Invoice{InvoiceNumber: "RE-2026-0002", TotalAmount: 99.5},
	}
	out, err := testGenerator().Invoice(inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty output")
	}
}
