// Package gofpdf renders CRM documents with the jung-kurt/gofpdf engine.
package gofpdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"handwerk-crm/go_backend/internal/domain/crm"
	"handwerk-crm/go_backend/internal/domain/document"
)

type Generator struct {
	company document.Company
}

func New(company document.Company) *Generator {
	return &Generator{company: company}
}

// layout is the declarative shape of a document page. Offer and invoice
// differ only in the values filled in here; render draws them identically.
type layout struct {
	title       string
	number      string
	date        time.Time
	customer    []string
	description string
	costRows    []costRow
	total       float64
	footer      string
}

type costRow struct {
	label  string
	amount float64
}

func (g *Generator) Offer(o *crm.OfferWithCustomer) ([]byte, error) {
	l := layout{
		title:    "Angebot",
		number:   o.OfferNumber,
		date:     o.CreatedAt,
		customer: customerLines(o.Customer),
		costRows: []costRow{
			{label: "Materialkosten", amount: o.MaterialsCost},
			{label: "Arbeitskosten", amount: o.LaborCost},
		},
		total:  o.TotalCost,
		footer: "Dieses Angebot ist 30 Tage gültig. Alle Preise verstehen sich inklusive Mehrwertsteuer.",
	}
	if o.JobDescription != nil {
		l.description = *o.JobDescription
	}
	return g.render(l)
}

func (g *Generator) Invoice(inv *crm.InvoiceWithRelations) ([]byte, error) {
	l := layout{
		title:    "Rechnung",
		number:   inv.InvoiceNumber,
		date:     inv.CreatedAt,
		customer: customerLines(inv.Customer),
		total:    inv.TotalAmount,
		footer:   "Bitte überweisen Sie den Betrag innerhalb von 14 Tagen. Vielen Dank für Ihren Auftrag!",
	}
	if inv.Offer != nil {
		if inv.Offer.JobDescription != nil {
			l.description = *inv.Offer.JobDescription
		}
		l.costRows = []costRow{
			{label: "Materialkosten", amount: inv.Offer.MaterialsCost},
			{label: "Arbeitskosten", amount: inv.Offer.LaborCost},
		}
	}
	return g.render(l)
}

func (g *Generator) render(l layout) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s %s", l.title, l.number), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, tr(g.company.Name))
	pdf.Ln(6)
	if g.company.Address != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 5, tr(g.company.Address))
		pdf.Ln(5)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(l.title))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Nr. %s vom %s", l.number, l.date.Format("02.01.2006"))))
	pdf.Ln(10)

	if len(l.customer) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 6, tr("Kunde"))
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 11)
		for _, line := range l.customer {
			pdf.Cell(0, 6, tr(line))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	if l.description != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 6, tr("Leistungsbeschreibung"))
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(l.description), "", "L", false)
		pdf.Ln(4)
	}

	if len(l.costRows) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(120, 7, tr("Position"))
		pdf.Cell(40, 7, tr("Betrag"))
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, row := range l.costRows {
			pdf.Cell(120, 6, tr(row.label))
			pdf.Cell(40, 6, tr(formatAmount(row.amount)))
			pdf.Ln(6)
		}
		pdf.Ln(2)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(120, 8, tr("Gesamtbetrag"))
	pdf.Cell(40, 8, tr(formatAmount(l.total)))
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, tr(l.footer), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s %s: %w", l.title, l.number, err)
	}
	return buf.Bytes(), nil
}

func customerLines(c *crm.Customer) []string {
	if c == nil {
		return nil
	}
	lines := []string{c.FirstName + " " + c.LastName}
	if c.Address != nil {
		lines = append(lines, *c.Address)
	}
	if c.Email != nil {
		lines = append(lines, *c.Email)
	}
	if c.Phone != nil {
		lines = append(lines, *c.Phone)
	}
	return lines
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f €", v)
}
