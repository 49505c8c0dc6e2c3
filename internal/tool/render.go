package tool

import (
	"fmt"
	"strings"

	"handwerk-crm/go_backend/internal/domain/crm"
)

// The renderers below produce the deterministic Markdown summaries the chat
// layer uses when the model invokes a tool without writing its own reply.
// They are registered next to each tool so summary and envelope shape move
// together.

func renderCustomerCreated(env Envelope) string {
	c := env.Customer
	if c == nil {
		return env.Message
	}
	var b strings.Builder
	b.WriteString("**Kunde angelegt**\n")
	writeCustomerLines(&b, c)
	return b.String()
}

func renderCustomerUpdated(env Envelope) string {
	c := env.Customer
	if c == nil {
		return env.Message
	}
	var b strings.Builder
	b.WriteString("**Kunde aktualisiert**\n")
	writeCustomerLines(&b, c)
	return b.String()
}

func writeCustomerLines(b *strings.Builder, c *crm.Customer) {
	fmt.Fprintf(b, "- Name: %s %s\n", c.FirstName, c.LastName)
	if c.Email != nil {
		fmt.Fprintf(b, "- E-Mail: %s\n", *c.Email)
	}
	if c.Phone != nil {
		fmt.Fprintf(b, "- Telefon: %s\n", *c.Phone)
	}
	if c.Address != nil {
		fmt.Fprintf(b, "- Adresse: %s\n", *c.Address)
	}
	fmt.Fprintf(b, "- Status: %s\n", prospectLabel(c.IsProspect))
}

func prospectLabel(isProspect bool) string {
	if isProspect {
		return "Interessent"
	}
	return "Kunde"
}

func renderCustomerList(env Envelope) string {
	if len(env.Customers) == 0 {
		return "Keine Kunden gefunden."
	}
	var b strings.Builder
	b.WriteString(env.Message)
	b.WriteString("\n\n| Name | E-Mail | Telefon | Status | Angebote | Rechnungen |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, c := range env.Customers {
		fmt.Fprintf(&b, "| %s %s | %s | %s | %s | %d | %d |\n",
			c.FirstName, c.LastName,
			orDash(c.Email), orDash(c.Phone),
			prospectLabel(c.IsProspect),
			c.OfferCount, c.InvoiceCount)
	}
	return strings.TrimSpace(b.String())
}

func renderOfferCreated(env Envelope) string {
	o := env.Offer
	if o == nil {
		return env.Message
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Angebot %s erstellt**\n", o.OfferNumber)
	if o.JobDescription != nil {
		fmt.Fprintf(&b, "- Arbeiten: %s\n", *o.JobDescription)
	}
	fmt.Fprintf(&b, "- Materialkosten: %.2f €\n", o.MaterialsCost)
	fmt.Fprintf(&b, "- Arbeitskosten: %.2f €\n", o.LaborCost)
	fmt.Fprintf(&b, "- Gesamtbetrag: %.2f €\n", o.TotalCost)
	fmt.Fprintf(&b, "- Status: %s\n", o.Status)
	return b.String()
}

func renderOfferUpdated(env Envelope) string {
	o := env.Offer
	if o == nil {
		return env.Message
	}
	return fmt.Sprintf("**Angebot %s aktualisiert**\n- Status: %s\n- Gesamtbetrag: %.2f €\n",
		o.OfferNumber, o.Status, o.TotalCost)
}

func renderOfferList(env Envelope) string {
	if len(env.Offers) == 0 {
		return "Keine Angebote gefunden."
	}
	var b strings.Builder
	b.WriteString(env.Message)
	b.WriteString("\n\n| Nummer | Kunde | Gesamtbetrag | Status |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, o := range env.Offers {
		name := "—"
		if o.Customer != nil {
			name = o.Customer.FirstName + " " + o.Customer.LastName
		}
		fmt.Fprintf(&b, "| %s | %s | %.2f € | %s |\n", o.OfferNumber, name, o.TotalCost, o.Status)
	}
	return strings.TrimSpace(b.String())
}

func renderInvoiceCreated(env Envelope) string {
	inv := env.Invoice
	if inv == nil {
		return env.Message
	}
	return fmt.Sprintf("**Rechnung %s erstellt**\n- Betrag: %.2f €\n- Status: %s\n",
		inv.InvoiceNumber, inv.TotalAmount, inv.Status)
}

func renderInvoiceUpdated(env Envelope) string {
	inv := env.Invoice
	if inv == nil {
		return env.Message
	}
	return fmt.Sprintf("**Rechnung %s aktualisiert**\n- Status: %s\n", inv.InvoiceNumber, inv.Status)
}

func renderInvoiceList(env Envelope) string {
	if len(env.Invoices) == 0 {
		return "Keine Rechnungen gefunden."
	}
	var b strings.Builder
	b.WriteString(env.Message)
	b.WriteString("\n\n| Nummer | Kunde | Betrag | Status |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, inv := range env.Invoices {
		name := "—"
		if inv.Customer != nil {
			name = inv.Customer.FirstName + " " + inv.Customer.LastName
		}
		fmt.Fprintf(&b, "| %s | %s | %.2f € | %s |\n", inv.InvoiceNumber, name, inv.TotalAmount, inv.Status)
	}
	return strings.TrimSpace(b.String())
}

func renderAppointmentCreated(env Envelope) string {
	a := env.Appointment
	if a == nil {
		return env.Message
	}
	var b strings.Builder
	b.WriteString("**Termin angelegt**\n")
	fmt.Fprintf(&b, "- Datum: %s\n", a.Date.Format("02.01.2006 15:04"))
	if a.Notes != nil {
		fmt.Fprintf(&b, "- Notizen: %s\n", *a.Notes)
	}
	return b.String()
}

func renderAppointmentList(env Envelope) string {
	if len(env.Appointments) == 0 {
		return "Keine Termine gefunden."
	}
	var b strings.Builder
	b.WriteString(env.Message)
	b.WriteString("\n\n| Datum | Notizen |\n")
	b.WriteString("|---|---|\n")
	for _, a := range env.Appointments {
		fmt.Fprintf(&b, "| %s | %s |\n", a.Date.Format("02.01.2006 15:04"), orDash(a.Notes))
	}
	return strings.TrimSpace(b.String())
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "—"
	}
	return *v
}
