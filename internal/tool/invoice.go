package tool

import (
	"context"
	"errors"
	"fmt"

	"handwerk-crm/go_backend/internal/domain/crm"
)

func createInvoiceTool() Definition {
	return Definition{
		Name:        "create_invoice",
		Description: "Erstellt die Rechnung zu einem angenommenen Angebot. Der Rechnungsbetrag wird aus dem Angebot übernommen; pro Angebot gibt es höchstens eine Rechnung.",
		Parameters: objectSchema(map[string]any{
			"offerId": property("string", "ID des angenommenen Angebots"),
		}, "offerId"),
		Handle: handleCreateInvoice,
		Render: renderInvoiceCreated,
	}
}

func handleCreateInvoice(ctx context.Context, store crm.Store, args map[string]any) Envelope {
	offerID, err := requiredString(args, "offerId")
	if err != nil {
		return failure("Die Angebots-ID ist erforderlich.", "validation: "+err.Error())
	}

	inv, err := store.CreateInvoice(ctx, offerID)
	if err != nil {
		switch {
		case errors.Is(err, crm.ErrNotFound):
			return failure("Das Angebot wurde nicht gefunden.", "not_found: offer "+offerID)
		case errors.Is(err, crm.ErrOfferNotAccepted):
			return failure("Das Angebot wurde noch nicht angenommen; eine Rechnung ist nur für angenommene Angebote möglich.", "offer_not_accepted: "+offerID)
		case errors.Is(err, crm.ErrInvoiceExists):
			return failure("Für dieses Angebot existiert bereits eine Rechnung.", "invoice_exists: "+offerID)
		}
		return failure("Die Rechnung konnte nicht erstellt werden.", err.Error())
	}
	return Envelope{
		Success: true,
		Invoice: inv,
		Message: fmt.Sprintf("Rechnung %s über %.2f € wurde erstellt.", inv.InvoiceNumber, inv.TotalAmount),
	}
}

func getInvoicesTool() Definition {
	return Definition{
		Name:        "get_invoices",
		Description: "Listet Rechnungen auf, neueste zuerst, inklusive Kunde und Angebot. Optional auf einen Kunden eingeschränkt.",
		Parameters: objectSchema(map[string]any{
			"customerId": property("string", "ID des Kunden (optional)"),
		}),
		Handle: handleGetInvoices,
		Render: renderInvoiceList,
	}
}

func handleGetInvoices(ctx context.Context, store crm.Store, args map[string]any) Envelope {
	customerID, _, err := stringArg(args, "customerId")
	if err != nil {
		return failure("Ungültige Kunden-ID.", "validation: "+err.Error())
	}
	invoices, err := store.ListInvoices(ctx, customerID)
	if err != nil {
		return failure("Die Rechnungen konnten nicht geladen werden.", err.Error())
	}
	msg := fmt.Sprintf("%d Rechnungen gefunden.", len(invoices))
	if len(invoices) == 1 {
		msg = "1 Rechnung gefunden."
	}
	return Envelope{
		Success:  true,
		Invoices: invoices,
		Count:    countOf(len(invoices)),
		Message:  msg,
	}
}

func updateInvoiceTool() Definition {
	return Definition{
		Name:        "update_invoice",
		Description: "Setzt den Status einer Rechnung. Statuswechsel folgen dem Ablauf DRAFT -> SENT -> PAID; andere Wechsel werden abgelehnt.",
		Parameters: objectSchema(map[string]any{
			"id":     property("string", "ID der Rechnung"),
			"status": property("string", "Neuer Status: DRAFT, SENT oder PAID"),
		}, "id"),
		Handle: handleUpdateInvoice,
		Render: renderInvoiceUpdated,
	}
}

func handleUpdateInvoice(ctx context.Context, store crm.Store, args map[string]any) Envelope {
	id, err := requiredString(args, "id")
	if err != nil {
		return failure("Die Rechnungs-ID ist erforderlich.", "validation: "+err.Error())
	}

	var patch crm.InvoicePatch
	if raw, ok, err := stringArg(args, "status"); err != nil {
		return failure("Ungültiger Status.", "validation: "+err.Error())
	} else if ok {
		status, err := crm.ParseInvoiceStatus(raw)
		if err != nil {
			return failure(fmt.Sprintf("Ungültiger Status: %s", raw), "validation: "+err.Error())
		}
		patch.Status = &status
	}

	inv, err := store.UpdateInvoice(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, crm.ErrNotFound):
			return failure("Die Rechnung wurde nicht gefunden.", "not_found: invoice "+id)
		case errors.Is(err, crm.ErrInvalidTransition):
			return failure("Dieser Statuswechsel ist nicht zulässig.", "invalid_transition: "+err.Error())
		}
		return failure("Die Rechnung konnte nicht aktualisiert werden.", err.Error())
	}
	return Envelope{
		Success: true,
		Invoice: inv,
		Message: fmt.Sprintf("Rechnung %s wurde aktualisiert.", inv.InvoiceNumber),
	}
}
