package tool

import (
	"context"
	"errors"
	"fmt"

	"handwerk-crm/go_backend/internal/domain/crm"
)

func createOfferTool() Definition {
	return Definition{
		Name:        "create_offer",
		Description: "Erstellt ein neues Angebot für einen Kunden und vergibt automatisch eine Angebotsnummer (ANG-Jahr-Nummer). Kosten werden so übernommen, wie sie übergeben werden.",
		Parameters: objectSchema(map[string]any{
			"customerId":     property("string", "ID des Kunden"),
			"jobDescription": property("string", "Beschreibung der Arbeiten (optional)"),
			"measurements":   property("string", "Maße / Aufmaß (optional)"),
			"materialsCost":  property("number", "Materialkosten in Euro, mindestens 0"),
			"laborCost":      property("number", "Arbeitskosten in Euro, mindestens 0"),
			"totalCost":      property("number", "Gesamtbetrag in Euro, mindestens 0"),
		}, "customerId"),
		Handle: handleCreateOffer,
		Render: renderOfferCreated,
	}
}

func costArg(args map[string]any, key string) (float64, Envelope, bool) {
	v, ok, err := numberArg(args, key)
	if err != nil {
		return 0, failure(fmt.Sprintf("Ungültiger Wert für %s.", key), "validation: "+err.Error()), false
	}
	if !ok {
		return 0, Envelope{}, true
	}
	if v < 0 {
		return 0, failure("Kosten dürfen nicht negativ sein.", fmt.Sprintf("validation: %s must be >= 0", key)), false
	}
	return v, Envelope{}, true
}

func handleCreateOffer(ctx context.Context, store crm.Store, args map[string]any) Envelope {
	customerID, err := requiredString(args, "customerId")
	if err != nil {
		return failure("Die Kunden-ID ist erforderlich.", "validation: "+err.Error())
	}
	jobDescription, err := optionalString(args, "jobDescription")
	if err != nil {
		return failure("Ungültige Beschreibung.", "validation: "+err.Error())
	}
	measurements, err := optionalString(args, "measurements")
	if err != nil {
		return failure("Ungültige Maße.", "validation: "+err.Error())
	}

	materialsCost, env, ok := costArg(args, "materialsCost")
	if !ok {
		return env
	}
	laborCost, env, ok := costArg(args, "laborCost")
	if !ok {
		return env
	}
	totalCost, env, ok := costArg(args, "totalCost")
	if !ok {
		return env
	}

	o, err := store.CreateOffer(ctx, crm.OfferInput{
		CustomerID:     customerID,
		JobDescription: jobDescription,
		Measurements:   measurements,
		MaterialsCost:  materialsCost,
		LaborCost:      laborCost,
		TotalCost:      totalCost,
	})
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			return failure("Der Kunde wurde nicht gefunden.", "not_found: customer "+customerID)
		}
		return failure("Das Angebot konnte nicht erstellt werden.", err.Error())
	}
	return Envelope{
		Success: true,
		Offer:   o,
		Message: fmt.Sprintf("Angebot %s wurde erstellt.", o.OfferNumber),
	}
}

func getOffersTool() Definition {
	return Definition{
		Name:        "get_offers",
		Description: "Listet Angebote auf, neueste zuerst, inklusive Kundendaten. Optional auf einen Kunden eingeschränkt.",
		Parameters: objectSchema(map[string]any{
			"customerId": property("string", "ID des Kunden (optional)"),
		}),
		Handle: handleGetOffers,
		Render: renderOfferList,
	}
}

func handleGetOffers(ctx context.Context, store crm.Store, args map[string]any) Envelope {
	customerID, _, err := stringArg(args, "customerId")
	if err != nil {
		return failure("Ungültige Kunden-ID.", "validation: "+err.Error())
	}
	offers, err := store.ListOffers(ctx, customerID)
	if err != nil {
		return failure("Die Angebote konnten nicht geladen werden.", err.Error())
	}
	msg := fmt.Sprintf("%d Angebote gefunden.", len(offers))
	if len(offers) == 1 {
		msg = "1 Angebot gefunden."
	}
	return Envelope{
		Success: true,
		Offers:  offers,
		Count:   countOf(len(offers)),
		Message: msg,
	}
}

func updateOfferTool() Definition {
	return Definition{
		Name:        "update_offer",
		Description: "Aktualisiert ein Angebot. Statuswechsel folgen dem Ablauf DRAFT -> SENT -> ACCEPTED oder DECLINED; andere Wechsel werden abgelehnt.",
		Parameters: objectSchema(map[string]any{
			"id":             property("string", "ID des Angebots"),
			"jobDescription": property("string", "Neue Beschreibung"),
			"measurements":   property("string", "Neue Maße"),
			"materialsCost":  property("number", "Neue Materialkosten, mindestens 0"),
			"laborCost":      property("number", "Neue Arbeitskosten, mindestens 0"),
			"totalCost":      property("number", "Neuer Gesamtbetrag, mindestens 0"),
			"status":         property("string", "Neuer Status: DRAFT, SENT, ACCEPTED oder DECLINED"),
		}, "id"),
		Handle: handleUpdateOffer,
		Render: renderOfferUpdated,
	}
}

func handleUpdateOffer(ctx context.Context, store crm.Store, args map[string]any) Envelope {
	id, err := requiredString(args, "id")
	if err != nil {
		return failure("Die Angebots-ID ist erforderlich.", "validation: "+err.Error())
	}

	var patch crm.OfferPatch
	if patch.JobDescription, err = optionalString(args, "jobDescription"); err != nil {
		return failure("Ungültige Beschreibung.", "validation: "+err.Error())
	}
	if patch.Measurements, err = optionalString(args, "measurements"); err != nil {
		return failure("Ungültige Maße.", "validation: "+err.Error())
	}
	for key, target := range map[string]**float64{
		"materialsCost": &patch.MaterialsCost,
		"laborCost":     &patch.LaborCost,
		"totalCost":     &patch.TotalCost,
	} {
		v, ok, err := numberArg(args, key)
		if err != nil {
			return failure(fmt.Sprintf("Ungültiger Wert für %s.", key), "validation: "+err.Error())
		}
		if !ok {
			continue
		}
		if v < 0 {
			return failure("Kosten dürfen nicht negativ sein.", fmt.Sprintf("validation: %s must be >= 0", key))
		}
		value := v
		*target = &value
	}
	if raw, ok, err := stringArg(args, "status"); err != nil {
		return failure("Ungültiger Status.", "validation: "+err.Error())
	} else if ok {
		status, err := crm.ParseOfferStatus(raw)
		if err != nil {
			return failure(fmt.Sprintf("Ungültiger Status: %s", raw), "validation: "+err.Error())
		}
		patch.Status = &status
	}

	o, err := store.UpdateOffer(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, crm.ErrNotFound):
			return failure("Das Angebot wurde nicht gefunden.", "not_found: offer "+id)
		case errors.Is(err, crm.ErrInvalidTransition):
			return failure("Dieser Statuswechsel ist nicht zulässig.", "invalid_transition: "+err.Error())
		}
		return failure("Das Angebot konnte nicht aktualisiert werden.", err.Error())
	}
	return Envelope{
		Success: true,
		Offer:   o,
		Message: fmt.Sprintf("Angebot %s wurde aktualisiert.", o.OfferNumber),
	}
}
