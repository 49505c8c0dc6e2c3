package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"handwerk-crm/go_backend/internal/domain/crm"
)

func createCustomerTool() Definition {
	return Definition{
		Name:        "create_customer",
		Description: "Legt einen neuen Kunden oder Interessenten an. Vor- und Nachname sind Pflicht.",
		Parameters: objectSchema(map[string]any{
			"firstName":  property("string", "Vorname des Kunden"),
			"lastName":   property("string", "Nachname des Kunden"),
			"email":      property("string", "E-Mail-Adresse (optional)"),
			"phone":      property("string", "Telefonnummer (optional)"),
			"address":    property("string", "Anschrift (optional)"),
			"isProspect": property("boolean", "true für Interessenten (Standard), false für Bestandskunden"),
		}, "firstName", "lastName"),
		Handle: handleCreateCustomer,
		Render: renderCustomerCreated,
	}
}

func handleCreateCustomer(ctx context.Context, store crm.Store, args map[string]any) Envelope {
	firstName, err := requiredString(args, "firstName")
	if err != nil {
		return failure("Vorname und Nachname sind erforderlich.", "validation: "+err.Error())
	}
	lastName, err := requiredString(args, "lastName")
	if err != nil {
		return failure("Vorname und Nachname sind erforderlich.", "validation: "+err.Error())
	}

	email, err := optionalString(args, "email")
	if err != nil {
		return failure("Die E-Mail-Adresse ist ungültig.", "validation: "+err.Error())
	}
	if email != nil && strings.TrimSpace(*email) != "" && !validEmail(strings.TrimSpace(*email)) {
		return failure("Die E-Mail-Adresse ist ungültig.", "validation: email is malformed")
	}
	phone, err := optionalString(args, "phone")
	if err != nil {
		return failure("Die Telefonnummer ist ungültig.", "validation: "+err.Error())
	}
	address, err := optionalString(args, "address")
	if err != nil {
		return failure("Die Anschrift ist ungültig.", "validation: "+err.Error())
	}

	isProspect := true
	if v, ok, err := boolArg(args, "isProspect"); err != nil {
		return failure("Ungültiger Wert für isProspect.", "validation: "+err.Error())
	} else if ok {
		isProspect = v
	}

	c, err := store.CreateCustomer(ctx, crm.CustomerInput{
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      phone,
		Address:    address,
		IsProspect: isProspect,
	})
	if err != nil {
		return failure("Der Kunde konnte nicht angelegt werden.", err.Error())
	}
	return Envelope{
		Success:  true,
		Customer: c,
		Message:  fmt.Sprintf("Kunde %s %s wurde erfolgreich angelegt.", c.FirstName, c.LastName),
	}
}

func getCustomersTool() Definition {
	return Definition{
		Name:        "get_customers",
		Description: "Listet Kunden auf, zuletzt geänderte zuerst. Optional mit Suchbegriff über Vorname, Nachname und E-Mail (Groß-/Kleinschreibung egal).",
		Parameters: objectSchema(map[string]any{
			"search": property("string", "Suchbegriff, z.B. ein Nachname"),
		}),
		Handle: handleGetCustomers,
		Render: renderCustomerList,
	}
}

func handleGetCustomers(ctx context.Context, store crm.Store, args map[string]any) Envelope {
	search, _, err := stringArg(args, "search")
	if err != nil {
		return failure("Ungültiger Suchbegriff.", "validation: "+err.Error())
	}
	customers, err := store.ListCustomers(ctx, search)
	if err != nil {
		return failure("Die Kunden konnten nicht geladen werden.", err.Error())
	}
	msg := fmt.Sprintf("%d Kunden gefunden.", len(customers))
	if len(customers) == 1 {
		msg = "1 Kunde gefunden."
	}
	return Envelope{
		Success:   true,
		Customers: customers,
		Count:     countOf(len(customers)),
		Message:   msg,
	}
}

func updateCustomerTool() Definition {
	return Definition{
		Name:        "update_customer",
		Description: "Aktualisiert einzelne Felder eines Kunden. Nicht übergebene Felder bleiben unverändert; eine leere E-Mail löscht die gespeicherte Adresse.",
		Parameters: objectSchema(map[string]any{
			"id":         property("string", "ID des Kunden"),
			"firstName":  property("string", "Neuer Vorname"),
			"lastName":   property("string", "Neuer Nachname"),
			"email":      property("string", "Neue E-Mail-Adresse, leer zum Löschen"),
			"phone":      property("string", "Neue Telefonnummer"),
			"address":    property("string", "Neue Anschrift"),
			"isProspect": property("boolean", "Interessenten-Status"),
		}, "id"),
		Handle: handleUpdateCustomer,
		Render: renderCustomerUpdated,
	}
}

func handleUpdateCustomer(ctx context.Context, store crm.Store, args map[string]any) Envelope {
	id, err := requiredString(args, "id")
	if err != nil {
		return failure("Die Kunden-ID ist erforderlich.", "validation: "+err.Error())
	}

	var patch crm.CustomerPatch
	if patch.FirstName, err = optionalString(args, "firstName"); err != nil {
		return failure("Ungültiger Vorname.", "validation: "+err.Error())
	}
	if patch.FirstName != nil && strings.TrimSpace(*patch.FirstName) == "" {
		return failure("Der Vorname darf nicht leer sein.", "validation: firstName must not be empty")
	}
	if patch.LastName, err = optionalString(args, "lastName"); err != nil {
		return failure("Ungültiger Nachname.", "validation: "+err.Error())
	}
	if patch.LastName != nil && strings.TrimSpace(*patch.LastName) == "" {
		return failure("Der Nachname darf nicht leer sein.", "validation: lastName must not be empty")
	}
	if patch.Email, err = optionalString(args, "email"); err != nil {
		return failure("Die E-Mail-Adresse ist ungültig.", "validation: "+err.Error())
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) != "" && !validEmail(strings.TrimSpace(*patch.Email)) {
		return failure("Die E-Mail-Adresse ist ungültig.", "validation: email is malformed")
	}
	if patch.Phone, err = optionalString(args, "phone"); err != nil {
		return failure("Die Telefonnummer ist ungültig.", "validation: "+err.Error())
	}
	if patch.Address, err = optionalString(args, "address"); err != nil {
		return failure("Die Anschrift ist ungültig.", "validation: "+err.Error())
	}
	if v, ok, err := boolArg(args, "isProspect"); err != nil {
		return failure("Ungültiger Wert für isProspect.", "validation: "+err.Error())
	} else if ok {
		patch.IsProspect = &v
	}

	c, err := store.UpdateCustomer(ctx, id, patch)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			return failure("Der Kunde wurde nicht gefunden.", "not_found: customer "+id)
		}
		return failure("Der Kunde konnte nicht aktualisiert werden.", err.Error())
	}
	return Envelope{
		Success:  true,
		Customer: c,
		Message:  fmt.Sprintf("Kunde %s %s wurde aktualisiert.", c.FirstName, c.LastName),
	}
}
