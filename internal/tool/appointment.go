package tool

import (
	"context"
	"errors"
	"fmt"

	"handwerk-crm/go_backend/internal/domain/crm"
)

func createAppointmentTool() Definition {
	return Definition{
		Name:        "create_appointment",
		Description: "Legt einen Termin für einen Kunden an.",
		Parameters: objectSchema(map[string]any{
			"customerId": property("string", "ID des Kunden"),
			"date":       property("string", "Termin als RFC-3339-Zeitstempel oder JJJJ-MM-TT"),
			"notes":      property("string", "Notizen zum Termin (optional)"),
			"photos":     property("string", "Foto-Verweise (optional)"),
		}, "customerId", "date"),
		Handle: handleCreateAppointment,
		Render: renderAppointmentCreated,
	}
}

func handleCreateAppointment(ctx context.Context, store crm.Store, args map[string]any) Envelope {
	customerID, err := requiredString(args, "customerId")
	if err != nil {
		return failure("Die Kunden-ID ist erforderlich.", "validation: "+err.Error())
	}
	rawDate, err := requiredString(args, "date")
	if err != nil {
		return failure("Das Datum ist erforderlich.", "validation: "+err.Error())
	}
	date, err := dateArg(rawDate)
	if err != nil {
		return failure("Das Datum ist ungültig; erwartet wird ein RFC-3339-Zeitstempel oder JJJJ-MM-TT.", "validation: "+err.Error())
	}
	notes, err := optionalString(args, "notes")
	if err != nil {
		return failure("Ungültige Notizen.", "validation: "+err.Error())
	}
	photos, err := optionalString(args, "photos")
	if err != nil {
		return failure("Ungültige Foto-Verweise.", "validation: "+err.Error())
	}

	a, err := store.CreateAppointment(ctx, crm.AppointmentInput{
		CustomerID: customerID,
		Date:       date,
		Notes:      notes,
		Photos:     photos,
	})
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			return failure("Der Kunde wurde nicht gefunden.", "not_found: customer "+customerID)
		}
		return failure("Der Termin konnte nicht angelegt werden.", err.Error())
	}
	return Envelope{
		Success:     true,
		Appointment: a,
		Message:     fmt.Sprintf("Termin am %s wurde angelegt.", a.Date.Format("02.01.2006")),
	}
}

func getAppointmentsTool() Definition {
	return Definition{
		Name:        "get_appointments",
		Description: "Listet Termine auf, neueste zuerst. Optional auf einen Kunden eingeschränkt.",
		Parameters: objectSchema(map[string]any{
			"customerId": property("string", "ID des Kunden (optional)"),
		}),
		Handle: handleGetAppointments,
		Render: renderAppointmentList,
	}
}

func handleGetAppointments(ctx context.Context, store crm.Store, args map[string]any) Envelope {
	customerID, _, err := stringArg(args, "customerId")
	if err != nil {
		return failure("Ungültige Kunden-ID.", "validation: "+err.Error())
	}
	appointments, err := store.ListAppointments(ctx, customerID)
	if err != nil {
		return failure("Die Termine konnten nicht geladen werden.", err.Error())
	}
	msg := fmt.Sprintf("%d Termine gefunden.", len(appointments))
	if len(appointments) == 1 {
		msg = "1 Termin gefunden."
	}
	return Envelope{
		Success:      true,
		Appointments: appointments,
		Count:        countOf(len(appointments)),
		Message:      msg,
	}
}
