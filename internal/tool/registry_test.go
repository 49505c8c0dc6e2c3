package tool

import (
	"context"
	"strings"
	"testing"

	"handwerk-crm/go_backend/internal/domain/crm"
	"handwerk-crm/go_backend/internal/infra/db/memstore"
)

func newTestRegistry() *Registry {
	return NewRegistry(memstore.New())
}

func mustCreateCustomer(t *testing.T, r *Registry, args map[string]any) *crm.Customer {
	t.Helper()
	env := r.Dispatch(context.Background(), "create_customer", args)
	if !env.Success {
		t.Fatalf("create_customer failed: %s (%s)", env.Message, env.Error)
	}
	return env.Customer
}

func TestDispatchUnknownTool(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	env := r.Dispatch(context.Background(), "drop_database", map[string]any{})
	if env.Success {
		t.Fatal("unknown tool must fail")
	}
	if !strings.HasPrefix(env.Error, "unknown_tool:") {
		t.Fatalf("expected unknown_tool error, got %q", env.Error)
	}
	if env.Message == "" {
		t.Fatal("expected a user-facing message")
	}
}

func TestCreateCustomerDefaultsToProspect(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	c := mustCreateCustomer(t, r, map[string]any{
		"firstName": "Max",
		"lastName":  "Mustermann",
	})
	if !c.IsProspect {
		t.Error("isProspect must default to true")
	}

	c2 := mustCreateCustomer(t, r, map[string]any{
		"firstName":  "Erika",
		"lastName":   "Musterfrau",
		"isProspect": false,
	})
	if c2.IsProspect {
		t.Error("supplied isProspect=false must be kept")
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	cases := []map[string]any{
		{"lastName": "Mustermann"},
		{"firstName": "Max"},
		{"firstName": "  ", "lastName": "Mustermann"},
		{"firstName": "Max", "lastName": "Mustermann", "email": "not-an-email"},
		{"firstName": 12, "lastName": "Mustermann"},
	}
	for i, args := range cases {
		env := r.Dispatch(context.Background(), "create_customer", args)
		if env.Success {
			t.Errorf("case %d: expected validation failure", i)
		}
		if !strings.HasPrefix(env.Error, "validation:") {
			t.Errorf("case %d: expected validation error, got %q", i, env.Error)
		}
	}

	// Validation failures must not write anything.
	env := r.Dispatch(context.Background(), "get_customers", nil)
	if env.Count == nil || *env.Count != 0 {
		t.Fatalf("store must stay empty after validation failures")
	}
}

func TestGetCustomersSearch(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	mustCreateCustomer(t, r, map[string]any{"firstName": "Anna", "lastName": "Schmidt"})
	mustCreateCustomer(t, r, map[string]any{"firstName": "Jonas", "lastName": "Weber", "email": "j.schmidt@example.de"})
	mustCreateCustomer(t, r, map[string]any{"firstName": "Lena", "lastName": "Fischer"})

	env := r.Dispatch(context.Background(), "get_customers", map[string]any{"search": "Schmidt"})
	if !env.Success {
		t.Fatalf("get_customers failed: %s", env.Error)
	}
	if len(env.Customers) != 2 {
		t.Fatalf("expected 2 matches for Schmidt (name + email), got %d", len(env.Customers))
	}

	env = r.Dispatch(context.Background(), "get_customers", map[string]any{"search": "schmidt"})
	if len(env.Customers) != 2 {
		t.Fatalf("search must be case-insensitive, got %d matches", len(env.Customers))
	}

	env = r.Dispatch(context.Background(), "get_customers", nil)
	if len(env.Customers) != 3 {
		t.Fatalf("expected all 3 customers, got %d", len(env.Customers))
	}
	// Most recently updated first: last insert leads.
	if env.Customers[0].FirstName != "Lena" {
		t.Errorf("expected newest-updated customer first, got %s", env.Customers[0].FirstName)
	}
}

func TestUpdateCustomerPartial(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	c := mustCreateCustomer(t, r, map[string]any{
		"firstName": "Max",
		"lastName":  "Mustermann",
		"email":     "max@example.de",
		"phone":     "+49 170 1234567",
	})

	env := r.Dispatch(context.Background(), "update_customer", map[string]any{
		"id":    c.ID,
		"phone": "+49 170 7654321",
	})
	if !env.Success {
		t.Fatalf("update failed: %s (%s)", env.Message, env.Error)
	}
	got := env.Customer
	if got.Phone == nil || *got.Phone != "+49 170 7654321" {
		t.Error("phone must be updated")
	}
	if got.Email == nil || *got.Email != "max@example.de" {
		t.Error("omitted email must stay unchanged")
	}
	if got.FirstName != "Max" || got.LastName != "Mustermann" {
		t.Error("omitted name fields must stay unchanged")
	}

	// Empty email clears the stored address.
	env = r.Dispatch(context.Background(), "update_customer", map[string]any{
		"id":    c.ID,
		"email": "",
	})
	if !env.Success {
		t.Fatalf("update failed: %s", env.Error)
	}
	if env.Customer.Email != nil {
		t.Error("empty email must be coerced to null")
	}
}

func TestUpdateCustomerNotFound(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	env := r.Dispatch(context.Background(), "update_customer", map[string]any{
		"id":    "00000000-0000-0000-0000-000000000000",
		"phone": "1234",
	})
	if env.Success {
		t.Fatal("expected not-found failure")
	}
	if !strings.HasPrefix(env.Error, "not_found:") {
		t.Fatalf("expected not_found error, got %q", env.Error)
	}
}

func TestCreateOfferKeepsSuppliedTotal(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	c := mustCreateCustomer(t, r, map[string]any{"firstName": "Max", "lastName": "Mustermann"})

	env := r.Dispatch(context.Background(), "create_offer", map[string]any{
		"customerId":    c.ID,
		"materialsCost": 100.0,
		"laborCost":     50.0,
		"totalCost":     999.0,
	})
	if !env.Success {
		t.Fatalf("create_offer failed: %s (%s)", env.Message, env.Error)
	}
	if env.Offer.TotalCost != 999.0 {
		t.Errorf("totalCost must be taken verbatim, got %v", env.Offer.TotalCost)
	}
	if env.Offer.Status != crm.OfferDraft {
		t.Errorf("new offers start as DRAFT, got %s", env.Offer.Status)
	}
}

func TestCreateOfferValidation(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	c := mustCreateCustomer(t, r, map[string]any{"firstName": "Max", "lastName": "Mustermann"})

	env := r.Dispatch(context.Background(), "create_offer", map[string]any{
		"customerId":    c.ID,
		"materialsCost": -1.0,
	})
	if env.Success || !strings.Contains(env.Error, "materialsCost") {
		t.Fatalf("negative cost must be rejected, got %+v", env)
	}

	env = r.Dispatch(context.Background(), "create_offer", map[string]any{})
	if env.Success || !strings.HasPrefix(env.Error, "validation:") {
		t.Fatalf("missing customerId must be rejected, got %+v", env)
	}

	env = r.Dispatch(context.Background(), "create_offer", map[string]any{
		"customerId": "00000000-0000-0000-0000-000000000000",
	})
	if env.Success || !strings.HasPrefix(env.Error, "not_found:") {
		t.Fatalf("unknown customer must be rejected, got %+v", env)
	}
}

func TestOfferStatusTransitionEnforcement(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	c := mustCreateCustomer(t, r, map[string]any{"firstName": "Max", "lastName": "Mustermann"})
	env := r.Dispatch(context.Background(), "create_offer", map[string]any{"customerId": c.ID})
	offerID := env.Offer.ID

	// DRAFT -> ACCEPTED skips SENT.
	env = r.Dispatch(context.Background(), "update_offer", map[string]any{
		"id": offerID, "status": "ACCEPTED",
	})
	if env.Success || !strings.HasPrefix(env.Error, "invalid_transition:") {
		t.Fatalf("DRAFT -> ACCEPTED must be rejected, got %+v", env)
	}

	for _, status := range []string{"SENT", "ACCEPTED"} {
		env = r.Dispatch(context.Background(), "update_offer", map[string]any{
			"id": offerID, "status": status,
		})
		if !env.Success {
			t.Fatalf("transition to %s failed: %s (%s)", status, env.Message, env.Error)
		}
	}

	env = r.Dispatch(context.Background(), "update_offer", map[string]any{
		"id": offerID, "status": "DRAFT",
	})
	if env.Success {
		t.Fatal("backward transition must be rejected")
	}

	env = r.Dispatch(context.Background(), "update_offer", map[string]any{
		"id": offerID, "status": "CANCELLED",
	})
	if env.Success || !strings.HasPrefix(env.Error, "validation:") {
		t.Fatalf("unknown status must be a validation failure, got %+v", env)
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()
	c := mustCreateCustomer(t, r, map[string]any{"firstName": "Max", "lastName": "Mustermann"})
	env := r.Dispatch(ctx, "create_offer", map[string]any{
		"customerId": c.ID, "totalCost": 150.0,
	})
	offerID := env.Offer.ID

	// Offer is still DRAFT.
	env = r.Dispatch(ctx, "create_invoice", map[string]any{"offerId": offerID})
	if env.Success || !strings.HasPrefix(env.Error, "offer_not_accepted:") {
		t.Fatalf("invoice for unaccepted offer must fail, got %+v", env)
	}
	if list := r.Dispatch(ctx, "get_invoices", nil); *list.Count != 0 {
		t.Fatal("failed invoice creation must not write")
	}

	r.Dispatch(ctx, "update_offer", map[string]any{"id": offerID, "status": "SENT"})
	r.Dispatch(ctx, "update_offer", map[string]any{"id": offerID, "status": "ACCEPTED"})

	env = r.Dispatch(ctx, "create_invoice", map[string]any{"offerId": offerID})
	if !env.Success {
		t.Fatalf("create_invoice failed: %s (%s)", env.Message, env.Error)
	}
	if env.Invoice.TotalAmount != 150.0 {
		t.Errorf("totalAmount must be copied from the offer, got %v", env.Invoice.TotalAmount)
	}
	if env.Invoice.Status != crm.InvoiceDraft {
		t.Errorf("new invoices start as DRAFT, got %s", env.Invoice.Status)
	}

	// Second invoice for the same offer.
	env = r.Dispatch(ctx, "create_invoice", map[string]any{"offerId": offerID})
	if env.Success || !strings.HasPrefix(env.Error, "invoice_exists:") {
		t.Fatalf("second invoice must fail, got %+v", env)
	}
	if list := r.Dispatch(ctx, "get_invoices", nil); *list.Count != 1 {
		t.Fatal("failed second creation must not write")
	}
}

func TestAppointmentTools(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()
	c := mustCreateCustomer(t, r, map[string]any{"firstName": "Max", "lastName": "Mustermann"})

	env := r.Dispatch(ctx, "create_appointment", map[string]any{
		"customerId": c.ID,
		"date":       "2026-09-15",
		"notes":      "Erstbesichtigung Fassade",
	})
	if !env.Success {
		t.Fatalf("create_appointment failed: %s (%s)", env.Message, env.Error)
	}

	env = r.Dispatch(ctx, "create_appointment", map[string]any{
		"customerId": c.ID,
		"date":       "nächsten Dienstag",
	})
	if env.Success || !strings.HasPrefix(env.Error, "validation:") {
		t.Fatalf("free-text date must be rejected, got %+v", env)
	}

	env = r.Dispatch(ctx, "get_appointments", map[string]any{"customerId": c.ID})
	if !env.Success || len(env.Appointments) != 1 {
		t.Fatalf("expected 1 appointment, got %+v", env)
	}
}

func TestOfferNumberSequence(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()
	c := mustCreateCustomer(t, r, map[string]any{"firstName": "Max", "lastName": "Mustermann"})

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		env := r.Dispatch(ctx, "create_offer", map[string]any{"customerId": c.ID})
		if !env.Success {
			t.Fatalf("create_offer failed: %s", env.Error)
		}
		num := env.Offer.OfferNumber
		if seen[num] {
			t.Fatalf("duplicate offer number %s", num)
		}
		seen[num] = true
	}
	// Fresh store: first number is ANG-<year>-0001.
	first := false
	for num := range seen {
		if strings.HasSuffix(num, "-0001") && strings.HasPrefix(num, "ANG-") {
			first = true
		}
	}
	if !first {
		t.Fatalf("expected an ANG-<year>-0001 number, got %v", seen)
	}
}

func TestRenderFallback(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	ctx := context.Background()
	mustCreateCustomer(t, r, map[string]any{"firstName": "Anna", "lastName": "Schmidt", "email": "anna@example.de"})

	env := r.Dispatch(ctx, "get_customers", nil)
	out := r.RenderFallback("get_customers", env)
	if !strings.Contains(out, "| Anna Schmidt |") {
		t.Errorf("expected a Markdown table row, got:\n%s", out)
	}
	if !strings.Contains(out, "Interessent") {
		t.Errorf("expected the prospect label, got:\n%s", out)
	}

	failed := r.Dispatch(ctx, "create_customer", map[string]any{})
	if got := r.RenderFallback("create_customer", failed); got != failed.Message {
		t.Errorf("failure envelopes must render their message, got %q", got)
	}

	unknown := r.Dispatch(ctx, "no_such_tool", nil)
	if got := r.RenderFallback("no_such_tool", unknown); got != unknown.Message {
		t.Errorf("unknown tools must fall back to the message, got %q", got)
	}
}

func TestDefinitionsCatalog(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	defs := r.Definitions()
	if len(defs) != 11 {
		t.Fatalf("expected 11 catalog entries, got %d", len(defs))
	}
	if defs[0].Name != "create_customer" {
		t.Errorf("unexpected first tool: %s", defs[0].Name)
	}
	for _, def := range defs {
		if def.Description == "" {
			t.Errorf("tool %s has no description", def.Name)
		}
		if def.Parameters["type"] != "object" {
			t.Errorf("tool %s parameters must be an object schema", def.Name)
		}
		if def.Handle == nil {
			t.Errorf("tool %s has no handler", def.Name)
		}
	}
}
