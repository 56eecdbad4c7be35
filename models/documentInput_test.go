package models_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"

	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
)

func bindJSON(t *testing.T, body string, out any) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return binding.JSON.Bind(req, out)
}

// A document with zero lines must be rejected at binding time, before it
// can consume a document number or open a posting transaction.
func TestDocumentInputRejectsEmptyDetails(t *testing.T) {
	const body = `{
		"account_id": 7,
		"purchase_date": "2026-08-01T00:00:00Z",
		"return_date": "2026-08-01T00:00:00Z",
		"invoice_date": "2026-08-01T00:00:00Z",
		"payment_mode": "credit",
		"vat_exemption_mode": "all",
		"details": []
	}`

	targets := map[string]any{
		"purchase":        &models.NewPurchase{},
		"purchase return": &models.NewPurchaseReturn{},
		"sales invoice":   &models.NewSalesInvoice{},
		"sales return":    &models.NewSalesReturn{},
	}
	for name, target := range targets {
		err := bindJSON(t, body, target)
		if err == nil {
			t.Fatalf("%s: empty details bound without error", name)
		}
		fields := utils.ProcessValidationErrors(err)
		if fields["details"] != "min" {
			t.Fatalf("%s: fields = %v, want details rejected by min", name, fields)
		}
	}
}

func TestDocumentInputBindsSingleLine(t *testing.T) {
	const body = `{
		"account_id": 7,
		"purchase_date": "2026-08-01T00:00:00Z",
		"payment_mode": "credit",
		"vat_exemption_mode": "all",
		"details": [
			{"item_id": 3, "batch_number": "B-1", "qty": 2, "unit_price": 10}
		]
	}`

	var input models.NewPurchase
	if err := bindJSON(t, body, &input); err != nil {
		t.Fatalf("bind single-line purchase: %v", err)
	}
	if len(input.Details) != 1 {
		t.Fatalf("details = %d lines, want 1", len(input.Details))
	}
}
