package llm

import (
	"errors"
	"testing"

	"github.com/taxlens/invoice-analyzer/internal/common"
)

func TestDecodeReplyPlainObject(t *testing.T) {
	m, err := DecodeReply(`{"invoice_no":"INV-001","grand_total":450.5}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["invoice_no"] != "INV-001" {
		t.Fatalf("expected invoice_no INV-001, got %v", m["invoice_no"])
	}
	if m["grand_total"] != 450.5 {
		t.Fatalf("expected grand_total 450.5, got %v", m["grand_total"])
	}
}

func TestDecodeReplyProseWrapped(t *testing.T) {
	reply := `Here is the extracted data:
{"invoice_no": "BN-42", "items": []}
Let me know if you need anything else.`
	m, err := DecodeReply(reply)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["invoice_no"] != "BN-42" {
		t.Fatalf("expected invoice_no BN-42, got %v", m["invoice_no"])
	}
}

func TestDecodeReplyMarkdownFences(t *testing.T) {
	// the fence slice includes the braces, so the first pass already
	// lands inside the fenced block
	reply := "```json\n{\"gstin_no\": \"27ABCDE1234F1Z5\"}\n```"
	m, err := DecodeReply(reply)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["gstin_no"] != "27ABCDE1234F1Z5" {
		t.Fatalf("expected gstin, got %v", m["gstin_no"])
	}
}

func TestDecodeReplyNestedObjectUsesOutermostBraces(t *testing.T) {
	reply := `noise {"invoice_no":"A","items":[{"item_name":"Pen"}]} trailing`
	m, err := DecodeReply(reply)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	items, ok := m["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one item, got %v", m["items"])
	}
}

func TestDecodeReplyFailure(t *testing.T) {
	for _, reply := range []string{"", "no json here", "[1,2,3]", "{broken"} {
		_, err := DecodeReply(reply)
		if err == nil {
			t.Fatalf("expected error for %q", reply)
		}
		if !errors.Is(err, common.ErrParseFailure) {
			t.Fatalf("expected parse failure sentinel, got %v", err)
		}
	}
}

func TestValidateInvoiceSchema(t *testing.T) {
	schema := BuildInvoiceJSONSchema()

	valid := []byte(`{
		"invoice_no":"INV-1","gstin_no":"","seller_name":"A","customer_name":"B",
		"grand_total":100,"total_gst":18,"place":"Pune","date":"04-03-2020",
		"state":"Maharashtra","items":[]
	}`)
	if err := ValidateJSONAgainstSchema(schema, valid); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}

	drifted := []byte(`{"invoice_no":"INV-1","grand_total":"100"}`)
	if err := ValidateJSONAgainstSchema(schema, drifted); err == nil {
		t.Fatal("expected schema mismatch for drifted document")
	}
}
