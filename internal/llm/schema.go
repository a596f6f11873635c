package llm

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the canonical extraction shape. Validation is
// advisory: reconciliation coerces type drift anyway, so a mismatch is
// logged rather than fatal.
func BuildInvoiceJSONSchema() map[string]any {
	itemProps := map[string]any{
		"item_name":  map[string]any{"type": "string"},
		"quantity":   map[string]any{"type": "number"},
		"unit_price": map[string]any{"type": "number"},
		"amount":     map[string]any{"type": "number"},
		"hsn_code":   map[string]any{"type": "string"},
		"gst_rate":   map[string]any{"type": "string"},
	}

	props := map[string]any{
		"invoice_no":    map[string]any{"type": "string"},
		"gstin_no":      map[string]any{"type": "string"},
		"seller_name":   map[string]any{"type": "string"},
		"customer_name": map[string]any{"type": "string"},
		"grand_total":   map[string]any{"type": "number"},
		"total_gst":     map[string]any{"type": "number"},
		"place":         map[string]any{"type": "string"},
		"date":          map[string]any{"type": "string"},
		"state":         map[string]any{"type": "string"},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": true,
				"properties":           itemProps,
			},
		},
	}

	required := []string{
		"invoice_no", "gstin_no", "seller_name", "customer_name",
		"grand_total", "total_gst", "place", "date", "state", "items",
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties":           props,
		"required":             required,
	}
}
