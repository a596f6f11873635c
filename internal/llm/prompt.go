package llm

import "strings"

// promptHeader pins the field inventory, the GST summation rules, and
// the output shape. The JSON keys named here are load-bearing: the
// reconciler and the exporters read exactly these.
const promptHeader = `You are an expert at extracting structured data from Indian tax invoices.
Extract the following information from the invoice text below and return ONLY valid JSON format.

CRITICAL INSTRUCTIONS FOR FIELD EXTRACTION:

1. INVOICE NUMBER: Look for "Invoice No", "Invoice No.", "Invoice Number", "Bill No", "Bill Number", "Inv No"
2. GSTIN NUMBER: Look for "GSTIN", "GSTIN No", "GST Number", "GSTIN/UIN". Format should be 15 characters like 27ABCDE1234F1Z5
3. SELLER NAME: Look at the top of the invoice, usually the company name that issued the invoice
4. CUSTOMER NAME: Look after "To:", "Bill To:", "Customer:", "M/s", "Mr.", or near the shipping/billing address
5. GRAND TOTAL: Look for "Grand Total", "Total Amount", "Amount Payable", "Net Amount". Extract only the numerical value.
6. TOTAL GST CALCULATION: This is VERY IMPORTANT. Calculate total GST using these methods:
   - Method A: Look for "Total GST", "Total Tax", "GST Total"
   - Method B: Sum all "CGST" + "SGST" amounts
   - Method C: Sum all "IGST" amounts
   - Method D: Calculate from line items if GST breakdown is available
   - Method E: If GST amounts are shown separately, add them all
7. PLACE: Look for city name in addresses. Usually after "Place of Supply", "Delivery At", or in seller/buyer address
8. STATE: Extract the state from the address. Common states: Maharashtra, Karnataka, Tamil Nadu, Delhi, Uttar Pradesh, etc.
9. DATE: Look for "Date", "Invoice Date", "Bill Date", "Date of Invoice". Format as DD-MM-YYYY or as shown.
10. ITEMS: Extract line items with details like item name, quantity, unit price, amount, HSN code, GST rate

GST CALCULATION EXAMPLES:
- If you see: "CGST @9%: ₹155.59" and "SGST @9%: ₹155.59" then Total GST = 155.59 + 155.59 = 311.18
- If you see: "IGST @18%: ₹381.36" then Total GST = 381.36
- If you see GST breakdown like: "CGST 2.5%: ₹39.29, SGST 2.5%: ₹39.29, CGST 6%: ₹26.79, SGST 6%: ₹26.79, CGST 9%: ₹155.59, SGST 9%: ₹155.59" then Total GST = 39.29+39.29+26.79+26.79+155.59+155.59 = 443.34

REQUIRED FIELDS:
- invoice_no: Invoice number (text exactly as shown)
- gstin_no: GSTIN number (15 characters format)
- seller_name: Name of the seller/company
- customer_name: Name of the customer/buyer
- grand_total: Total amount including taxes (number only, no symbols)
- total_gst: Total GST amount (number only, calculate carefully)
- place: Place of supply (city/town)
- date: Invoice date (extract as is)
- state: State name
- items: Array of item objects with:
    - item_name: Name of the item
    - quantity: Quantity (number)
    - unit_price: Unit price (number)
    - amount: Total amount for this item (number)
    - hsn_code: HSN code if available
    - gst_rate: GST rate applied to this item

IMPORTANT RULES:
- Return ONLY JSON, no additional text or explanations
- For missing fields, use empty string "" or 0 for numbers or empty array [] for items
- Extract dates exactly as they appear
- Be very careful with invoice numbers - they often contain letters and numbers
- For GST calculation: Be thorough and add ALL GST components (CGST+SGST or IGST)
- For items: Try to extract as many line items as possible from the invoice

INVOICE TEXT:
`

const promptFooter = `

Return JSON in this exact format:
{
    "invoice_no": "string",
    "gstin_no": "string",
    "seller_name": "string",
    "customer_name": "string",
    "grand_total": number,
    "total_gst": number,
    "place": "string",
    "date": "string",
    "state": "string",
    "items": [
        {
            "item_name": "string",
            "quantity": number,
            "unit_price": number,
            "amount": number,
            "hsn_code": "string",
            "gst_rate": "string"
        }
    ]
}`

// BuildExtractionPrompt composes the single-turn extraction prompt
// around the OCR transcript.
func BuildExtractionPrompt(invoiceText string) string {
	var b strings.Builder
	b.Grow(len(promptHeader) + len(invoiceText) + len(promptFooter))
	b.WriteString(promptHeader)
	b.WriteString(strings.TrimSpace(invoiceText))
	b.WriteString(promptFooter)
	return b.String()
}
