package document

import "strings"

// TemplateType selects the document template
type TemplateType string

const (
	TemplateOffer   TemplateType = "offer"
	TemplateInvoice TemplateType = "invoice"
	TemplateQuote   TemplateType = "quote"
)

// Template controls document naming and which closing blocks are attached
type Template struct {
	Type           TemplateType `json:"type"`
	Name           string       `json:"name"`
	Label          string       `json:"label"`
	Color          string       `json:"color"`
	IncludeFooter  bool         `json:"includeFooter"`
	IncludeSummary bool         `json:"includeSummary"`
}

var templates = map[TemplateType]Template{
	TemplateOffer: {
		Type:           TemplateOffer,
		Name:           "PRICE OFFER",
		Label:          "Offer",
		Color:          "#dc2626",
		IncludeFooter:  true,
		IncludeSummary: true,
	},
	TemplateInvoice: {
		Type:           TemplateInvoice,
		Name:           "VAT INVOICE",
		Label:          "Invoice",
		Color:          "#1e40af",
		IncludeFooter:  true,
		IncludeSummary: true,
	},
	TemplateQuote: {
		Type:           TemplateQuote,
		Name:           "QUOTE",
		Label:          "Quote",
		Color:          "#059669",
		IncludeFooter:  false,
		IncludeSummary: false,
	},
}

// LookupTemplate returns the template for t. Unknown and empty types fall
// back to the offer template.
func LookupTemplate(t TemplateType) Template {
	if tpl, ok := templates[TemplateType(strings.ToLower(strings.TrimSpace(string(t))))]; ok {
		return tpl
	}
	return templates[TemplateOffer]
}
