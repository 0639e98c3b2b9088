package totals

import "github.com/gompdf/offerpdf/internal/lineitem"

// VATRate is the fixed value-added tax rate applied to net amounts
const VATRate = 0.23

// Totals holds full-precision net, VAT and gross amounts.
// Rounding for display is left to renderers.
type Totals struct {
	Net   float64 `json:"net"`
	VAT   float64 `json:"vat"`
	Gross float64 `json:"gross"`
}

// Of sums the line totals of items in the given order
func Of(items []lineitem.Item) Totals {
	var net float64
	for _, it := range items {
		net += it.LineTotal
	}
	return FromNet(net)
}

// FromNet derives VAT and gross from a net amount
func FromNet(net float64) Totals {
	vat := net * VATRate
	return Totals{Net: net, VAT: vat, Gross: net + vat}
}
