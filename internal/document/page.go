package document

import (
	"github.com/gompdf/offerpdf/internal/layout"
	"github.com/gompdf/offerpdf/internal/lineitem"
	"github.com/gompdf/offerpdf/internal/totals"
)

// Header is the seller/buyer block printed on the first page
type Header struct {
	Seller     Party  `json:"seller"`
	Buyer      Party  `json:"buyer"`
	Number     string `json:"number"`
	Date       string `json:"date"`
	ValidUntil string `json:"validUntil"`
}

// Summary is the grand total block printed on the last page
type Summary struct {
	Totals  totals.Totals `json:"totals"`
	VATRate float64       `json:"vatRate"`
}

// Footer carries commercial terms and transfer details for the last page
type Footer struct {
	Terms        Terms  `json:"terms"`
	Recipient    string `json:"recipient"`
	BankAccount  string `json:"bankAccount"`
	PaymentTitle string `json:"paymentTitle"`
	Website      string `json:"website"`
	CompanyName  string `json:"companyName"`
}

// Page is the content model of one page. It is self-contained: a renderer
// never needs to look at sibling pages.
type Page struct {
	Number int  `json:"number"`
	Count  int  `json:"count"`
	First  bool `json:"first"`
	Last   bool `json:"last"`

	Items  []lineitem.Item `json:"items"`
	Height float64         `json:"height"`
	// Subtotal of this page's items
	Totals totals.Totals `json:"totals"`

	Orientation    layout.Orientation `json:"orientation"`
	Template       Template           `json:"template"`
	DocumentNumber string             `json:"documentNumber"`
	Currency       string             `json:"currency"`

	Header  *Header  `json:"header,omitempty"`
	Summary *Summary `json:"summary,omitempty"`
	Notes   string   `json:"notes,omitempty"`
	Footer  *Footer  `json:"footer,omitempty"`
}

// Plan is the planned document handed to renderers
type Plan struct {
	Title    string `json:"title"`
	Subject  string `json:"subject"`
	Author   string `json:"author"`
	Keywords string `json:"keywords"`

	Number      string             `json:"number"`
	Orientation layout.Orientation `json:"orientation"`
	Template    Template           `json:"template"`
	Seller      Party              `json:"seller"`
	Buyer       Party              `json:"buyer"`

	Pages       []*Page       `json:"pages"`
	GrandTotals totals.Totals `json:"grandTotals"`
}

// PageCount returns the number of planned pages
func (p *Plan) PageCount() int {
	return len(p.Pages)
}

// Items returns all items of the plan in page order
func (p *Plan) Items() []lineitem.Item {
	var out []lineitem.Item
	for _, pg := range p.Pages {
		out = append(out, pg.Items...)
	}
	return out
}
