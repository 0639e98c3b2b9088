// Package html renders planned documents as a self-contained HTML preview.
package html

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/layout"
	"github.com/gompdf/offerpdf/internal/render"
)

const stylesheet = `
body { background: #e5e7eb; font-family: Helvetica, Arial, sans-serif; color: #111827; margin: 0; }
.page { background: #fff; margin: 16px auto; padding: 24px; box-sizing: border-box; position: relative; }
.page.portrait { width: 794px; min-height: 1123px; }
.page.landscape { width: 1123px; min-height: 794px; }
.accent { height: 6px; margin: -24px -24px 12px; }
.heading { text-align: right; font-size: 22px; font-weight: bold; }
.parties { display: flex; gap: 24px; margin-top: 16px; font-size: 12px; }
.parties > div { flex: 1; }
table { width: 100%; border-collapse: collapse; font-size: 12px; margin-top: 12px; }
th { background: #f3f4f6; text-align: left; padding: 4px; }
td { border-bottom: 1px solid #e5e7eb; padding: 4px; vertical-align: top; }
td.num, th.num { text-align: right; }
.code, .desc { color: #6b7280; font-size: 10px; }
.desc { white-space: pre-line; }
.subtotal { text-align: right; color: #6b7280; font-size: 11px; margin-top: 8px; }
.summary { margin: 12px 0 0 auto; width: 300px; font-size: 12px; }
.summary div { display: flex; justify-content: space-between; padding: 3px 4px; }
.summary .gross { color: #fff; font-weight: bold; }
.footer { display: flex; gap: 24px; border-top: 1px solid #e5e7eb; margin-top: 16px; padding-top: 8px; font-size: 11px; }
.footer > div { flex: 1; }
.label { position: absolute; right: 24px; bottom: 16px; color: #6b7280; font-size: 10px; }
`

// Renderer writes HTML previews. It is stateless and safe for concurrent use.
type Renderer struct{}

// NewRenderer creates a new HTML preview renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render writes plan as one HTML document with a section per page
func (r *Renderer) Render(ctx context.Context, plan *document.Plan, w io.Writer) error {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	doc := el(atom.Html, attr("lang", "en"))
	root.AppendChild(doc)

	head := el(atom.Head)
	head.AppendChild(el(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(textEl(atom.Title, plan.Title))
	head.AppendChild(textEl(atom.Style, stylesheet))
	doc.AppendChild(head)

	body := el(atom.Body)
	doc.AppendChild(body)
	for _, p := range plan.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		body.AppendChild(r.page(p))
	}

	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}

// RenderPage returns the markup of a single page section
func (r *Renderer) RenderPage(ctx context.Context, p *document.Page) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := html.Render(&sb, r.page(p)); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *Renderer) page(p *document.Page) *html.Node {
	orientation := "portrait"
	if p.Orientation == layout.Landscape {
		orientation = "landscape"
	}
	sec := el(atom.Section,
		attr("class", "page "+orientation),
		attr("data-page", fmt.Sprint(p.Number)))

	sec.AppendChild(el(atom.Div, attr("class", "accent"), attr("style", "background:"+p.Template.Color)))
	sec.AppendChild(textEl(atom.Div, render.Heading(p), attr("class", "heading"), attr("style", "color:"+p.Template.Color)))

	if h := p.Header; h != nil {
		if h.Seller.Logo != "" {
			sec.AppendChild(el(atom.Img, attr("class", "logo"), attr("src", h.Seller.Logo), attr("alt", h.Seller.Name), attr("height", "60")))
		}
		meta := el(atom.Div, attr("class", "dates"))
		appendLine(meta, "Date", h.Date)
		appendLine(meta, "Valid until", h.ValidUntil)
		sec.AppendChild(meta)

		parties := el(atom.Div, attr("class", "parties"))
		parties.AppendChild(party("Seller", h.Seller))
		parties.AppendChild(party("Buyer", h.Buyer))
		sec.AppendChild(parties)
	}

	sec.AppendChild(itemTable(p))
	sec.AppendChild(textEl(atom.Div, "Page subtotal (net): "+render.Amount(p.Totals.Net, p.Currency), attr("class", "subtotal")))

	if s := p.Summary; s != nil {
		sum := el(atom.Div, attr("class", "summary"))
		sum.AppendChild(pair("Total net", render.Amount(s.Totals.Net, p.Currency)))
		sum.AppendChild(pair(render.VATLabel(s.VATRate), render.Amount(s.Totals.VAT, p.Currency)))
		gross := pair("Total gross", render.Amount(s.Totals.Gross, p.Currency))
		gross.Attr = append(gross.Attr, attr("class", "gross"), attr("style", "background:"+p.Template.Color))
		sum.AppendChild(gross)
		sec.AppendChild(sum)
	}

	if p.Notes != "" {
		notes := el(atom.Div, attr("class", "notes"))
		notes.AppendChild(textEl(atom.Strong, "Notes"))
		notes.AppendChild(textEl(atom.P, p.Notes, attr("class", "desc")))
		sec.AppendChild(notes)
	}

	if f := p.Footer; f != nil {
		foot := el(atom.Div, attr("class", "footer"))
		terms := el(atom.Div)
		terms.AppendChild(textEl(atom.Strong, "Terms"))
		appendLine(terms, "Payment", f.Terms.Payment)
		appendLine(terms, "Delivery time", f.Terms.Delivery)
		appendLine(terms, "Delivery", f.Terms.DeliveryMethod)
		appendLine(terms, "Warranty", f.Terms.Warranty)
		bank := el(atom.Div)
		bank.AppendChild(textEl(atom.Strong, "Bank transfer"))
		appendLine(bank, "Recipient", f.Recipient)
		appendLine(bank, "Account", f.BankAccount)
		appendLine(bank, "Title", f.PaymentTitle)
		appendLine(bank, "Web", f.Website)
		foot.AppendChild(terms)
		foot.AppendChild(bank)
		sec.AppendChild(foot)
	}

	sec.AppendChild(textEl(atom.Div, render.PageLabel(p), attr("class", "label")))
	return sec
}

func itemTable(p *document.Page) *html.Node {
	table := el(atom.Table)
	head := el(atom.Tr)
	for _, c := range []struct{ caption, class string }{
		{"No.", ""}, {"", ""}, {"Product", ""}, {"Qty", "num"}, {"Unit price", "num"}, {"Discount", "num"}, {"Net total", "num"},
	} {
		th := textEl(atom.Th, c.caption)
		if c.class != "" {
			th.Attr = append(th.Attr, attr("class", c.class))
		}
		head.AppendChild(th)
	}
	thead := el(atom.Thead)
	thead.AppendChild(head)
	table.AppendChild(thead)

	tbody := el(atom.Tbody)
	for _, it := range p.Items {
		tr := el(atom.Tr, attr("data-index", fmt.Sprint(it.Index)))
		tr.AppendChild(textEl(atom.Td, fmt.Sprint(it.Index)))

		img := el(atom.Td)
		if it.ImageRef != "" {
			img.AppendChild(el(atom.Img, attr("src", it.ImageRef), attr("alt", it.Name), attr("width", "60")))
		}
		tr.AppendChild(img)

		product := el(atom.Td)
		product.AppendChild(textEl(atom.Strong, it.Name))
		if it.Code != "" {
			product.AppendChild(textEl(atom.Div, "Code: "+it.Code, attr("class", "code")))
		}
		if it.Description != "" {
			product.AppendChild(textEl(atom.Div, it.Description, attr("class", "desc")))
		}
		tr.AppendChild(product)

		disc := "-"
		if it.Discount > 0 {
			disc = render.Percent(it.Discount)
		}
		for _, v := range []string{render.Quantity(it.Quantity), render.Money(it.UnitPrice), disc, render.Money(it.LineTotal)} {
			tr.AppendChild(textEl(atom.Td, v, attr("class", "num")))
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table
}

func party(caption string, p document.Party) *html.Node {
	div := el(atom.Div)
	div.AppendChild(textEl(atom.Strong, caption))
	appendLine(div, "", p.DisplayName())
	appendLine(div, "", p.Address)
	appendLine(div, "NIP", p.TaxID)
	appendLine(div, "Phone", p.Phone)
	appendLine(div, "Email", p.Email)
	appendLine(div, "Contact", p.Contact)
	return div
}

func pair(label, value string) *html.Node {
	div := el(atom.Div)
	div.AppendChild(textEl(atom.Span, label))
	div.AppendChild(textEl(atom.Span, value))
	return div
}

func appendLine(parent *html.Node, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if label != "" {
		value = label + ": " + value
	}
	parent.AppendChild(textEl(atom.Div, value))
}

func el(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a, Attr: attrs}
}

func textEl(a atom.Atom, s string, attrs ...html.Attribute) *html.Node {
	n := el(a, attrs...)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return n
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}
