package document

import (
	"fmt"
	"strings"

	"github.com/gompdf/offerpdf/internal/layout"
	"github.com/gompdf/offerpdf/internal/lineitem"
	"github.com/gompdf/offerpdf/internal/pagination"
	"github.com/gompdf/offerpdf/internal/totals"
)

// DefaultCurrency is used when a request names none
const DefaultCurrency = "PLN"

// Planner turns requests into document plans. It holds no mutable state
// and may be shared between goroutines.
type Planner struct {
	layout layout.Config
}

// NewPlanner creates a planner for the given layout configuration
func NewPlanner(cfg layout.Config) *Planner {
	return &Planner{layout: cfg}
}

// Layout returns the planner's layout configuration
func (p *Planner) Layout() layout.Config {
	return p.layout
}

// Build validates the request and plans every page.
//
// Either every item validates and every page is planned, or a
// *GenerationError is returned and no plan is produced.
func (p *Planner) Build(req Request) (*Plan, error) {
	if len(req.Items) == 0 {
		return nil, &GenerationError{Kind: KindEmptyInput, Err: ErrEmptyInput}
	}

	cfg, err := p.resolveLayout(req.Orientation)
	if err != nil {
		return nil, &GenerationError{Kind: KindLayout, Err: err}
	}

	items, err := lineitem.Normalize(req.Items)
	if err != nil {
		return nil, &GenerationError{Kind: KindValidation, Err: err}
	}

	groups := pagination.NewPaginator(cfg).Paginate(items)
	tpl := LookupTemplate(req.Template)
	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}

	plan := &Plan{
		Title:       title(tpl, req),
		Subject:     fmt.Sprintf("%s - %s", tpl.Name, orDefault(req.Seller.Name, "offerpdf")),
		Author:      orDefault(req.Seller.DisplayName(), "offerpdf"),
		Keywords:    strings.TrimSuffix(strings.ToLower(tpl.Label)+", "+req.Seller.Name, ", "),
		Number:      req.Number,
		Orientation: cfg.Orientation,
		Template:    tpl,
		Seller:      req.Seller,
		Buyer:       req.Buyer,
		Pages:       make([]*Page, 0, len(groups)),
		GrandTotals: totals.Of(items),
	}

	for _, g := range groups {
		plan.Pages = append(plan.Pages, assemble(g, len(groups), plan, req, currency))
	}
	return plan, nil
}

func (p *Planner) resolveLayout(orientation string) (layout.Config, error) {
	cfg := p.layout
	if strings.TrimSpace(orientation) != "" {
		o, err := layout.ParseOrientation(orientation)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.WithOrientation(o)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid layout configuration: %w", err)
	}
	return cfg, nil
}

// assemble builds the content model of one page. The header goes on the
// first page only; summary, notes and footer on the last page only.
func assemble(g *pagination.Page, count int, plan *Plan, req Request, currency string) *Page {
	page := &Page{
		Number:         g.Number,
		Count:          count,
		First:          g.First,
		Last:           g.Last,
		Items:          g.Items,
		Height:         g.Height,
		Totals:         totals.Of(g.Items),
		Orientation:    plan.Orientation,
		Template:       plan.Template,
		DocumentNumber: req.Number,
		Currency:       currency,
	}

	if g.First {
		page.Header = &Header{
			Seller:     req.Seller,
			Buyer:      req.Buyer,
			Number:     req.Number,
			Date:       req.Date,
			ValidUntil: req.ValidUntil,
		}
	}

	if g.Last {
		if plan.Template.IncludeSummary {
			page.Summary = &Summary{Totals: plan.GrandTotals, VATRate: totals.VATRate}
		}
		page.Notes = strings.TrimSpace(req.Notes)
		if plan.Template.IncludeFooter {
			page.Footer = &Footer{
				Terms:        req.Terms.WithDefaults(),
				Recipient:    orDefault(req.Seller.BankName, req.Seller.DisplayName()),
				BankAccount:  req.Seller.BankAccount,
				PaymentTitle: orDefault(req.Number, plan.Template.Label),
				Website:      req.Seller.Website,
				CompanyName:  req.Seller.Name,
			}
		}
	}
	return page
}

func title(tpl Template, req Request) string {
	number := orDefault(req.Number, "without number")
	t := fmt.Sprintf("%s %s", tpl.Label, number)
	if name := strings.TrimSpace(req.Buyer.Name); name != "" {
		t += " for " + name
	}
	return t
}
