package pagination

import (
	"github.com/gompdf/offerpdf/internal/layout"
	"github.com/gompdf/offerpdf/internal/lineitem"
)

// Page represents a single planned page
type Page struct {
	// 1-based position in the document
	Number int
	// Contiguous run of items, never empty
	Items []lineitem.Item
	// Planned height in layout units, header allowance included
	Height float64
	First  bool
	Last   bool
}

// Paginator breaks items into pages using a greedy single forward pass
type Paginator struct {
	Layout layout.Config
}

// NewPaginator creates a new paginator
func NewPaginator(cfg layout.Config) *Paginator {
	return &Paginator{Layout: cfg}
}

// Paginate distributes items over pages in submission order.
//
// A page is closed as soon as the next item would push it past the page
// capacity. An item taller than a whole page still gets a page of its own:
// items are never dropped, split or reordered. Every page starts with the
// same header allowance. Empty input yields nil.
func (p *Paginator) Paginate(items []lineitem.Item) []*Page {
	if len(items) == 0 {
		return nil
	}

	metrics := p.Layout.Metrics()
	allowance := p.Layout.HeaderAllowance

	var pages []*Page
	start := 0
	height := allowance

	closePage := func(end int) {
		pages = append(pages, &Page{
			Number: len(pages) + 1,
			Items:  items[start:end:end],
			Height: height,
		})
		start = end
		height = allowance
	}

	for i, item := range items {
		h := layout.EstimateHeight(item, metrics)
		if height+h > metrics.MaxPageHeight && i > start {
			closePage(i)
		}
		height += h
	}
	closePage(len(items))

	pages[0].First = true
	pages[len(pages)-1].Last = true
	return pages
}

// CalculatePageCount calculates the number of pages needed
func (p *Paginator) CalculatePageCount(items []lineitem.Item) int {
	return len(p.Paginate(items))
}
