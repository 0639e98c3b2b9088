package layout

import (
	"github.com/gompdf/offerpdf/internal/lineitem"
	"github.com/gompdf/offerpdf/internal/text"
)

// ItemHeight estimates the rendered height of an item in layout units.
//
// The model is declared, not measured: the orientation's row height plus a
// fixed increment for every description line.
func (c Config) ItemHeight(item lineitem.Item) float64 {
	return EstimateHeight(item, c.Metrics())
}

// EstimateHeight applies metrics m to item
func EstimateHeight(item lineitem.Item, m Metrics) float64 {
	h := m.RowHeight
	if item.HasDescription() {
		h += float64(text.LineCount(item.Description)) * m.LineIncrement
	}
	return h
}
