package pagination

import "github.com/gompdf/offerpdf/internal/layout"

// Estimate is a fixed-capacity page estimate
type Estimate struct {
	ProductsPerPage  int `json:"productsPerPage"`
	TotalPages       int `json:"totalPages"`
	LastPageProducts int `json:"lastPageProducts"`
}

// OptimalLayout estimates the page count assuming every page holds
// m.ProductsPerPage items. It ignores item heights and is meant for quick
// previews only; Paginate is authoritative.
func OptimalLayout(count int, m layout.Metrics) Estimate {
	per := m.ProductsPerPage
	if per <= 0 {
		per = 1
	}
	est := Estimate{ProductsPerPage: per}
	if count <= 0 {
		return est
	}
	est.TotalPages = (count + per - 1) / per
	est.LastPageProducts = count % per
	if est.LastPageProducts == 0 {
		est.LastPageProducts = per
	}
	return est
}
