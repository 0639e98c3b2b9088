// Package render defines the contracts between planned documents and the
// renderers that turn them into images, previews and files.
package render

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/layout"
)

// Producer is written into the metadata of every generated file
const Producer = "offerpdf"

// Image formats produced by page renderers
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// PageImage is the rasterized content of one page
type PageImage struct {
	Number int
	Data   []byte
	Format string
	Width  int
	Height int
}

// PageRenderer turns one self-contained page into an image
type PageRenderer interface {
	RenderPage(ctx context.Context, page *document.Page) (PageImage, error)
}

// Assembler combines page images into the final file
type Assembler interface {
	Assemble(ctx context.Context, pages []PageImage, meta Metadata) ([]byte, error)
}

// Metadata is the document information written into the final file
type Metadata struct {
	Title       string
	Subject     string
	Author      string
	Keywords    string
	Creator     string
	Producer    string
	Orientation layout.Orientation
}

// MetadataFor derives file metadata from a plan
func MetadataFor(plan *document.Plan, creator string) Metadata {
	if creator == "" {
		creator = Producer
	}
	return Metadata{
		Title:       plan.Title,
		Subject:     plan.Subject,
		Author:      plan.Author,
		Keywords:    plan.Keywords,
		Creator:     creator,
		Producer:    Producer,
		Orientation: plan.Orientation,
	}
}

// PageError reports a failure to render a single page
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("failed to render page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Money formats an amount rounded half away from zero to two decimals.
// Non-finite values, which validation keeps out of plans, print as "-".
func Money(v float64) string {
	if !finite(v) {
		return "-"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Amount formats an amount followed by its currency
func Amount(v float64, currency string) string {
	if currency == "" {
		return Money(v)
	}
	return Money(v) + " " + currency
}

// Quantity formats a quantity without trailing zeros
func Quantity(v float64) string {
	if !finite(v) {
		return "-"
	}
	return decimal.NewFromFloat(v).Round(3).String()
}

// Percent formats a percentage such as a discount
func Percent(v float64) string {
	if !finite(v) {
		return "-"
	}
	return decimal.NewFromFloat(v).Round(2).String() + "%"
}

// VATLabel formats the VAT line caption for a rate such as 0.23
func VATLabel(rate float64) string {
	return "VAT " + decimal.NewFromFloat(rate).Shift(2).Round(2).String() + "%"
}

// PageLabel returns the "Page N of M" caption
func PageLabel(p *document.Page) string {
	return fmt.Sprintf("Page %d of %d", p.Number, p.Count)
}

// Heading returns the first-line caption of a page, e.g. "PRICE OFFER No. 12/2026"
func Heading(p *document.Page) string {
	if strings.TrimSpace(p.DocumentNumber) == "" {
		return p.Template.Name
	}
	return p.Template.Name + " No. " + p.DocumentNumber
}

var unsafeFileChars = regexp.MustCompile(`[/\\?%*:|"<>]`)

// FileName derives the output file name from a document number.
// An empty number yields "Offer.pdf".
func FileName(label, number string) string {
	if label == "" {
		label = "Offer"
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return label + ".pdf"
	}
	return label + "_" + unsafeFileChars.ReplaceAllString(number, "-") + ".pdf"
}
