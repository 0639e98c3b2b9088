package render

import (
	"errors"
	"math"
	"testing"

	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/layout"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{19.99, "19.99"},
		{2.005, "2.01"},
		{1234.5, "1234.50"},
		{-3.456, "-3.46"},
		{math.Inf(1), "-"},
		{math.NaN(), "-"},
	}
	for _, tt := range tests {
		if got := Money(tt.in); got != tt.want {
			t.Errorf("Money(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatting(t *testing.T) {
	if got := Amount(10, "PLN"); got != "10.00 PLN" {
		t.Errorf("Amount = %q", got)
	}
	if got := Amount(10, ""); got != "10.00" {
		t.Errorf("Amount without currency = %q", got)
	}
	if got := Quantity(2.5); got != "2.5" {
		t.Errorf("Quantity(2.5) = %q", got)
	}
	if got := Quantity(3); got != "3" {
		t.Errorf("Quantity(3) = %q", got)
	}
	if got := Percent(12.5); got != "12.5%" {
		t.Errorf("Percent = %q", got)
	}
	if got := VATLabel(0.23); got != "VAT 23%" {
		t.Errorf("VATLabel = %q", got)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		label, number, want string
	}{
		{"Offer", "OF/2026/10:1", "Offer_OF-2026-10-1.pdf"},
		{"Invoice", `a\b?c%d*e|f"g<h>`, "Invoice_a-b-c-d-e-f-g-h-.pdf"},
		{"", "  ", "Offer.pdf"},
	}
	for _, tt := range tests {
		if got := FileName(tt.label, tt.number); got != tt.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tt.label, tt.number, got, tt.want)
		}
	}
}

func TestLabels(t *testing.T) {
	p := &document.Page{Number: 2, Count: 3, Template: document.LookupTemplate(document.TemplateInvoice), DocumentNumber: "7"}
	if got := PageLabel(p); got != "Page 2 of 3" {
		t.Errorf("PageLabel = %q", got)
	}
	if got := Heading(p); got != "VAT INVOICE No. 7" {
		t.Errorf("Heading = %q", got)
	}
	p.DocumentNumber = ""
	if got := Heading(p); got != "VAT INVOICE" {
		t.Errorf("Heading without number = %q", got)
	}
}

func TestMetadataFor(t *testing.T) {
	plan := &document.Plan{Title: "Offer 1", Author: "Acme", Orientation: layout.Landscape}
	meta := MetadataFor(plan, "")
	if meta.Creator != Producer || meta.Producer != Producer {
		t.Errorf("creator/producer = %q/%q", meta.Creator, meta.Producer)
	}
	if meta.Title != "Offer 1" || meta.Orientation != layout.Landscape {
		t.Errorf("meta = %+v", meta)
	}
}

func TestPageError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&PageError{Page: 3, Err: cause})
	if !errors.Is(err, cause) {
		t.Error("PageError must unwrap to its cause")
	}
	if err.Error() != "failed to render page 3: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}
