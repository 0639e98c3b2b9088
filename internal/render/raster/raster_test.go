package raster

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/layout"
	"github.com/gompdf/offerpdf/internal/lineitem"
	"github.com/gompdf/offerpdf/internal/render"
	"github.com/gompdf/offerpdf/internal/res"
	"github.com/gompdf/offerpdf/internal/text"
)

const logoSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 20 10"><rect x="0" y="0" width="20" height="10" fill="#1e40af"/></svg>`

func planFor(t *testing.T, req document.Request) *document.Plan {
	t.Helper()
	plan, err := document.NewPlanner(layout.DefaultConfig()).Build(req)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return plan
}

func request(n int) document.Request {
	items := make([]lineitem.Raw, n)
	for i := range items {
		items[i] = lineitem.Raw{Name: "Chair", Code: "CH-1", Quantity: "2", UnitPrice: "100", Description: "oak\nupholstered"}
	}
	return document.Request{
		Items:  items,
		Seller: document.Party{Name: "Seller", Logo: "data:image/svg+xml," + url.PathEscape(logoSVG)},
		Buyer:  document.Party{Name: "Buyer", Address: "Main St 1"},
		Number: "1/2026",
		Notes:  "Prices valid for 30 days.",
	}
}

func newPNGRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Options{Layout: layout.DefaultConfig(), Format: render.FormatPNG, Loader: res.NewLoader("")})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func decode(t *testing.T, pi render.PageImage) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(pi.Data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	return img
}

func TestRenderPage_Portrait(t *testing.T) {
	plan := planFor(t, request(2))
	r := newPNGRenderer(t)

	pi, err := r.RenderPage(context.Background(), plan.Pages[0])
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if pi.Format != render.FormatPNG || pi.Number != 1 {
		t.Errorf("format/number = %s/%d", pi.Format, pi.Number)
	}

	img := decode(t, pi)
	b := img.Bounds()
	if b.Dx() != 794 || b.Dy() != pi.Height || pi.Height < 1123 {
		t.Errorf("bounds = %v, reported height %d", b, pi.Height)
	}

	// offer accent bar across the top
	got := color.RGBAModel.Convert(img.At(b.Dx()/2, 2)).(color.RGBA)
	if got != (color.RGBA{0xdc, 0x26, 0x26, 0xff}) {
		t.Errorf("accent pixel = %v", got)
	}
}

func TestRenderPage_LandscapeAndJPEG(t *testing.T) {
	req := request(3)
	req.Orientation = "landscape"
	plan := planFor(t, req)

	r, err := New(Options{Layout: layout.DefaultConfig()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	pi, err := r.RenderPage(context.Background(), plan.Pages[0])
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if pi.Format != render.FormatJPEG {
		t.Errorf("default format = %s", pi.Format)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(pi.Data))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if format != "jpeg" || cfg.Width != 1123 {
		t.Errorf("decoded %s %dx%d", format, cfg.Width, cfg.Height)
	}
}

func TestRenderPage_CanvasGrowsForOversizedPage(t *testing.T) {
	req := request(1)
	desc := ""
	for i := 0; i < 150; i++ {
		desc += "line\n"
	}
	req.Items[0].Description = desc + "end"
	plan := planFor(t, req)

	pi, err := newPNGRenderer(t).RenderPage(context.Background(), plan.Pages[0])
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if pi.Height <= 1123 {
		t.Errorf("height = %d, expected canvas to grow", pi.Height)
	}
}

func TestRenderPage_LongNotesKeepFooterOnCanvas(t *testing.T) {
	req := request(1)
	req.Notes = strings.Repeat("Delivery and assembly are free of charge within the city limits. ", 200)
	plan := planFor(t, req)
	page := plan.Pages[0]
	if page.Footer == nil {
		t.Fatal("single page must carry the footer")
	}

	pi, err := newPNGRenderer(t).RenderPage(context.Background(), page)
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	img := decode(t, pi)

	f, err := newFaces()
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	lines := wrapNotes(f, img.Bounds().Dx(), page.Notes)
	if len(lines) <= text.LineCount(page.Notes) {
		t.Fatalf("notes wrapped into %d lines, expected more than the paragraph count", len(lines))
	}

	footerTop := int(math.Ceil(page.Height)) + subtotalHeight + summaryHeight + notesHeight(f, lines)
	if bottom := footerTop + footerHeight + labelHeight; bottom > img.Bounds().Dy() {
		t.Fatalf("footer and label need y up to %d, canvas height is %d", bottom, img.Bounds().Dy())
	}
	got := color.RGBAModel.Convert(img.At(img.Bounds().Dx()/2, footerTop)).(color.RGBA)
	if got != rule {
		t.Errorf("footer rule missing at y=%d: got %v", footerTop, got)
	}
}

func TestRenderPage_BrokenImageDoesNotFail(t *testing.T) {
	req := request(1)
	req.Items[0].ImageRef = "/does/not/exist.png"
	req.Seller.Logo = "data:image/png;base64,AAAA"
	plan := planFor(t, req)

	if _, err := newPNGRenderer(t).RenderPage(context.Background(), plan.Pages[0]); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
}

func TestRenderPage_Cancelled(t *testing.T) {
	plan := planFor(t, request(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newPNGRenderer(t).RenderPage(ctx, plan.Pages[0]); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Layout: layout.DefaultConfig(), Format: "gif"}); err == nil {
		t.Error("expected error for gif")
	}
}

func TestRasterizeSVG_PreservesAspect(t *testing.T) {
	img, err := rasterizeSVG([]byte(logoSVG), 100, 100)
	if err != nil {
		t.Fatalf("rasterizeSVG() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("bounds = %v, want 100x50", b)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
		ok      bool
	}{
		{"#dc2626", 0xdc, 0x26, 0x26, true},
		{"#fff", 255, 255, 255, true},
		{" 059669 ", 0x05, 0x96, 0x69, true},
		{"#12345", 0, 0, 0, false},
		{"#zzzzzz", 0, 0, 0, false},
	}
	for _, tt := range tests {
		r, g, b, ok := parseHexColor(tt.in)
		if ok != tt.ok || r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("parseHexColor(%q) = %d,%d,%d,%v", tt.in, r, g, b, ok)
		}
	}
}
