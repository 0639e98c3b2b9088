// Package raster draws planned pages into bitmaps using Go fonts.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"strings"

	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/layout"
	"github.com/gompdf/offerpdf/internal/lineitem"
	"github.com/gompdf/offerpdf/internal/render"
	"github.com/gompdf/offerpdf/internal/res"
	"github.com/gompdf/offerpdf/internal/text"
)

const (
	margin      = 24
	accentBar   = 6
	logoWidth   = 140
	logoHeight  = 60
	tableHeader = 24
	descTop     = 44
	maxDescStep = 12

	subtotalHeight = 36
	summaryHeight  = 96
	footerHeight   = 150
	labelHeight    = 36
)

// Options configures a Renderer
type Options struct {
	Layout layout.Config
	// FormatJPEG or FormatPNG
	Format      string
	JPEGQuality int
	// Loader resolves product images and logos. Images are skipped when nil.
	Loader *res.Loader
	Logger *slog.Logger
}

// Renderer rasterizes pages. It is safe for concurrent use.
type Renderer struct {
	opts Options
}

// New creates a raster renderer
func New(opts Options) (*Renderer, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}
	switch opts.Format {
	case "":
		opts.Format = render.FormatJPEG
	case render.FormatJPEG, render.FormatPNG:
	default:
		return nil, fmt.Errorf("unsupported image format %q", opts.Format)
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 92
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Renderer{opts: opts}, nil
}

// columns are the x positions of the item table
type columns struct {
	no, img, product, qty, price, discount, total, right int
	productWidth                                         int
}

func tableColumns(width int, m layout.Metrics) columns {
	c := columns{no: margin, right: width - margin}
	c.img = c.no + 36
	c.product = c.img + int(m.ImageSize) + 12
	c.total = c.right - 110
	c.discount = c.total - 70
	c.price = c.discount - 100
	c.qty = c.price - 60
	c.productWidth = c.qty - c.product - 8
	return c
}

// RenderPage draws page into an image encoded in the configured format.
// The canvas grows past the nominal page height when the closing blocks
// of the last page do not fit.
func (r *Renderer) RenderPage(ctx context.Context, page *document.Page) (render.PageImage, error) {
	if err := ctx.Err(); err != nil {
		return render.PageImage{}, err
	}

	f, err := newFaces()
	if err != nil {
		return render.PageImage{}, err
	}
	defer f.Close()

	m := r.opts.Layout.MetricsFor(page.Orientation)
	width := m.PixelWidth
	notes := wrapNotes(f, width, page.Notes)
	height := canvasHeight(page, m, notesHeight(f, notes))

	c := newCanvas(width, height)
	accent := parseColor(page.Template.Color)
	cols := tableColumns(width, m)
	log := r.opts.Logger.With("page", page.Number, "count", page.Count)

	r.drawHeader(ctx, c, f, page, accent, log)
	r.drawTableHeader(c, f, cols)

	y := int(r.opts.Layout.HeaderAllowance)
	for _, it := range page.Items {
		if err := ctx.Err(); err != nil {
			return render.PageImage{}, err
		}
		h := int(math.Ceil(layout.EstimateHeight(it, m)))
		r.drawRow(ctx, c, f, cols, it, y, h, m, log)
		y += h
	}

	y = drawSubtotal(c, f, cols, page, y)
	if page.Summary != nil {
		y = drawSummary(c, f, cols, page, accent, y)
	}
	if len(notes) > 0 {
		y = drawNotes(c, f, notes, y)
	}
	if page.Footer != nil {
		drawFooter(c, f, width, page.Footer, y)
	}
	c.textRight(f.small, width-margin, height-margin-lineHeight(f.small), render.PageLabel(page), muted)

	data, err := r.encode(c.img)
	if err != nil {
		return render.PageImage{}, err
	}
	log.Debug("page rasterized", "width", width, "height", height, "items", len(page.Items), "bytes", len(data))
	return render.PageImage{
		Number: page.Number,
		Data:   data,
		Format: r.opts.Format,
		Width:  width,
		Height: height,
	}, nil
}

// canvasHeight is the pixel height needed for page, never less than the
// nominal page height. notesH is the measured height of the wrapped notes.
func canvasHeight(page *document.Page, m layout.Metrics, notesH int) int {
	h := int(math.Ceil(page.Height)) + subtotalHeight
	if page.Summary != nil {
		h += summaryHeight
	}
	h += notesH
	if page.Footer != nil {
		h += footerHeight
	}
	h += labelHeight + margin
	return max(h, m.PixelHeight)
}

func (r *Renderer) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if r.opts.Format == render.FormatPNG {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.opts.JPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode page: %w", err)
	}
	return buf.Bytes(), nil
}

// loadImage resolves and decodes ref into a w x h box. Failures are logged
// and reported as nil so a broken image never fails the document.
func (r *Renderer) loadImage(ctx context.Context, ref string, w, h int, log *slog.Logger) image.Image {
	if r.opts.Loader == nil || strings.TrimSpace(ref) == "" {
		return nil
	}
	loaded, err := r.opts.Loader.Load(ctx, ref)
	if err != nil {
		log.Warn("image unavailable", "error", err)
		return nil
	}
	img, err := decodeImage(loaded, w, h)
	if err != nil {
		log.Warn("image not decodable", "ref", loaded.Ref, "error", err)
		return nil
	}
	return img
}

func (r *Renderer) drawHeader(ctx context.Context, c *canvas, f *faces, page *document.Page, accent color.RGBA, log *slog.Logger) {
	width := c.img.Bounds().Dx()
	c.fill(image.Rect(0, 0, width, accentBar), accent)

	c.textRight(f.title, width-margin, 20, render.Heading(page), accent)

	hdr := page.Header
	if hdr == nil {
		c.text(f.small, margin, 24, "continued", muted)
		return
	}

	logoBox := image.Rect(margin, 18, margin+logoWidth, 18+logoHeight)
	if logo := r.loadImage(ctx, hdr.Seller.Logo, logoWidth, logoHeight, log); logo != nil {
		c.image(logo, logoBox)
	} else if hdr.Seller.Name != "" {
		c.text(f.heading, margin, 36, hdr.Seller.Name, ink)
	}

	top := 20 + lineHeight(f.title) + 4
	for _, line := range []string{labelled("Date", hdr.Date), labelled("Valid until", hdr.ValidUntil)} {
		if line == "" {
			continue
		}
		c.textRight(f.small, width-margin, top, line, muted)
		top += lineHeight(f.small)
	}

	colWidth := (width - 2*margin) / 2
	drawParty(c, f, margin, 96, colWidth-12, "Seller", hdr.Seller)
	drawParty(c, f, margin+colWidth, 96, colWidth-12, "Buyer", hdr.Buyer)
}

func drawParty(c *canvas, f *faces, x, top, width int, caption string, p document.Party) {
	c.text(f.bold, x, top, caption, ink)
	top += lineHeight(f.bold) + 2

	lines := []string{
		p.DisplayName(),
		p.Address,
		labelled("NIP", p.TaxID),
		strings.TrimSpace(strings.Join(nonEmpty(p.Phone, p.Email), " | ")),
		labelled("Contact", p.Contact),
	}
	m := measurer(f.small)
	drawn := 0
	for _, l := range lines {
		l = strings.TrimSpace(strings.ReplaceAll(l, "\n", ", "))
		if l == "" {
			continue
		}
		c.text(f.small, x, top, text.Truncate(l, float64(width), m), muted)
		top += lineHeight(f.small)
		if drawn++; drawn == 4 {
			return
		}
	}
}

func (r *Renderer) drawTableHeader(c *canvas, f *faces, cols columns) {
	bottom := int(r.opts.Layout.HeaderAllowance) - 2
	top := bottom - tableHeader
	c.fill(image.Rect(margin, top, cols.right, bottom), band)

	ty := top + (tableHeader-lineHeight(f.small))/2
	c.text(f.small, cols.no+4, ty, "No.", ink)
	c.text(f.small, cols.product, ty, "Product", ink)
	c.textRight(f.small, cols.price-8, ty, "Qty", ink)
	c.textRight(f.small, cols.discount-8, ty, "Unit price", ink)
	c.textRight(f.small, cols.total-8, ty, "Discount", ink)
	c.textRight(f.small, cols.right-4, ty, "Net total", ink)
}

func (r *Renderer) drawRow(ctx context.Context, c *canvas, f *faces, cols columns, it lineitem.Item, y, h int, m layout.Metrics, log *slog.Logger) {
	size := int(m.ImageSize)
	c.text(f.body, cols.no+4, y+10, fmt.Sprint(it.Index), ink)

	thumb := image.Rect(cols.img, y+8, cols.img+size, y+8+size)
	if img := r.loadImage(ctx, it.ImageRef, size, size, log.With("item", it.Index)); img != nil {
		c.image(img, thumb)
	} else if it.ImageRef != "" {
		c.fill(thumb, band)
	}

	pm := measurer(f.bold)
	c.text(f.bold, cols.product, y+10, text.Truncate(it.Name, float64(cols.productWidth), pm), ink)
	if it.Code != "" {
		c.text(f.small, cols.product, y+10+lineHeight(f.bold), "Code: "+it.Code, muted)
	}

	if lines := it.DescriptionLines(); len(lines) > 0 {
		step := (h - descTop - 6) / len(lines)
		step = min(max(step, int(m.LineIncrement)), maxDescStep)
		dm := measurer(f.desc)
		for i, l := range lines {
			c.text(f.desc, cols.product, y+descTop+i*step, text.Truncate(l, float64(cols.productWidth), dm), muted)
		}
	}

	c.textRight(f.body, cols.price-8, y+10, render.Quantity(it.Quantity), ink)
	c.textRight(f.body, cols.discount-8, y+10, render.Money(it.UnitPrice), ink)
	disc := "-"
	if it.Discount > 0 {
		disc = render.Percent(it.Discount)
	}
	c.textRight(f.body, cols.total-8, y+10, disc, ink)
	c.textRight(f.bold, cols.right-4, y+10, render.Money(it.LineTotal), ink)

	c.hline(margin, cols.right, y+h-1, rule)
}

func drawSubtotal(c *canvas, f *faces, cols columns, page *document.Page, y int) int {
	caption := "Page subtotal (net): " + render.Amount(page.Totals.Net, page.Currency)
	c.textRight(f.small, cols.right-4, y+10, caption, muted)
	return y + subtotalHeight
}

func drawSummary(c *canvas, f *faces, cols columns, page *document.Page, accent color.RGBA, y int) int {
	s := page.Summary
	left := cols.right - 300
	c.hline(left, cols.right, y, accent)

	top := y + 8
	c.text(f.body, left, top, "Total net", ink)
	c.textRight(f.body, cols.right-4, top, render.Amount(s.Totals.Net, page.Currency), ink)
	top += lineHeight(f.body) + 6
	c.text(f.body, left, top, render.VATLabel(s.VATRate), ink)
	c.textRight(f.body, cols.right-4, top, render.Amount(s.Totals.VAT, page.Currency), ink)
	top += lineHeight(f.body) + 6
	c.fill(image.Rect(left, top-2, cols.right, top+lineHeight(f.heading)+4), accent)
	c.text(f.heading, left+4, top, "Total gross", white)
	c.textRight(f.heading, cols.right-4, top, render.Amount(s.Totals.Gross, page.Currency), white)
	return y + summaryHeight
}

// wrapNotes breaks notes into the lines drawNotes draws
func wrapNotes(f *faces, width int, notes string) []string {
	if strings.TrimSpace(notes) == "" {
		return nil
	}
	return text.Wrap(notes, float64(width-2*margin), measurer(f.small))
}

func notesHeight(f *faces, lines []string) int {
	if len(lines) == 0 {
		return 0
	}
	return lineHeight(f.bold) + 4 + len(lines)*lineHeight(f.small) + 8
}

func drawNotes(c *canvas, f *faces, lines []string, y int) int {
	c.text(f.bold, margin, y, "Notes", ink)
	top := y + lineHeight(f.bold) + 4
	for _, l := range lines {
		c.text(f.small, margin, top, l, ink)
		top += lineHeight(f.small)
	}
	return top + 8
}

func drawFooter(c *canvas, f *faces, width int, ft *document.Footer, y int) {
	c.hline(margin, width-margin, y, rule)
	top := y + 10
	colWidth := (width - 2*margin) / 2

	left := []string{
		labelled("Payment", ft.Terms.Payment),
		labelled("Delivery time", ft.Terms.Delivery),
		labelled("Delivery", ft.Terms.DeliveryMethod),
		labelled("Warranty", ft.Terms.Warranty),
	}
	right := []string{
		labelled("Recipient", ft.Recipient),
		labelled("Account", ft.BankAccount),
		labelled("Title", ft.PaymentTitle),
	}

	c.text(f.bold, margin, top, "Terms", ink)
	c.text(f.bold, margin+colWidth, top, "Bank transfer", ink)
	sm := measurer(f.small)
	lt := top + lineHeight(f.bold) + 2
	for _, l := range nonEmpty(left...) {
		c.text(f.small, margin, lt, text.Truncate(l, float64(colWidth-12), sm), muted)
		lt += lineHeight(f.small)
	}
	rt := top + lineHeight(f.bold) + 2
	for _, l := range nonEmpty(right...) {
		c.text(f.small, margin+colWidth, rt, text.Truncate(l, float64(colWidth-12), sm), muted)
		rt += lineHeight(f.small)
	}

	if signature := strings.Join(nonEmpty(ft.CompanyName, ft.Website), " | "); signature != "" {
		bottom := max(lt, rt) + 12
		w := int(sm.Measure(signature))
		c.text(f.small, (width-w)/2, bottom, signature, muted)
	}
}

func labelled(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + ": " + value
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
