// Package pdf assembles rendered page images into a PDF document.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"codeberg.org/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/gompdf/offerpdf/internal/render"
)

// ErrNoPages is returned when there is nothing to assemble
var ErrNoPages = errors.New("no pages to assemble")

var disableConfigDir sync.Once

// Options configures an Assembler
type Options struct {
	// Verify re-reads the finished file and checks its page count
	Verify bool
	// PageSize is an fpdf size name such as "A4" or "Letter"
	PageSize string
	Logger   *slog.Logger
}

// Assembler places one page image per PDF page
type Assembler struct {
	opts Options
}

// NewAssembler creates a new PDF assembler
func NewAssembler(opts Options) *Assembler {
	if opts.PageSize == "" {
		opts.PageSize = "A4"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Verify {
		// pdfcpu must not create a configuration directory in the user's home
		disableConfigDir.Do(api.DisableConfigDir)
	}
	return &Assembler{opts: opts}
}

// Assemble builds the PDF. Each image is scaled to fit its page preserving
// aspect ratio, anchored to the top edge and centered horizontally.
func (a *Assembler) Assemble(ctx context.Context, pages []render.PageImage, meta render.Metadata) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	pdf := fpdf.New(meta.Orientation.Code(), "pt", a.opts.PageSize, "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetKeywords(meta.Keywords, true)
	pdf.SetCreator(meta.Creator, true)
	pdf.SetProducer(meta.Producer, true)

	pw, ph := pdf.GetPageSize()
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		imageType, err := imageType(p.Format)
		if err != nil {
			return nil, &render.PageError{Page: p.Number, Err: err}
		}
		if p.Width <= 0 || p.Height <= 0 {
			return nil, &render.PageError{Page: p.Number, Err: fmt.Errorf("invalid image size %dx%d", p.Width, p.Height)}
		}

		name := fmt.Sprintf("page-%d", p.Number)
		opt := fpdf.ImageOptions{ImageType: imageType}
		pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(p.Data))
		if pdf.Err() {
			return nil, &render.PageError{Page: p.Number, Err: pdf.Error()}
		}

		pdf.AddPage()
		w, h := fit(float64(p.Width), float64(p.Height), pw, ph)
		pdf.ImageOptions(name, (pw-w)/2, 0, w, h, false, opt, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	if a.opts.Verify {
		if err := verifyPageCount(buf.Bytes(), len(pages)); err != nil {
			return nil, err
		}
	}
	a.opts.Logger.Debug("pdf assembled", "pages", len(pages), "bytes", buf.Len(), "title", meta.Title)
	return buf.Bytes(), nil
}

func imageType(format string) (string, error) {
	switch format {
	case render.FormatJPEG:
		return "JPG", nil
	case render.FormatPNG:
		return "PNG", nil
	}
	return "", fmt.Errorf("unsupported page image format %q", format)
}

// fit scales w x h into maxW x maxH preserving aspect
func fit(w, h, maxW, maxH float64) (float64, float64) {
	scale := min(maxW/w, maxH/h)
	return w * scale, h * scale
}

// PageCount reads a PDF and returns its number of pages
func PageCount(data []byte) (int, error) {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	return n, nil
}

func verifyPageCount(data []byte, want int) error {
	got, err := PageCount(data)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("assembled PDF has %d pages, expected %d", got, want)
	}
	return nil
}
