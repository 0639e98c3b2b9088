package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/layout"
	"github.com/gompdf/offerpdf/internal/pagination"
	"github.com/gompdf/offerpdf/internal/render"
	rhtml "github.com/gompdf/offerpdf/internal/render/html"
	"github.com/gompdf/offerpdf/internal/render/pdf"
	"github.com/gompdf/offerpdf/internal/render/raster"
	"github.com/gompdf/offerpdf/internal/res"
)

// DateFormat is used for the default document date
const DateFormat = "2006-01-02"

// Generator is the main API for turning offer requests into documents
type Generator struct {
	options Options
	logger  *slog.Logger

	planner   *document.Planner
	pages     render.PageRenderer
	assembler render.Assembler
	preview   *rhtml.Renderer

	// set when the options cannot produce a working pipeline
	initErr error
	now     func() time.Time
}

// New creates a new generator with default options
func New() *Generator {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a new generator with the specified options.
// Invalid options are reported by the first call that needs them.
func NewWithOptions(options Options) *Generator {
	g := &Generator{
		options: options,
		logger:  newLogger(options),
		preview: rhtml.NewRenderer(),
		now:     time.Now,
	}

	cfg := options.Layout
	if options.PageOrientation != "" {
		o, err := layout.ParseOrientation(string(options.PageOrientation))
		if err != nil {
			g.initErr = fmt.Errorf("invalid options: %w", err)
			return g
		}
		cfg = cfg.WithOrientation(o)
	}
	if err := cfg.Validate(); err != nil {
		g.initErr = fmt.Errorf("invalid layout configuration: %w", err)
		return g
	}
	g.planner = document.NewPlanner(cfg)

	loader := res.NewLoader(options.BaseURL)
	for _, path := range options.ResourcePaths {
		loader.AddSearchPath(path)
	}

	pages, err := raster.New(raster.Options{
		Layout:      cfg,
		Format:      options.ImageFormat,
		JPEGQuality: options.JPEGQuality,
		Loader:      loader,
		Logger:      g.logger,
	})
	if err != nil {
		g.initErr = err
		return g
	}
	g.pages = pages
	g.assembler = pdf.NewAssembler(pdf.Options{
		Verify:   options.Verify,
		PageSize: options.PageSize,
		Logger:   g.logger,
	})
	return g
}

func newLogger(options Options) *slog.Logger {
	if options.Logger != nil {
		return options.Logger
	}
	level := slog.LevelInfo
	if options.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Options returns a copy of the generator options
func (g *Generator) Options() Options {
	o := g.options
	o.ResourcePaths = slices.Clone(o.ResourcePaths)
	return o
}

// prepare applies generator defaults to fields the request leaves empty
func (g *Generator) prepare(req document.Request) document.Request {
	if strings.TrimSpace(string(req.Template)) == "" {
		req.Template = g.options.Template
	}
	if strings.TrimSpace(req.Currency) == "" {
		req.Currency = g.options.Currency
	}
	if strings.TrimSpace(req.Date) == "" {
		req.Date = g.now().Format(DateFormat)
	}
	return req
}

// Plan validates the request and plans its pages without rendering
func (g *Generator) Plan(req document.Request) (*document.Plan, error) {
	if g.initErr != nil {
		return nil, g.initErr
	}
	return g.planner.Build(g.prepare(req))
}

// Estimate returns a quick fixed-capacity page estimate for count items.
// An empty orientation uses the generator default. Plan is authoritative.
func (g *Generator) Estimate(count int, orientation string) (pagination.Estimate, error) {
	if g.initErr != nil {
		return pagination.Estimate{}, g.initErr
	}
	cfg := g.planner.Layout()
	if orientation != "" {
		o, err := layout.ParseOrientation(orientation)
		if err != nil {
			return pagination.Estimate{}, err
		}
		cfg = cfg.WithOrientation(o)
	}
	return pagination.OptimalLayout(count, cfg.Metrics()), nil
}

// Generate renders the request as a PDF and writes it to w
func (g *Generator) Generate(ctx context.Context, req document.Request, w io.Writer) error {
	data, err := g.GenerateBytes(ctx, req)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write PDF to output: %w", err)
	}
	return nil
}

// GenerateBytes renders the request as PDF bytes
func (g *Generator) GenerateBytes(ctx context.Context, req document.Request) ([]byte, error) {
	start := g.now()
	plan, err := g.Plan(req)
	if err != nil {
		return nil, err
	}

	if g.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.options.Timeout)
		defer cancel()
	}

	log := g.logger.With("title", plan.Title, "pages", plan.PageCount())
	log.Debug("rendering document", "orientation", plan.Orientation, "template", plan.Template.Type)

	images, err := g.renderPages(ctx, plan)
	if err != nil {
		log.Error("rendering failed", "error", err)
		return nil, fmt.Errorf("failed to render pages: %w", err)
	}

	data, err := g.assembler.Assemble(ctx, images, render.MetadataFor(plan, g.options.Creator))
	if err != nil {
		log.Error("assembly failed", "error", err)
		return nil, fmt.Errorf("failed to assemble PDF: %w", err)
	}

	log.Info("document generated", "bytes", len(data), "duration", time.Since(start).String())
	return data, nil
}

// renderPages rasterizes every page, at most Concurrency at a time.
// Images are returned in page order.
func (g *Generator) renderPages(ctx context.Context, plan *document.Plan) ([]render.PageImage, error) {
	images := make([]render.PageImage, len(plan.Pages))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, g.options.Concurrency))
	for i, page := range plan.Pages {
		i, page := i, page
		eg.Go(func() error {
			img, err := g.pages.RenderPage(gctx, page)
			if err != nil {
				return &render.PageError{Page: page.Number, Err: err}
			}
			images[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// GenerateFile renders the request and writes the PDF to outputPath,
// creating missing directories.
func (g *Generator) GenerateFile(ctx context.Context, req document.Request, outputPath string) error {
	data, err := g.GenerateBytes(ctx, req)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write PDF file: %w", err)
	}
	return nil
}

// Preview writes an HTML rendition of the request to w
func (g *Generator) Preview(ctx context.Context, req document.Request, w io.Writer) error {
	plan, err := g.Plan(req)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := g.preview.Render(ctx, plan, &buf); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// FileName returns the download name for the request's document,
// e.g. "Offer_OF-2026-001.pdf".
func (g *Generator) FileName(req document.Request) string {
	req = g.prepare(req)
	return render.FileName(document.LookupTemplate(req.Template).Label, req.Number)
}

// WithOptions returns a new generator with the specified options
func (g *Generator) WithOptions(options Options) *Generator {
	return NewWithOptions(options)
}

// WithOption returns a new generator with the specified option set
func (g *Generator) WithOption(option Option) *Generator {
	newOptions := g.Options()
	option(&newOptions)
	return NewWithOptions(newOptions)
}

// SetDebug sets the debug mode
func (g *Generator) SetDebug(debug bool) *Generator {
	return g.WithOption(WithDebug(debug))
}

// SetOrientation sets the default page orientation
func (g *Generator) SetOrientation(orientation PageOrientation) *Generator {
	return g.WithOption(WithPageOrientation(orientation))
}

// SetTemplate sets the default template
func (g *Generator) SetTemplate(t document.TemplateType) *Generator {
	return g.WithOption(WithTemplate(t))
}

// AddResourcePath adds a path to search for images
func (g *Generator) AddResourcePath(path string) *Generator {
	return g.WithOption(WithResourcePath(path))
}
