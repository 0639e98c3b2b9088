package api

import (
	"log/slog"
	"time"

	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/layout"
)

// Options represents configuration options for the document generator
type Options struct {
	// Pagination and canvas metrics
	Layout layout.Config
	// Page orientation: portrait or landscape. Requests may override it.
	PageOrientation PageOrientation
	// Template used when a request names none
	Template document.TemplateType
	// Currency used when a request names none
	Currency string

	// PDF page size name understood by fpdf ("A4", "Letter", ...)
	PageSize string
	// Page image encoding: "jpeg" or "png"
	ImageFormat string
	JPEGQuality int

	// Maximum number of pages rendered at once
	Concurrency int
	// Upper bound for a whole generation, zero means none
	Timeout time.Duration
	// Re-read assembled PDFs and check their page count
	Verify bool

	Debug bool

	// Resource resolution for product images and logos
	BaseURL       string
	ResourcePaths []string

	// Document metadata
	Creator string

	Logger *slog.Logger
}

// Option is a function that modifies Options
type Option func(*Options)

// PageOrientation represents page orientation
type PageOrientation string

const (
	// PageOrientationPortrait sets the page to portrait orientation
	PageOrientationPortrait PageOrientation = "portrait"
	// PageOrientationLandscape sets the page to landscape orientation
	PageOrientationLandscape PageOrientation = "landscape"
)

// Page size names
const (
	PageSizeA4     = "A4"
	PageSizeLetter = "Letter"
	PageSizeLegal  = "Legal"
)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		Layout:          layout.DefaultConfig(),
		PageOrientation: PageOrientationPortrait,
		Template:        document.TemplateOffer,
		Currency:        document.DefaultCurrency,

		PageSize:    PageSizeA4,
		ImageFormat: "jpeg",
		JPEGQuality: 92,

		Concurrency: 4,
		Timeout:     2 * time.Minute,
		Verify:      true,

		Debug: false,

		ResourcePaths: []string{},

		Creator: "offerpdf",
	}
}

// WithLayout replaces the layout configuration
func WithLayout(cfg layout.Config) Option {
	return func(o *Options) {
		o.Layout = cfg
	}
}

// WithPageOrientation sets the page orientation
func WithPageOrientation(orientation PageOrientation) Option {
	return func(o *Options) {
		o.PageOrientation = orientation
	}
}

// WithTemplate sets the default document template
func WithTemplate(t document.TemplateType) Option {
	return func(o *Options) {
		o.Template = t
	}
}

// WithCurrency sets the default currency
func WithCurrency(currency string) Option {
	return func(o *Options) {
		o.Currency = currency
	}
}

// WithPageSize sets the PDF page size by name
func WithPageSize(name string) Option {
	return func(o *Options) {
		o.PageSize = name
	}
}

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetter)
}

// WithImageFormat sets the page image encoding
func WithImageFormat(format string) Option {
	return func(o *Options) {
		o.ImageFormat = format
	}
}

// WithJPEGQuality sets the JPEG quality of page images
func WithJPEGQuality(q int) Option {
	return func(o *Options) {
		o.JPEGQuality = q
	}
}

// WithConcurrency limits how many pages are rendered at once
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// WithTimeout bounds a whole generation
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithVerify toggles page count verification of assembled PDFs
func WithVerify(verify bool) Option {
	return func(o *Options) {
		o.Verify = verify
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithBaseURL sets the directory or URL relative image references resolve against
func WithBaseURL(base string) Option {
	return func(o *Options) {
		o.BaseURL = base
	}
}

// WithResourcePath adds a path to search for images
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithCreator sets the creator written into PDF metadata
func WithCreator(creator string) Option {
	return func(o *Options) {
		o.Creator = creator
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
