// Package offerpdf generates paginated offer, invoice and quote documents
// from priced line items.
package offerpdf

import (
	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/lineitem"
	"github.com/gompdf/offerpdf/pkg/api"
)

type Generator = api.Generator
type Options = api.Options
type Option = api.Option
type PageOrientation = api.PageOrientation

type Request = document.Request
type Party = document.Party
type Terms = document.Terms
type Plan = document.Plan
type Page = document.Page
type TemplateType = document.TemplateType
type GenerationError = document.GenerationError
type RawItem = lineitem.Raw
type Item = lineitem.Item
type Field = lineitem.Field
type ValidationError = lineitem.ValidationError

func New() *Generator                           { return api.New() }
func NewWithOptions(options Options) *Generator { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }

var (
	WithLayout          = api.WithLayout
	WithPageOrientation = api.WithPageOrientation
	WithTemplate        = api.WithTemplate
	WithCurrency        = api.WithCurrency
	WithPageSize        = api.WithPageSize
	WithPageSizeA4      = api.WithPageSizeA4
	WithPageSizeLetter  = api.WithPageSizeLetter
	WithImageFormat     = api.WithImageFormat
	WithJPEGQuality     = api.WithJPEGQuality
	WithConcurrency     = api.WithConcurrency
	WithTimeout         = api.WithTimeout
	WithVerify          = api.WithVerify
	WithDebug           = api.WithDebug
	WithBaseURL         = api.WithBaseURL
	WithResourcePath    = api.WithResourcePath
	WithCreator         = api.WithCreator
	WithLogger          = api.WithLogger

	ErrEmptyInput = document.ErrEmptyInput
	KindOf        = document.KindOf
)

const (
	PageOrientationPortrait  = api.PageOrientationPortrait
	PageOrientationLandscape = api.PageOrientationLandscape

	TemplateOffer   = document.TemplateOffer
	TemplateInvoice = document.TemplateInvoice
	TemplateQuote   = document.TemplateQuote

	KindValidation = document.KindValidation
	KindEmptyInput = document.KindEmptyInput
	KindLayout     = document.KindLayout
)
