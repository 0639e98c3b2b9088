package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Orientation represents page orientation
type Orientation string

const (
	// Portrait is the default orientation
	Portrait Orientation = "portrait"
	// Landscape swaps page width and height
	Landscape Orientation = "landscape"
)

// ParseOrientation maps user input to an Orientation. Empty input means portrait.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "portrait", "p":
		return Portrait, nil
	case "landscape", "l":
		return Landscape, nil
	}
	return "", fmt.Errorf("unknown orientation %q", s)
}

// Code returns the single-letter orientation code used by PDF writers
func (o Orientation) Code() string {
	if o == Landscape {
		return "L"
	}
	return "P"
}

// Metrics holds the declared height model for one orientation, in layout units.
type Metrics struct {
	// Height of an item row without description
	RowHeight float64 `yaml:"rowHeight" json:"rowHeight"`
	// Added per description line
	LineIncrement float64 `yaml:"lineIncrement" json:"lineIncrement"`
	// Page capacity
	MaxPageHeight float64 `yaml:"maxPageHeight" json:"maxPageHeight"`

	// Fixed-capacity estimate used by OptimalLayout
	ProductsPerPage int `yaml:"productsPerPage" json:"productsPerPage"`
	// Thumbnail edge in pixels
	ImageSize float64 `yaml:"imageSize" json:"imageSize"`

	// Render canvas in pixels
	PixelWidth  int `yaml:"pixelWidth" json:"pixelWidth"`
	PixelHeight int `yaml:"pixelHeight" json:"pixelHeight"`
}

// Config is the layout configuration shared by the estimator and the planner.
// A Config is read-only once handed to a planner.
type Config struct {
	Orientation Orientation `yaml:"orientation" json:"orientation"`
	// Space reserved for the header and margins on every page
	HeaderAllowance float64 `yaml:"headerAllowance" json:"headerAllowance"`
	Portrait        Metrics `yaml:"portrait" json:"portrait"`
	Landscape       Metrics `yaml:"landscape" json:"landscape"`
}

// DefaultConfig returns the default layout configuration
func DefaultConfig() Config {
	return Config{
		Orientation:     Portrait,
		HeaderAllowance: 200,
		Portrait: Metrics{
			RowHeight:       120,
			LineIncrement:   8,
			MaxPageHeight:   1100,
			ProductsPerPage: 3,
			ImageSize:       60,
			PixelWidth:      794,
			PixelHeight:     1123,
		},
		Landscape: Metrics{
			RowHeight:       90,
			LineIncrement:   8,
			MaxPageHeight:   800,
			ProductsPerPage: 6,
			ImageSize:       50,
			PixelWidth:      1123,
			PixelHeight:     794,
		},
	}
}

// WithOrientation returns a copy of c using orientation o
func (c Config) WithOrientation(o Orientation) Config {
	c.Orientation = o
	return c
}

// Metrics returns the metrics for the configured orientation
func (c Config) Metrics() Metrics {
	return c.MetricsFor(c.Orientation)
}

// MetricsFor returns the metrics for orientation o
func (c Config) MetricsFor(o Orientation) Metrics {
	if o == Landscape {
		return c.Landscape
	}
	return c.Portrait
}

// Validate checks that the configuration can drive pagination
func (c Config) Validate() error {
	var errs []error
	if _, err := ParseOrientation(string(c.Orientation)); err != nil {
		errs = append(errs, err)
	}
	if c.HeaderAllowance < 0 {
		errs = append(errs, fmt.Errorf("header allowance must not be negative, got %v", c.HeaderAllowance))
	}
	for _, o := range []Orientation{Portrait, Landscape} {
		m := c.MetricsFor(o)
		if m.RowHeight <= 0 {
			errs = append(errs, fmt.Errorf("%s: row height must be positive, got %v", o, m.RowHeight))
		}
		if m.LineIncrement < 0 {
			errs = append(errs, fmt.Errorf("%s: line increment must not be negative, got %v", o, m.LineIncrement))
		}
		if m.MaxPageHeight <= 0 {
			errs = append(errs, fmt.Errorf("%s: max page height must be positive, got %v", o, m.MaxPageHeight))
		}
	}
	return errors.Join(errs...)
}
