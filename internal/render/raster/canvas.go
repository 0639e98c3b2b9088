package raster

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gompdf/offerpdf/internal/text"
)

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regularFont, fontsErr = opentype.Parse(goregular.TTF)
		if fontsErr != nil {
			return
		}
		boldFont, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

// faces holds the font faces of one page. Faces cache glyphs and are not
// safe for concurrent use, so every page gets its own set.
type faces struct {
	title   font.Face
	heading font.Face
	body    font.Face
	bold    font.Face
	small   font.Face
	desc    font.Face
}

func newFaces() (*faces, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("failed to parse fonts: %w", err)
	}

	f := &faces{}
	sizes := []struct {
		dst  *font.Face
		src  *opentype.Font
		size float64
	}{
		{&f.title, boldFont, 22},
		{&f.heading, boldFont, 13},
		{&f.body, regularFont, 12},
		{&f.bold, boldFont, 12},
		{&f.small, regularFont, 10},
		{&f.desc, regularFont, 9},
	}
	for _, s := range sizes {
		face, err := opentype.NewFace(s.src, &opentype.FaceOptions{
			Size:    s.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create font face: %w", err)
		}
		*s.dst = face
	}
	return f, nil
}

func (f *faces) Close() {
	for _, face := range []font.Face{f.title, f.heading, f.body, f.bold, f.small, f.desc} {
		if face != nil {
			face.Close()
		}
	}
}

var (
	white     = color.RGBA{255, 255, 255, 255}
	ink       = color.RGBA{17, 24, 39, 255}
	muted     = color.RGBA{107, 114, 128, 255}
	rule      = color.RGBA{229, 231, 235, 255}
	band      = color.RGBA{243, 244, 246, 255}
	fallbackC = color.RGBA{220, 38, 38, 255}
)

// canvas draws text, rules and images onto one page bitmap
type canvas struct {
	img *image.RGBA
}

func newCanvas(w, h int) *canvas {
	c := &canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
	c.fill(c.img.Bounds(), white)
	return c
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) hline(x0, x1, y int, col color.Color) {
	c.fill(image.Rect(x0, y, x1, y+1), col)
}

// text draws s with its top edge at top and returns the advance width
func (c *canvas) text(face font.Face, x, top int, s string, col color.Color) int {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
	return (d.Dot.X - fixed.I(x)).Ceil()
}

// textRight draws s right-aligned against right
func (c *canvas) textRight(face font.Face, right, top int, s string, col color.Color) {
	w := font.MeasureString(face, s).Ceil()
	c.text(face, right-w, top, s, col)
}

// image draws src into r, scaled to fit and centered, preserving aspect
func (c *canvas) image(src image.Image, r image.Rectangle) {
	sb := src.Bounds()
	if sb.Empty() || r.Empty() {
		return
	}
	scale := min(float64(r.Dx())/float64(sb.Dx()), float64(r.Dy())/float64(sb.Dy()))
	w := max(1, int(float64(sb.Dx())*scale))
	h := max(1, int(float64(sb.Dy())*scale))
	x := r.Min.X + (r.Dx()-w)/2
	y := r.Min.Y + (r.Dy()-h)/2
	draw.CatmullRom.Scale(c.img, image.Rect(x, y, x+w, y+h), src, sb, draw.Over, nil)
}

// lineHeight returns the distance between baselines for face
func lineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil()
}

// measurer adapts a font face to text.Measurer
func measurer(face font.Face) text.Measurer {
	return text.MeasureFunc(func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	})
}

// parseColor parses a template colour, falling back to the offer red
func parseColor(value string) color.RGBA {
	if r, g, b, ok := parseHexColor(value); ok {
		return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
	}
	return fallbackC
}

// parseHexColor parses #RRGGBB or #RGB into r,g,b
func parseHexColor(s string) (int, int, int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
