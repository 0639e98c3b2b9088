package raster

import (
	"bytes"
	"fmt"
	"image"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/gompdf/offerpdf/internal/res"
)

// decodeImage decodes a loaded image, rasterizing SVG documents to fit
// a w x h box.
func decodeImage(img *res.Image, w, h int) (image.Image, error) {
	if img.IsSVG() {
		return rasterizeSVG(img.Data, w, h)
	}
	src, _, err := image.Decode(img.Reader())
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", img.Ref, err)
	}
	return src, nil
}

func rasterizeSVG(data []byte, w, h int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}

	tw, th := float64(w), float64(h)
	if vb := icon.ViewBox; vb.W > 0 && vb.H > 0 {
		scale := min(tw/vb.W, th/vb.H)
		tw, th = vb.W*scale, vb.H*scale
	}
	pw, ph := max(1, int(tw)), max(1, int(th))

	rgba := image.NewRGBA(image.Rect(0, 0, pw, ph))
	icon.SetTarget(0, 0, float64(pw), float64(ph))
	scanner := rasterx.NewScannerGV(pw, ph, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(pw, ph, scanner), 1.0)
	return rgba, nil
}
