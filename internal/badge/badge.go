// Package badge renders delegate badges as PNG images. The badge carries a
// QR code whose payload identifies the delegate for venue check-in scanners.
package badge

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"summit/internal/delegate/models"
)

const (
	qrSize       = 256
	canvasWidth  = 320
	canvasHeight = 344

	// Captions longer than this are truncated so they never overflow the
	// canvas at 7px per glyph.
	maxCaptionLen = 40
)

// Renderer composes QR badges. Stateless and safe for concurrent use.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render builds the badge PNG for a delegate snapshot. The QR payload is
// "<delegateID>|<eventYear>", which the check-in scanner splits to resolve
// the delegate.
func (r *Renderer) Render(ctx context.Context, d *models.Delegate) ([]byte, error) {
	payload := fmt.Sprintf("%s|%d", d.ID.String(), d.EventYear)
	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("generate badge qr code: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	qrImage := qr.Image(qrSize)
	qrOrigin := image.Pt((canvasWidth-qrSize)/2, 16)
	draw.Draw(canvas, image.Rectangle{Min: qrOrigin, Max: qrOrigin.Add(image.Pt(qrSize, qrSize))},
		qrImage, qrImage.Bounds().Min, draw.Over)

	drawCaption(canvas, truncate(d.FullName(), maxCaptionLen), 16+qrSize+24)
	drawCaption(canvas, fmt.Sprintf("Summit %d", d.EventYear), 16+qrSize+44)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode badge png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawCaption draws a line of text horizontally centered at baseline y.
func drawCaption(dst draw.Image, text string, y int) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: basicfont.Face7x13,
	}
	width := drawer.MeasureString(text)
	drawer.Dot = fixed.Point26_6{
		X: (fixed.I(canvasWidth) - width) / 2,
		Y: fixed.I(y),
	}
	drawer.DrawString(text)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
