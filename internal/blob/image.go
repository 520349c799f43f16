package blob

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	// maxLongEdge bounds uploaded images; anything larger gets scaled
	// down before storage so badges and profile views stay cheap.
	maxLongEdge = 1024

	jpegQuality = 85
)

// NormalizeImage re-encodes a supported image (JPEG, PNG, WebP) to JPEG
// with its long edge bounded to 1024px, and returns the bytes plus the
// resulting content type. Unsupported payloads (PDFs, plain files) pass
// through untouched with their sniffed content type.
func NormalizeImage(data []byte) ([]byte, string, error) {
	detected := http.DetectContentType(data)

	var (
		img image.Image
		err error
	)
	switch detected {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	case "image/webp":
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		return data, detected, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("decode %s image: %w", detected, err)
	}

	img = boundLongEdge(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// boundLongEdge scales the image down so its longer side is at most
// maxLongEdge pixels, preserving aspect ratio. Smaller images are
// returned as-is; nothing is ever upscaled.
func boundLongEdge(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	long := max(w, h)
	if long <= maxLongEdge {
		return img
	}

	scale := float64(maxLongEdge) / float64(long)
	nw := max(int(float64(w)*scale+0.5), 1)
	nh := max(int(float64(h)*scale+0.5), 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}
