package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Document is the backend-ready form of one upload: the (possibly downscaled)
// image bytes plus the PDF text layer when the upload carried one. The text
// is only consulted by the local fallback backend.
type Document struct {
	Image    []byte
	MIMEType string
	Text     string
	Filename string
}

// DownscaleImage caps the longest side of an image at maxDim pixels and
// re-encodes it as JPEG. Images already within bounds are returned as-is.
// This is a cost/latency policy for backend calls, not a correctness need.
func DownscaleImage(data []byte, mimeType string, maxDim int) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if maxDim <= 0 || longest <= maxDim {
		return data, mimeType, nil
	}

	scale := float64(maxDim) / float64(longest)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, "", fmt.Errorf("failed to encode downscaled image: %w", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}

// EncodeJPEG renders a decoded image to JPEG bytes.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
