// Package imaging implements the punch pipeline's image-normalization and
// keying steps (spec.md §4.4 steps 1 and 5): EXIF-orientation correction,
// padded face crops re-encoded to a fixed size, and deterministic storage
// keys.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

const cropSize = 600

// Normalize decodes a JPEG/PNG image and applies its EXIF orientation tag
// so downstream face detection always sees an upright image.
func Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return encodeJPEG(img)
}

// CropFace extracts the region around a detected face with 25% padding on
// every side, clamped to the source bounds, then resizes it to a fixed
// 600x600 square for the face-match service (spec.md §4.4 group-mode step).
func CropFace(data []byte, x, y, w, h int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	padX := int(float64(w) * 0.25)
	padY := int(float64(h) * 0.25)

	bounds := img.Bounds()
	x0 := clamp(x-padX, bounds.Min.X, bounds.Max.X)
	y0 := clamp(y-padY, bounds.Min.Y, bounds.Max.Y)
	x1 := clamp(x+w+padX, bounds.Min.X, bounds.Max.X)
	y1 := clamp(y+h+padY, bounds.Min.Y, bounds.Max.Y)

	cropped := imaging.Crop(img, image.Rect(x0, y0, x1, y1))
	resized := imaging.Resize(cropped, cropSize, cropSize, imaging.Lanczos)

	return encodeJPEG(resized)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases a name and collapses runs of non-alphanumerics to a
// single hyphen, for use in storage keys.
func Slug(s string) string {
	lowered := strings.ToLower(s)
	slug := slugPattern.ReplaceAllString(lowered, "-")
	return strings.Trim(slug, "-")
}

// StoreKey builds the deterministic punch-image key
// YYYY/MM/DD/<emp-slug>/<location-slug>/<punch>_<capture-ts>_<location-slug>.jpg
// (spec.md §4.4 step 5).
func StoreKey(captureTime time.Time, punchType, empCode, employeeName, locationName string) string {
	empSlug := Slug(empCode)
	if empSlug == "" {
		empSlug = Slug(employeeName)
	}
	locSlug := Slug(locationName)
	if locSlug == "" {
		locSlug = "unknown"
	}

	return fmt.Sprintf("%04d/%02d/%02d/%s/%s/%s_%d_%s.jpg",
		captureTime.Year(), captureTime.Month(), captureTime.Day(),
		empSlug, locSlug,
		strings.ToLower(punchType), captureTime.Unix(), locSlug,
	)
}
