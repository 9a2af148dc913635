package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugLowercasesAndCollapsesSeparators(t *testing.T) {
	assert.Equal(t, "e-100", Slug("E 100"))
	assert.Equal(t, "north-zone-main-gate", Slug("North Zone / Main Gate!!"))
	assert.Equal(t, "", Slug("***"))
}

func TestStoreKeyUsesEmpCodeWhenPresent(t *testing.T) {
	ts := time.Date(2026, 7, 30, 9, 15, 0, 0, time.UTC)
	key := StoreKey(ts, "IN", "E100", "Alice Example", "Main Gate")

	assert.Contains(t, key, "2026/07/30/e100/main-gate/in_")
	assert.Contains(t, key, ".jpg")
}

func TestStoreKeyFallsBackToEmployeeNameWhenCodeEmpty(t *testing.T) {
	ts := time.Date(2026, 7, 30, 9, 15, 0, 0, time.UTC)
	key := StoreKey(ts, "OUT", "", "Bob Builder", "North Gate")

	assert.Contains(t, key, "bob-builder/north-gate/out_")
}

func TestStoreKeyFallsBackToUnknownLocation(t *testing.T) {
	ts := time.Date(2026, 7, 30, 9, 15, 0, 0, time.UTC)
	key := StoreKey(ts, "IN", "E100", "Alice", "***")

	assert.Contains(t, key, "/unknown/")
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestNormalizeReencodesValidImage(t *testing.T) {
	out, err := Normalize(testJPEG(t, 40, 40))
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, decoded.Bounds().Dx())
}

func TestNormalizeRejectsGarbageInput(t *testing.T) {
	_, err := Normalize([]byte("not an image"))
	assert.Error(t, err)
}

func TestCropFaceProducesFixedSizeSquare(t *testing.T) {
	out, err := CropFace(testJPEG(t, 200, 200), 50, 50, 60, 60)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, cropSize, decoded.Bounds().Dx())
	assert.Equal(t, cropSize, decoded.Bounds().Dy())
}

func TestCropFaceClampsPaddingToSourceBounds(t *testing.T) {
	// Face box in a corner; padded box would overflow without clamping.
	out, err := CropFace(testJPEG(t, 100, 100), 0, 0, 20, 20)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, cropSize, decoded.Bounds().Dx())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-5, 0, 10))
	assert.Equal(t, 10, clamp(15, 0, 10))
	assert.Equal(t, 5, clamp(5, 0, 10))
}
