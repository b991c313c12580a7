package imageprocessor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnail_KeepsAspectRatio(t *testing.T) {
	p := NewProcessor(80)

	res, err := p.Thumbnail(pngBytes(t, 600, 300))
	require.NoError(t, err)

	assert.Equal(t, 150, res.Width)
	assert.Equal(t, 75, res.Height)
	assert.Equal(t, "image/png", res.ContentType)

	w, h, err := GetImageDimensions(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 150, w)
	assert.Equal(t, 75, h)
}

func TestThumbnail_DoesNotUpscale(t *testing.T) {
	res, err := NewProcessor(0).Thumbnail(pngBytes(t, 40, 20))
	require.NoError(t, err)
	assert.Equal(t, 40, res.Width)
	assert.Equal(t, 20, res.Height)
}

func TestProcessImage_ToJPEG(t *testing.T) {
	res, err := NewProcessor(90).ProcessImage(bytes.NewReader(pngBytes(t, 1000, 1000)), SizeAvatar, "jpeg")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", res.Ext)
	assert.Equal(t, 512, res.Width)
}

func TestIsValidImage(t *testing.T) {
	assert.True(t, IsValidImage(bytes.NewReader(pngBytes(t, 2, 2))))
	assert.False(t, IsValidImage(bytes.NewReader([]byte("not an image"))))
}
