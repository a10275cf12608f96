package upload

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
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	content := pngBytes(t, 4, 3)

	info, err := ValidateImage("latte.PNG", content, MaxImageBytes)
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 4, info.Width)
	assert.Equal(t, 3, info.Height)
}

func TestValidateImageRejects(t *testing.T) {
	content := pngBytes(t, 2, 2)

	tests := []struct {
		name     string
		filename string
		content  []byte
		max      int
		want     error
	}{
		{"empty", "a.png", nil, MaxImageBytes, ErrEmptyImage},
		{"too large", "a.png", content, 10, ErrImageTooLarge},
		{"extension", "a.gif", content, MaxImageBytes, ErrUnsupportedImage},
		{"mismatched format", "a.jpg", content, MaxImageBytes, ErrUnsupportedImage},
		{"not an image", "a.png", []byte("hello"), MaxImageBytes, ErrUnsupportedImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateImage(tt.filename, tt.content, tt.max)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
