// internal/pkg/upload/image.go
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
)

// MaxImageBytes caps menu item images
const MaxImageBytes = 5 << 20

var (
	ErrUnsupportedImage = errors.New("only jpeg and png images are accepted")
	ErrImageTooLarge    = errors.New("image is too large")
	ErrEmptyImage       = errors.New("image is empty")
)

var allowedExtensions = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
}

// ImageInfo describes a validated image
type ImageInfo struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int    `json:"size"`
}

// ValidateImage checks that content is a jpeg or png matching its file
// extension and no larger than maxBytes
func ValidateImage(filename string, content []byte, maxBytes int) (*ImageInfo, error) {
	if len(content) == 0 {
		return nil, ErrEmptyImage
	}
	if maxBytes > 0 && len(content) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(content))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	expected, ok := allowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil || format != expected {
		return nil, ErrUnsupportedImage
	}

	return &ImageInfo{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   len(content),
	}, nil
}
