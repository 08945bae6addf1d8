// Package imaging re-encodes generated thumbnails to their final size.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// JPEGQuality is the re-encode quality for resized thumbnails.
	JPEGQuality = 95

	// maxCanvasSide bounds a single dimension of both the source and the target image.
	maxCanvasSide = 8192
)

var (
	// ErrImageDecode is returned when the source image cannot be loaded.
	ErrImageDecode = errors.New("image failed to load for resizing")
	// ErrCanvasUnavailable is returned when no canvas of the requested size can be allocated.
	ErrCanvasUnavailable = errors.New("could not get canvas context")
)

// Resize scales the image in dataURI to exactly width x height and returns it
// as a JPEG data URI. The source aspect ratio is not preserved.
func Resize(dataURI string, width, height int) (string, error) {
	if width <= 0 || height <= 0 || width > maxCanvasSide || height > maxCanvasSide {
		return "", fmt.Errorf("%w: invalid size %dx%d", ErrCanvasUnavailable, width, height)
	}

	_, data, err := ParseDataURI(dataURI)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxCanvasSide || cfg.Height > maxCanvasSide {
		return "", fmt.Errorf("%w: source size %dx%d exceeds %d", ErrImageDecode, cfg.Width, cfg.Height, maxCanvasSide)
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}

	log.Debug().
		Str("source_format", format).
		Str("source_size", fmt.Sprintf("%dx%d", src.Bounds().Dx(), src.Bounds().Dy())).
		Str("target_size", fmt.Sprintf("%dx%d", width, height)).
		Int("bytes", buf.Len()).
		Msg("Image resized")

	return DataURI("image/jpeg", buf.Bytes()), nil
}
