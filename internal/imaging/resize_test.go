package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return DataURI("image/png", buf.Bytes())
}

func jpegDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return DataURI("image/jpeg", buf.Bytes())
}

// oversizedPNGDataURI returns a small PNG whose header claims w x h pixels.
func oversizedPNGDataURI(t *testing.T, w, h uint32) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	data := buf.Bytes()
	// signature(8) | length(4) | "IHDR" | width(4) height(4) ... | crc over type+data
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return DataURI("image/png", data)
}

func TestResize_RejectsOversizedSource(t *testing.T) {
	for _, size := range [][2]uint32{{12000, 12000}, {maxCanvasSide + 1, 10}, {10, maxCanvasSide + 1}} {
		uri := oversizedPNGDataURI(t, size[0], size[1])
		_, err := Resize(uri, 1280, 720)
		if !errors.Is(err, ErrImageDecode) {
			t.Errorf("%dx%d: err = %v, want ErrImageDecode", size[0], size[1], err)
		}
	}
}

func TestResize_ExactDimensions(t *testing.T) {
	sources := []struct {
		name string
		uri  string
	}{
		{"16:9 jpeg", jpegDataURI(t, 320, 180)},
		{"square png", pngDataURI(t, 64, 64)},
		{"portrait png", pngDataURI(t, 90, 160)},
		{"larger than target", jpegDataURI(t, 1600, 1000)},
	}
	for _, src := range sources {
		t.Run(src.name, func(t *testing.T) {
			out, err := Resize(src.uri, 1280, 720)
			if err != nil {
				t.Fatalf("Resize: %v", err)
			}
			if !strings.HasPrefix(out, "data:image/jpeg;base64,") {
				t.Fatalf("unexpected prefix: %.40s", out)
			}
			mime, data, err := ParseDataURI(out)
			if err != nil {
				t.Fatalf("ParseDataURI: %v", err)
			}
			if mime != "image/jpeg" {
				t.Errorf("mime = %s", mime)
			}
			cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("DecodeConfig: %v", err)
			}
			if format != "jpeg" {
				t.Errorf("format = %s, want jpeg", format)
			}
			if cfg.Width != 1280 || cfg.Height != 720 {
				t.Errorf("size = %dx%d, want 1280x720", cfg.Width, cfg.Height)
			}
		})
	}
}

func TestResize_DecodeError(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"not a data uri", "https://example.com/a.jpg"},
		{"bad base64", "data:image/jpeg;base64,@@@"},
		{"not an image", DataURI("image/jpeg", []byte("PLACEHOLDER_IMAGE_DATA"))},
		{"empty payload", "data:image/jpeg;base64,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resize(tt.uri, 1280, 720)
			if !errors.Is(err, ErrImageDecode) {
				t.Errorf("err = %v, want ErrImageDecode", err)
			}
		})
	}
}

func TestResize_InvalidCanvas(t *testing.T) {
	src := pngDataURI(t, 8, 8)
	for _, size := range [][2]int{{0, 720}, {1280, 0}, {-1, 10}, {maxCanvasSide + 1, 10}} {
		_, err := Resize(src, size[0], size[1])
		if !errors.Is(err, ErrCanvasUnavailable) {
			t.Errorf("Resize(%dx%d) err = %v, want ErrCanvasUnavailable", size[0], size[1], err)
		}
	}
}

func TestParseDataURI(t *testing.T) {
	uri := DataURI("image/png", []byte{1, 2, 3})
	mime, data, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("ParseDataURI: %v", err)
	}
	if mime != "image/png" || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("got %s %v", mime, data)
	}

	if _, _, err := ParseDataURI("data:image/png,rawtext"); err == nil {
		t.Error("expected error for non-base64 data URI")
	}
}

func TestDownloadFilename(t *testing.T) {
	if got := DownloadFilename(1280, 720, "MrBeast"); got != "youtube-thumbnail-1280x720-mrbeast.jpg" {
		t.Errorf("got %s", got)
	}
	if got := DownloadFilename(640, 360, "Documentary"); got != "youtube-thumbnail-640x360-documentary.jpg" {
		t.Errorf("got %s", got)
	}
}
