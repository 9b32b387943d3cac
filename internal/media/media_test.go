package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestEncodeDataURL(t *testing.T) {
	data := pngBytes(t, 3, 2)

	got, err := EncodeDataURL(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(got, prefix) {
		t.Fatalf("expected png data url, got %q", got[:30])
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, prefix))
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Fatal("decoded payload does not match input")
	}
	if !IsDataURL(got) {
		t.Fatal("expected IsDataURL to recognise the result")
	}
}

func TestEncodeDataURLPropagatesReadErrors(t *testing.T) {
	if _, err := EncodeDataURL(failingReader{}); err == nil {
		t.Fatal("expected read error")
	}
}

func TestDataURLPlainText(t *testing.T) {
	got := DataURL([]byte("hello"))
	if !strings.HasPrefix(got, "data:text/plain;base64,") {
		t.Fatalf("expected charset parameter to be stripped, got %q", got)
	}
}

func TestDimensions(t *testing.T) {
	w, h, err := Dimensions(pngBytes(t, 40, 25))
	if err != nil {
		t.Fatalf("dimensions failed: %v", err)
	}
	if w != 40 || h != 25 {
		t.Fatalf("expected 40x25, got %dx%d", w, h)
	}

	if _, _, err := Dimensions([]byte("not an image")); err == nil {
		t.Fatal("expected error for non-image content")
	}
}

func TestDetectImage(t *testing.T) {
	mime, ext, err := DetectImage(pngBytes(t, 1, 1))
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if mime != "image/png" || ext != ".png" {
		t.Fatalf("unexpected detection %q %q", mime, ext)
	}

	if _, _, err := DetectImage([]byte("%PDF-1.4")); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}
