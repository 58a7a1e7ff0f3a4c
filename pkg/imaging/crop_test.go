package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	return img
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestCropWiderThanTarget(t *testing.T) {
	// 1200x800 (ratio 1.5) to 0.75: crop width 800*0.75=600, offset 300,
	// full height kept.
	out, err := CropToAspectRatio(testImage(1200, 800), 0.75)
	if err != nil {
		t.Fatalf("crop failed: %v", err)
	}

	b := out.Bounds()
	if b.Dx() != 600 || b.Dy() != 800 {
		t.Errorf("expected 600x800, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestCropTallerThanTarget(t *testing.T) {
	// 800x1200 (ratio ~0.667) to 1.0: crop height 800, symmetric vertical
	// offset, full width kept.
	out, err := CropToAspectRatio(testImage(800, 1200), 1.0)
	if err != nil {
		t.Fatalf("crop failed: %v", err)
	}

	b := out.Bounds()
	if b.Dx() != 800 || b.Dy() != 800 {
		t.Errorf("expected 800x800, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestCropIdempotentWithinTolerance(t *testing.T) {
	img := testImage(600, 800)

	out, err := CropToAspectRatio(img, 0.75)
	if err != nil {
		t.Fatalf("crop failed: %v", err)
	}
	if out != img {
		t.Error("expected the source image back unchanged")
	}

	// Slightly off ratio but within the 0.01 tolerance.
	img = testImage(604, 800)
	out, err = CropToAspectRatio(img, 0.75)
	if err != nil {
		t.Fatalf("crop failed: %v", err)
	}
	if out != img {
		t.Error("expected tolerance to skip the crop")
	}
}

func TestCropPreservesPixels(t *testing.T) {
	src := testImage(1200, 800)
	out, err := CropToAspectRatio(src, 0.75)
	if err != nil {
		t.Fatalf("crop failed: %v", err)
	}

	// The output origin maps to (300, 0) in the source.
	want := src.At(300, 0)
	got := out.At(0, 0)
	wr, wg, wb, _ := want.RGBA()
	gr, gg, gb, _ := got.RGBA()
	if wr != gr || wg != gg || wb != gb {
		t.Errorf("pixel mismatch at origin: want %v, got %v", want, got)
	}
}

func TestCropInvalidTarget(t *testing.T) {
	_, err := CropToAspectRatio(testImage(100, 100), 0)
	if !errors.Is(err, ErrCropDimension) {
		t.Errorf("expected ErrCropDimension, got %v", err)
	}

	_, err = CropToAspectRatio(testImage(100, 100), -1.5)
	if !errors.Is(err, ErrCropDimension) {
		t.Errorf("expected ErrCropDimension, got %v", err)
	}
}

func TestCropBytes(t *testing.T) {
	data := testJPEG(t, 1200, 800)

	out, err := CropBytes(data, 0.75)
	if err != nil {
		t.Fatalf("crop failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("failed to decode cropped output: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 600 || b.Dy() != 800 {
		t.Errorf("expected 600x800, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestCropBytesIdempotent(t *testing.T) {
	data := testJPEG(t, 600, 800)

	out, err := CropBytes(data, 0.75)
	if err != nil {
		t.Fatalf("crop failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("expected original bytes back for a compliant image")
	}
}

func TestCropBytesBadData(t *testing.T) {
	if _, err := CropBytes([]byte("not an image"), 0.75); err == nil {
		t.Error("expected decode error")
	}
}

func TestDecode(t *testing.T) {
	data := testJPEG(t, 320, 240)

	_, w, h, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if w != 320 || h != 240 {
		t.Errorf("expected 320x240, got %dx%d", w, h)
	}
}
