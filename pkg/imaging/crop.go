// Package imaging post-processes captured images. The only transform the
// pipeline performs is a deterministic, tolerance-aware aspect ratio crop;
// pixels are never resampled.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// CropTolerance is the aspect ratio slack within which an image is
// returned unchanged.
const CropTolerance = 0.01

// ErrCropDimension is returned when a computed crop dimension is not a
// positive pixel count. Fatal for the capture attempt; the image is never
// silently distorted.
var ErrCropDimension = errors.New("invalid crop dimensions")

// CropToAspectRatio crops img symmetrically to targetRatio (width/height).
// An image already within CropTolerance of the target is returned as-is.
func CropToAspectRatio(img image.Image, targetRatio float64) (image.Image, error) {
	if targetRatio <= 0 {
		return nil, fmt.Errorf("%w: target ratio %f", ErrCropDimension, targetRatio)
	}

	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()
	if srcWidth <= 0 || srcHeight <= 0 {
		return nil, fmt.Errorf("%w: source %dx%d", ErrCropDimension, srcWidth, srcHeight)
	}

	srcRatio := float64(srcWidth) / float64(srcHeight)
	if math.Abs(srcRatio-targetRatio) <= CropTolerance {
		return img, nil
	}

	var cropWidth, cropHeight, offsetX, offsetY int
	if srcRatio > targetRatio {
		// Source wider than target: crop the sides, keep full height.
		cropWidth = int(math.Round(float64(srcHeight) * targetRatio))
		cropHeight = srcHeight
		offsetX = (srcWidth - cropWidth) / 2
	} else {
		// Source taller than target: crop top and bottom, keep full width.
		cropWidth = srcWidth
		cropHeight = int(math.Round(float64(srcWidth) / targetRatio))
		offsetY = (srcHeight - cropHeight) / 2
	}

	if cropWidth <= 0 || cropHeight <= 0 {
		return nil, fmt.Errorf("%w: computed %dx%d", ErrCropDimension, cropWidth, cropHeight)
	}

	out := image.NewRGBA(image.Rect(0, 0, cropWidth, cropHeight))
	src := image.Pt(bounds.Min.X+offsetX, bounds.Min.Y+offsetY)
	draw.Copy(out, image.Point{}, img, image.Rectangle{Min: src, Max: src.Add(image.Pt(cropWidth, cropHeight))}, draw.Src, nil)
	return out, nil
}

// CropBytes decodes data, applies CropToAspectRatio, and re-encodes as
// JPEG. If the source already matches the target ratio the original bytes
// come back untouched.
func CropBytes(data []byte, targetRatio float64) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode captured image: %w", err)
	}

	cropped, err := CropToAspectRatio(img, targetRatio)
	if err != nil {
		return nil, err
	}
	if cropped == img {
		return data, nil
	}

	return EncodeJPEG(cropped)
}

// Decode decodes image bytes and returns the image with its dimensions.
func Decode(data []byte) (image.Image, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	return img, b.Dx(), b.Dy(), nil
}

// EncodeJPEG encodes an image as JPEG.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
