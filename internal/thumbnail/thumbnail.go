package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Widths are the derivative widths, largest first.
var Widths = []int{500, 250, 100}

const jpegQuality = 85

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Supported reports whether width is one of the generated derivative widths.
func Supported(width int) bool {
	for _, w := range Widths {
		if w == width {
			return true
		}
	}
	return false
}

// Decode reads an image and the name of its format.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Resize scales img to width, keeping the aspect ratio.
func Resize(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	height := 1
	if bounds.Dx() > 0 {
		height = max(1, int(float64(bounds.Dy())*float64(width)/float64(bounds.Dx())+0.5))
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Encode writes img in format. The encoders are deterministic so the same
// input always yields the same bytes.
func Encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// Generate resizes a decoded image to width and encodes it in its own format.
func Generate(img image.Image, format string, width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid width %d", width)
	}
	return Encode(Resize(img, width), format)
}
