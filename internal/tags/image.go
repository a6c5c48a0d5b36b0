package tags

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Cover encodings accepted by ImagePolicy.Format.
const (
	FormatJPEG     = "jpeg"
	FormatPNG      = "png"
	FormatOriginal = "original"
)

// DefaultImagePolicy re-encodes covers as JPEG.
var DefaultImagePolicy = ImagePolicy{
	Format:      FormatJPEG,
	Quality:     90,
	Description: "cover",
}

// ImagePolicy controls how cover images referenced by spec files are turned
// into tag values.
type ImagePolicy struct {
	// Format is jpeg, png or original. original keeps the file bytes after
	// verifying they decode.
	Format string
	// Quality is the JPEG quality, 1-100.
	Quality     int
	Description string
}

// Validate reports unusable policies.
func (p ImagePolicy) Validate() error {
	switch p.Format {
	case FormatJPEG:
		if p.Quality < 1 || p.Quality > 100 {
			return fmt.Errorf("jpeg quality must be between 1 and 100, got %d", p.Quality)
		}
	case FormatPNG, FormatOriginal:
	default:
		return fmt.Errorf("unsupported cover format %q", p.Format)
	}
	return nil
}

// LoadImage reads the image at path, decodes it and encodes it per policy
// into a front-cover Image.
func LoadImage(path string, policy ImagePolicy) (Image, error) {
	if err := policy.Validate(); err != nil {
		return Image{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	return EncodeImage(raw, policy)
}

// EncodeImage decodes raw image bytes and re-encodes them per policy.
func EncodeImage(raw []byte, policy ImagePolicy) (Image, error) {
	decoded, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}

	var (
		mime string
		data []byte
	)
	switch policy.Format {
	case FormatJPEG:
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: policy.Quality}); err != nil {
			return Image{}, fmt.Errorf("encode jpeg: %w", err)
		}
		mime, data = "image/jpeg", buf.Bytes()
	case FormatPNG:
		var buf bytes.Buffer
		if err := png.Encode(&buf, decoded); err != nil {
			return Image{}, fmt.Errorf("encode png: %w", err)
		}
		mime, data = "image/png", buf.Bytes()
	case FormatOriginal:
		mime, data = "image/"+strings.ToLower(format), raw
	default:
		return Image{}, fmt.Errorf("unsupported cover format %q", policy.Format)
	}

	return NewImage(mime, PictureFrontCover, policy.Description, data), nil
}
