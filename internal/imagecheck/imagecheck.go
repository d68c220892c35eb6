// Package imagecheck decides whether a byte payload is an image the catalog
// can serve. It only reads the header; pixels are never decoded.
package imagecheck

import (
	"bytes"
	"image"

	// Registered decoders. Anything else is rejected.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decoder checks image payloads against the registered formats.
// The zero value is ready to use.
type Decoder struct{}

// IsDecodable reports whether b starts with a supported image header that
// parses into a non-empty image configuration.
func (Decoder) IsDecodable(b []byte) bool {
	return IsDecodable(b)
}

// Format returns the registered format name of b, or "" if it is not an image.
func (Decoder) Format(b []byte) string {
	return Format(b)
}

// IsDecodable is the package-level form of Decoder.IsDecodable.
func IsDecodable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return false
	}
	return cfg.Width > 0 && cfg.Height > 0
}

// Format returns the registered format name of b, or "" if it is not an image.
func Format(b []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return ""
	}
	return format
}
