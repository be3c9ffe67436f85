package codec

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	TIFF Format = "tiff"
	BMP  Format = "bmp"
	WEBP Format = "webp"
	// Raw marks a buffer that has not been through an encoder.
	Raw Format = "raw"
)

var formatAliases = map[string]Format{
	"png":  PNG,
	"jpg":  JPEG,
	"jpeg": JPEG,
	"tif":  TIFF,
	"tiff": TIFF,
	"bmp":  BMP,
	"webp": WEBP,
}

func ParseFormat(name string) (Format, error) {
	f, ok := formatAliases[strings.ToLower(strings.TrimPrefix(name, "."))]
	if !ok {
		return "", fmt.Errorf("unsupported image format: %q", name)
	}
	return f, nil
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Encodable reports whether Encode can write the format.
func (f Format) Encodable() bool {
	switch f {
	case PNG, JPEG, TIFF, BMP:
		return true
	}
	return false
}

func (f Format) ContentType() string {
	switch f {
	case Raw:
		return "application/octet-stream"
	}
	return "image/" + string(f)
}
