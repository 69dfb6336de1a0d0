// Package exif extracts GPS coordinates from image files.
package exif

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/benjoevidal/photosort/internal/geo"

	"github.com/rwcarlsen/goexif/exif"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".heic": true,
	".heif": true,
}

// IsImageFile reports whether path has a supported image extension.
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// GPS returns the coordinate embedded in the image at path, or nil when the
// file carries no usable GPS data. Only I/O problems are reported as errors;
// missing or malformed EXIF is treated as "no GPS".
func GPS(path string) (*geo.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, nil
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return nil, nil
	}

	p := geo.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return nil, nil
	}
	return &p, nil
}
