package locate

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/benjoevidal/photosort/internal/geo"

	"github.com/mozillazg/go-unidecode"
	"github.com/rs/zerolog/log"
)

// Geocoder resolves a coordinate to a raw place name. Implementations may
// block on the network; failures of any kind are reported as an error and
// the caller falls back to a coordinate-derived name.
type Geocoder interface {
	PlaceName(ctx context.Context, p geo.Point) (string, error)
}

// Namer turns region names and cluster centers into folder-safe bucket names.
// A nil Geocoder disables place-name lookups.
type Namer struct {
	SingleWord bool
	Geocoder   Geocoder
}

// RegionName resolves an explicitly configured region name.
func (n *Namer) RegionName(name string) string {
	if n.SingleWord {
		if w := SingleWord(name); w != "" {
			return w
		}
	}
	return Sanitize(name)
}

// ClusterName resolves a cluster's representative center to a bucket name:
// the geocoded place name when a Geocoder is set and answers, otherwise the
// deterministic coordinate-derived name.
func (n *Namer) ClusterName(ctx context.Context, center geo.Point) string {
	if n.Geocoder != nil {
		name, err := n.Geocoder.PlaceName(ctx, center)
		if err == nil {
			if resolved := n.RegionName(name); resolved != "" && resolved != "Unknown" {
				return resolved
			}
		} else {
			log.Debug().Err(err).
				Float64("lat", center.Lat).
				Float64("lon", center.Lon).
				Msg("Place name lookup failed, using coordinate name")
		}
	}
	return CoordName(center)
}

// SingleWord collapses a place name into one ASCII word: non-ASCII runes are
// transliterated, punctuation and whitespace are dropped, and the words are
// concatenated in order with their original capitalization kept
// ("Shifen Old Street" -> "ShifenOldStreet"). The transform is idempotent.
// Returns "" when nothing usable remains.
func SingleWord(name string) string {
	s := unidecode.Unidecode(name)

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "")
}

// Sanitize makes a name safe as a folder name on common filesystems,
// replacing reserved characters and collapsing whitespace.
func Sanitize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return ' '
		}
		return r
	}, name)

	out := strings.Join(strings.Fields(cleaned), " ")
	if out == "" {
		return "Unknown"
	}
	return out
}

// CoordName builds the deterministic fallback folder name for a coordinate,
// quantized to two decimals with the sign and decimal point replaced by
// underscores, e.g. (25.0339, 121.5645) -> "Lat25_03Lon121_56". The same
// coordinate always yields the same string.
func CoordName(p geo.Point) string {
	name := fmt.Sprintf("Lat%.2fLon%.2f", p.Lat, p.Lon)
	name = strings.ReplaceAll(name, ".", "_")
	return strings.ReplaceAll(name, "-", "_")
}
