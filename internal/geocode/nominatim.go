package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/benjoevidal/photosort/internal/geo"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const defaultEndpoint = "https://nominatim.openstreetmap.org/reverse"

// Nominatim's usage policy requires a descriptive User-Agent and at most one
// request per second.
const userAgent = "photosort/1.0 (github.com/benjoevidal/photosort)"

const requestInterval = 1100 * time.Millisecond

// ErrNoResult means the service answered but had no usable place name for
// the coordinate (including rejected numeric results such as postal codes).
var ErrNoResult = errors.New("geocode: no usable place name")

// Address component preference: a specific landmark first, then the most
// specific settlement level.
var (
	landmarkKeys   = []string{"tourism", "landmark", "building", "attraction", "amenity"}
	settlementKeys = []string{"village", "neighbourhood", "suburb", "town", "city", "county", "municipality", "state"}
	cityKeys       = []string{"city", "town", "village", "county"}
)

// Resolver answers place-name lookups through a persistent cache and the
// Nominatim API, serialized and throttled to the service's rate limit.
// It implements locate.Geocoder.
type Resolver struct {
	client   *http.Client
	cache    *Cache
	limiter  *rate.Limiter
	endpoint string
}

// NewResolver builds a Resolver over the given cache. endpoint overrides the
// Nominatim URL when non-empty (used by tests).
func NewResolver(client *http.Client, cache *Cache, endpoint string) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Resolver{
		client:   client,
		cache:    cache,
		limiter:  rate.NewLimiter(rate.Every(requestInterval), 1),
		endpoint: endpoint,
	}
}

// PlaceName resolves p to a raw place name. Cache hits short-circuit the
// network; validated answers and definitive rejections are cached and the
// cache is flushed immediately so paid-for lookups survive a crash.
// Transport errors are returned uncached so a later run can retry.
func (r *Resolver) PlaceName(ctx context.Context, p geo.Point) (string, error) {
	key := CacheKey(p)
	if v, ok := r.cache.Get(key); ok {
		if v == Failed {
			return "", ErrNoResult
		}
		return v, nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}

	name, err := r.fetch(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			r.store(key, Failed)
		}
		return "", err
	}

	r.store(key, name)
	return name, nil
}

func (r *Resolver) store(key, value string) {
	r.cache.Put(key, value)
	if err := r.cache.Flush(); err != nil {
		log.Warn().Err(err).Msg("Failed to persist geocode cache")
	}
}

type nominatimResponse struct {
	Error       string            `json:"error"`
	Address     map[string]string `json:"address"`
	DisplayName string            `json:"display_name"`
}

func (r *Resolver) fetch(ctx context.Context, p geo.Point) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Error != "" {
		return "", ErrNoResult
	}

	name := pickName(body)
	if name == "" {
		log.Debug().
			Float64("lat", p.Lat).
			Float64("lon", p.Lon).
			Str("display_name", body.DisplayName).
			Msg("Nominatim answer had no usable place name")
		return "", ErrNoResult
	}
	return name, nil
}

// pickName extracts the best place name from a response: a named landmark
// (suffixed with its city when distinct), then the most specific settlement,
// then the display name. Purely numeric candidates are postal codes, not
// place names, and are skipped.
func pickName(body nominatimResponse) string {
	for _, key := range landmarkKeys {
		name := strings.TrimSpace(body.Address[key])
		if name == "" || numericOnly(name) {
			continue
		}
		for _, ck := range cityKeys {
			if city := strings.TrimSpace(body.Address[ck]); city != "" && city != name {
				return name + ", " + city
			}
		}
		return name
	}

	for _, key := range settlementKeys {
		name := strings.TrimSpace(body.Address[key])
		if name == "" || numericOnly(name) {
			continue
		}
		return name
	}

	if dn := strings.TrimSpace(body.DisplayName); dn != "" && !numericOnly(dn) {
		// Usable only if some comma-separated part is more than a number.
		for _, part := range strings.Split(dn, ",") {
			if part = strings.TrimSpace(part); part != "" && !numericOnly(part) {
				return dn
			}
		}
	}
	return ""
}

// numericOnly reports whether s consists solely of digits, separators and
// whitespace, with at least one digit and no letters.
func numericOnly(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == ' ' || r == '-' || r == ',' || r == '.':
		default:
			return false
		}
	}
	return hasDigit
}
