package geocode_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benjoevidal/photosort/internal/geo"
	"github.com/benjoevidal/photosort/internal/geocode"
)

func TestCacheKey(t *testing.T) {
	p := geo.Point{Lat: 25.0339, Lon: 121.5645}
	if got := geocode.CacheKey(p); got != "25.034,121.564" {
		t.Errorf("CacheKey = %q, want 25.034,121.564", got)
	}

	// Nearby coordinates quantize to the same key.
	q := geo.Point{Lat: 25.03391, Lon: 121.56451}
	if geocode.CacheKey(p) != geocode.CacheKey(q) {
		t.Errorf("nearby points got different keys: %q vs %q", geocode.CacheKey(p), geocode.CacheKey(q))
	}

	// Repeated calls are stable.
	first := geocode.CacheKey(p)
	for i := 0; i < 10; i++ {
		if geocode.CacheKey(p) != first {
			t.Fatal("CacheKey not deterministic")
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := geocode.OpenCache(path)
	c.Put("25.034,121.564", "Xinyi District")
	c.Put("24.000,120.000", geocode.Failed)
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	reloaded := geocode.OpenCache(path)
	if v, ok := reloaded.Get("25.034,121.564"); !ok || v != "Xinyi District" {
		t.Errorf("Get = %q, %v; want Xinyi District, true", v, ok)
	}
	// The failure sentinel survives the round trip as a hit.
	if v, ok := reloaded.Get("24.000,120.000"); !ok || v != geocode.Failed {
		t.Errorf("sentinel Get = %q, %v; want \"\", true", v, ok)
	}
	if reloaded.Len() != 2 {
		t.Errorf("Len = %d, want 2", reloaded.Len())
	}
}

func TestCacheMissingFileStartsEmpty(t *testing.T) {
	c := geocode.OpenCache(filepath.Join(t.TempDir(), "nope.json"))
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if _, ok := c.Get("anything"); ok {
		t.Error("empty cache reported a hit")
	}
}

func TestCacheCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c := geocode.OpenCache(path)
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0 after corrupt load", c.Len())
	}

	// Still usable: writes overwrite the corrupt file.
	c.Put("k", "v")
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush over corrupt file: %v", err)
	}
	if v, ok := geocode.OpenCache(path).Get("k"); !ok || v != "v" {
		t.Errorf("Get after rewrite = %q, %v", v, ok)
	}
}

func TestCacheFlushCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")
	c := geocode.OpenCache(path)
	c.Put("k", "v")
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("cache file not written: %v", err)
	}
}
