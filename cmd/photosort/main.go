package main

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/benjoevidal/photosort/internal/config"
	"github.com/benjoevidal/photosort/internal/exif"
	"github.com/benjoevidal/photosort/internal/fileops"
	"github.com/benjoevidal/photosort/internal/geocode"
	"github.com/benjoevidal/photosort/internal/locate"
	"github.com/benjoevidal/photosort/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input           string  `short:"i" long:"input"             env:"PHOTOSORT_INPUT"  description:"Source directory containing images" required:"true"`
	Output          string  `short:"o" long:"output"            env:"PHOTOSORT_OUTPUT" description:"Base output directory for sorted folders" required:"true"`
	ConfigFile      string  `short:"c" long:"config"            env:"PHOTOSORT_CONFIG" description:"Locations config file (JSON or YAML); omit for auto grouping"`
	Move            bool    `long:"move"                        description:"Move files instead of copying"`
	NoGeocode       bool    `long:"no-geocode"                  description:"Disable reverse geocoding; use coordinate folder names like Lat25_03Lon121_56"`
	GeocodeCache    string  `long:"geocode-cache"               description:"Path to geocode cache file (default: photosort_geocode_cache.json in output dir)"`
	ClusterRadiusKM float64 `long:"cluster-radius-km" default:"10" description:"In auto mode, group photos within this distance into one folder"`
	NoSingleWord    bool    `long:"no-single-word"              description:"Keep folder names as-is instead of single-word ASCII"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		cfg, err = config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
	}

	info, err := os.Stat(opts.Input)
	if err != nil || !info.IsDir() {
		log.Fatal().Str("path", opts.Input).Msg("Input is not a directory")
	}
	if err := os.MkdirAll(opts.Output, 0755); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Cannot create output directory")
	}

	namer := &locate.Namer{SingleWord: !opts.NoSingleWord}

	autoMode := len(cfg.Locations) == 0
	if autoMode && !opts.NoGeocode {
		cachePath := opts.GeocodeCache
		if cachePath == "" {
			cachePath = filepath.Join(opts.Output, "photosort_geocode_cache.json")
		}
		log.Info().Str("cache", cachePath).Msg("Geocoding on, folders will be named by place")
		cache := geocode.OpenCache(cachePath)
		client := &http.Client{Timeout: 15 * time.Second}
		namer.Geocoder = geocode.NewResolver(client, cache, "")
	} else if autoMode {
		log.Warn().Msg("Geocoding off, folders will be named by coordinates")
	}

	items, paths, scanErrs := scan(opts.Input)
	if len(items) == 0 {
		log.Info().Str("path", opts.Input).Msg("No image files found")
		return
	}
	log.Info().Int("images", len(items)).Str("path", opts.Input).Msg("Processing images")

	assigner := &locate.Assigner{
		Config:          cfg,
		Namer:           namer,
		ClusterRadiusKM: opts.ClusterRadiusKM,
	}
	assignments, sum := assigner.Assign(context.Background(), items)

	sorted := 0
	opErrs := scanErrs
	for _, it := range items {
		asg, ok := assignments[it.ID]
		if !ok {
			continue // left in place
		}

		destDir := filepath.Join(opts.Output, asg.Bucket)
		var opErr error
		if opts.Move {
			_, opErr = fileops.Move(paths[it.ID], destDir)
		} else {
			_, opErr = fileops.Copy(paths[it.ID], destDir)
		}
		if opErr != nil {
			log.Error().Err(opErr).Str("file", it.ID).Msg("Failed to place file")
			opErrs++
			continue
		}
		sorted++
		log.Debug().Str("file", it.ID).Str("bucket", asg.Bucket).Stringer("reason", asg.Reason).Msg("Sorted")
	}

	log.Info().
		Int("total", len(items)).
		Int("sorted", sorted).
		Int("matched", sum.Matched).
		Int("clustered", sum.Clustered).
		Int("uncategorized", sum.Unresolved).
		Int("no_gps", sum.NoGPS).
		Int("left_in_place", sum.LeftInPlace).
		Int("errors", opErrs).
		Msg("Done")
}

// scan walks the input tree and extracts a coordinate per image. Identifiers
// are paths relative to root; unreadable files are logged and skipped, never
// fatal.
func scan(root string) ([]locate.Item, map[string]string, int) {
	var items []locate.Item
	paths := make(map[string]string)
	errs := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Cannot read path")
			errs++
			return nil
		}
		if d.IsDir() || !exif.IsImageFile(path) {
			return nil
		}

		id, relErr := filepath.Rel(root, path)
		if relErr != nil {
			id = path
		}

		pt, gpsErr := exif.GPS(path)
		if gpsErr != nil {
			log.Error().Err(gpsErr).Str("file", id).Msg("Cannot read image")
			errs++
			return nil
		}
		if pt == nil {
			log.Debug().Str("file", id).Msg("No GPS data")
		} else {
			log.Debug().Str("file", id).Float64("lat", pt.Lat).Float64("lon", pt.Lon).Msg("GPS extracted")
		}

		items = append(items, locate.Item{ID: id, Point: pt})
		paths[id] = path
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Walk failed")
		errs++
	}

	return items, paths, errs
}
