// Package engine ties the datasets, the pipeline and the map together.
// It owns the table cache and answers one question per call: what does the
// dashboard show for this selection.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/leapstack-labs/metroflow/internal/geo"
)

// Engine computes dashboard views from the two data files.
type Engine struct {
	source  *dataset.Source
	mapper  *geo.Mapper
	mapView MapView

	// Structured logger
	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Passengers describes the passenger-flow file
	Passengers dataset.Spec
	// Coordinates describes the station-coordinate file
	Coordinates dataset.Spec
	// DropPattern matches generated index columns (default dataset.DefaultDropPattern)
	DropPattern string
	// Colors overrides or extends the built-in line colors
	Colors map[string]string
	// DefaultColor is used for lines without a color (default "black")
	DefaultColor string
	// CircularLines are drawn as closed loops (default geo.DefaultCircularLines)
	CircularLines []string
	// Cache configures the table cache
	Cache dataset.CacheConfig
	// Map holds the initial map view
	Map MapView
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// MapView is the initial map position and drawing sizes.
type MapView struct {
	CenterLat    float64 `json:"center_lat"`
	CenterLong   float64 `json:"center_long"`
	Zoom         int     `json:"zoom"`
	MarkerRadius int     `json:"marker_radius"`
	PathWeight   int     `json:"path_weight"`
}

// DefaultMapView centers on Moscow.
func DefaultMapView() MapView {
	return MapView{
		CenterLat:    55.7558,
		CenterLong:   37.6173,
		Zoom:         10,
		MarkerRadius: 8,
		PathWeight:   5,
	}
}

// New creates an engine. Nothing is read until the first view is requested.
func New(cfg Config) (*Engine, error) {
	// Initialize logger (use discard handler if nil)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pattern := cfg.DropPattern
	if pattern == "" {
		pattern = dataset.DefaultDropPattern
	}
	drop, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid drop pattern %q: %w", pattern, err)
	}

	if cfg.Passengers.Path == "" {
		return nil, fmt.Errorf("passengers file is required")
	}
	if cfg.Coordinates.Path == "" {
		return nil, fmt.Errorf("coordinates file is required")
	}

	cacheCfg := cfg.Cache
	if cacheCfg.Logger == nil {
		cacheCfg.Logger = logger
	}

	colors := geo.DefaultColors().With(cfg.Colors).WithFallback(cfg.DefaultColor)

	mapView := cfg.Map
	if mapView == (MapView{}) {
		mapView = DefaultMapView()
	}

	logger.Debug("initializing engine",
		"passengers", cfg.Passengers.Path,
		"coordinates", cfg.Coordinates.Path,
		"drop_pattern", pattern)

	return &Engine{
		source:  dataset.NewSource(cfg.Passengers, cfg.Coordinates, drop, dataset.NewCache(cacheCfg)),
		mapper:  geo.NewMapper(colors, cfg.CircularLines),
		mapView: mapView,
		logger:  logger,
	}, nil
}

// --- Getters (public accessors) ---

// Passengers returns the passenger table, loading it on a cache miss.
func (e *Engine) Passengers() (*dataset.PassengerTable, error) {
	return e.source.Passengers()
}

// Coordinates returns the coordinate table, loading it on a cache miss.
func (e *Engine) Coordinates() (*dataset.CoordinateTable, error) {
	return e.source.Coordinates()
}

// Mapper returns the map builder.
func (e *Engine) Mapper() *geo.Mapper { return e.mapper }

// MapView returns the initial map view.
func (e *Engine) MapView() MapView { return e.mapView }

// WatchedPaths returns the data files whose changes invalidate the cache.
func (e *Engine) WatchedPaths() []string { return e.source.Paths() }

// Invalidate drops the cached table for path.
func (e *Engine) Invalidate(path string) bool {
	removed := e.source.Invalidate(path)
	e.logger.Info("data file invalidated", "path", path, "was_cached", removed)
	return removed
}

// Purge drops every cached table so the next view reloads both files.
func (e *Engine) Purge() {
	e.source.Purge()
	e.logger.Info("table cache purged")
}
