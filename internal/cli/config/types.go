// Package config provides configuration management for the metroflow CLI.
//
// Configuration is layered with koanf: built-in defaults, then metroflow.yaml,
// then METROFLOW_ environment variables, then command-line flags.
package config

import "time"

// Default values shared by the loader, `metroflow init` and the tests.
const (
	DefaultPassengersFile  = "metro_traffic.csv"
	DefaultCoordinatesFile = "moscow_underground_coords.csv"
	DefaultDropColumns     = "^Unnamed"
	DefaultCacheSize       = 16
	DefaultOutput          = "auto"
	DefaultPort            = 8765
	DefaultTableLimit      = 500
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultColor           = "black"

	// SessionSecretEnv overrides ui.session_secret without touching the file.
	SessionSecretEnv = "METROFLOW_SESSION_SECRET"
)

// Config holds all CLI configuration options.
type Config struct {
	Data         DataConfig `koanf:"data" yaml:"data"`
	Map          MapConfig  `koanf:"map" yaml:"map"`
	UI           UIConfig   `koanf:"ui" yaml:"ui"`
	Log          LogConfig  `koanf:"log" yaml:"log"`
	Verbose      bool       `koanf:"verbose" yaml:"verbose"`
	OutputFormat string     `koanf:"output" yaml:"output" validate:"oneof=auto text json markdown csv"`

	// ProjectRoot is the directory relative data paths were resolved against.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// DataConfig describes the two input files and how they are cached.
type DataConfig struct {
	Passengers  FileConfig `koanf:"passengers" yaml:"passengers"`
	Coordinates FileConfig `koanf:"coordinates" yaml:"coordinates"`

	// DropColumns matches the generated index columns removed from the
	// passenger file. Blank headers are always removed.
	DropColumns string `koanf:"drop_columns" yaml:"drop_columns"`

	CacheSize int           `koanf:"cache_size" yaml:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`

	// RefreshSchedule is a cron spec ("@every 10m", "0 */5 * * * *") that
	// purges the cache while the dashboard runs. Empty disables it.
	RefreshSchedule string `koanf:"refresh_schedule" yaml:"refresh_schedule"`
}

// FileConfig locates one input file.
type FileConfig struct {
	Path      string `koanf:"path" yaml:"path" validate:"required"`
	Delimiter string `koanf:"delimiter" yaml:"delimiter" validate:"omitempty,len=1"`
	Encoding  string `koanf:"encoding" yaml:"encoding"`
	Sheet     string `koanf:"sheet" yaml:"sheet,omitempty"`
}

// MapConfig holds the map view and line styling.
type MapConfig struct {
	CenterLat     float64           `koanf:"center_lat" yaml:"center_lat" validate:"gte=-90,lte=90"`
	CenterLong    float64           `koanf:"center_long" yaml:"center_long" validate:"gte=-180,lte=180"`
	Zoom          int               `koanf:"zoom" yaml:"zoom" validate:"gte=0,lte=20"`
	MarkerRadius  int               `koanf:"marker_radius" yaml:"marker_radius" validate:"gt=0"`
	PathWeight    int               `koanf:"path_weight" yaml:"path_weight" validate:"gt=0"`
	CircularLines []string          `koanf:"circular_lines" yaml:"circular_lines" validate:"dive,required"`
	Colors        map[string]string `koanf:"colors" yaml:"colors,omitempty" validate:"dive,keys,required,endkeys,required"`
	DefaultColor  string            `koanf:"default_color" yaml:"default_color" validate:"required"`
}

// UIConfig holds configuration for the dashboard server.
type UIConfig struct {
	Port          int    `koanf:"port" yaml:"port" validate:"gt=0,lte=65535"`
	AutoOpen      bool   `koanf:"auto_open" yaml:"auto_open"`
	Watch         bool   `koanf:"watch" yaml:"watch"`
	TableLimit    int    `koanf:"table_limit" yaml:"table_limit" validate:"gt=0"`
	SessionSecret string `koanf:"session_secret" yaml:"session_secret,omitempty"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" yaml:"format" validate:"oneof=text json"`
}
