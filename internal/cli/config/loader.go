package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/metroflow/internal/engine"
	"github.com/leapstack-labs/metroflow/internal/geo"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// EnvPrefix prefixes every environment override. Double underscores separate
// nesting levels: METROFLOW_UI__PORT sets ui.port.
const EnvPrefix = "METROFLOW_"

// ConfigFileNames are searched in order.
var ConfigFileNames = []string{"metroflow.yaml", "metroflow.yml"}

// flagKeys maps command-line flags to config keys. Flags not listed here
// (--line, --year, ...) are command arguments, not configuration.
var flagKeys = map[string]string{
	"passengers":  "data.passengers.path",
	"coordinates": "data.coordinates.path",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"output":      "output",
	"verbose":     "verbose",
	"port":        "ui.port",
	"watch":       "ui.watch",
}

// pathFlags are resolved against the working directory, not the project root.
var pathFlags = map[string]string{
	"passengers":  "data.passengers.path",
	"coordinates": "data.coordinates.path",
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	view := engine.DefaultMapView()
	return Config{
		Data: DataConfig{
			Passengers:  FileConfig{Path: DefaultPassengersFile, Delimiter: ";", Encoding: "utf-8"},
			Coordinates: FileConfig{Path: DefaultCoordinatesFile, Delimiter: ",", Encoding: "utf-8"},
			DropColumns: DefaultDropColumns,
			CacheSize:   DefaultCacheSize,
		},
		Map: MapConfig{
			CenterLat:     view.CenterLat,
			CenterLong:    view.CenterLong,
			Zoom:          view.Zoom,
			MarkerRadius:  view.MarkerRadius,
			PathWeight:    view.PathWeight,
			CircularLines: append([]string(nil), geo.DefaultCircularLines...),
			DefaultColor:  DefaultColor,
		},
		UI: UIConfig{
			Port:       DefaultPort,
			AutoOpen:   true,
			Watch:      true,
			TableLimit: DefaultTableLimit,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		OutputFormat: DefaultOutput,
	}
}

// defaultValues flattens Defaults into koanf keys.
func defaultValues() map[string]interface{} {
	d := Defaults()
	return map[string]interface{}{
		"data.passengers.path":       d.Data.Passengers.Path,
		"data.passengers.delimiter":  d.Data.Passengers.Delimiter,
		"data.passengers.encoding":   d.Data.Passengers.Encoding,
		"data.coordinates.path":      d.Data.Coordinates.Path,
		"data.coordinates.delimiter": d.Data.Coordinates.Delimiter,
		"data.coordinates.encoding":  d.Data.Coordinates.Encoding,
		"data.drop_columns":          d.Data.DropColumns,
		"data.cache_size":            d.Data.CacheSize,
		"data.cache_ttl":             "0s",
		"data.refresh_schedule":      "",
		"map.center_lat":             d.Map.CenterLat,
		"map.center_long":            d.Map.CenterLong,
		"map.zoom":                   d.Map.Zoom,
		"map.marker_radius":          d.Map.MarkerRadius,
		"map.path_weight":            d.Map.PathWeight,
		"map.circular_lines":         d.Map.CircularLines,
		"map.default_color":          d.Map.DefaultColor,
		"ui.port":                    d.UI.Port,
		"ui.auto_open":               d.UI.AutoOpen,
		"ui.watch":                   d.UI.Watch,
		"ui.table_limit":             d.UI.TableLimit,
		"log.level":                  d.Log.Level,
		"log.format":                 d.Log.Format,
		"verbose":                    false,
		"output":                     d.OutputFormat,
	}
}

// configExistsIn returns the config file in dir, or "".
func configExistsIn(dir string) string {
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a metroflow config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configExistsIn(dir); found != "" {
			return found
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// envKey transforms METROFLOW_DATA__CACHE_SIZE into data.cache_size.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// decoderConfig lets env vars and YAML use "10m" for durations and
// "a,b" for lists.
func decoderConfig(out *Config) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           out,
		WeaklyTypedInput: true,
	}
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
//
// The project root is the directory of the config file: the explicit one,
// or the first metroflow.yaml found walking up from the working directory.
// Without a config file it is the working directory.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = cfgFile
	if configFileUsed == "" {
		configFileUsed = findConfigUpward(cwd)
	}
	projectRoot := cwd
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables (METROFLOW_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	flagPaths := make(map[string]string)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}

		for name, key := range pathFlags {
			if !flags.Changed(name) {
				continue
			}
			if v, _ := flags.GetString(name); v != "" {
				abs, err := filepath.Abs(v)
				if err != nil {
					abs = v
				}
				flagPaths[key] = abs
			}
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag:           "koanf",
		DecoderConfig: decoderConfig(&cfg),
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if secret := os.Getenv(SessionSecretEnv); secret != "" {
		cfg.UI.SessionSecret = secret
	}

	// 6. Resolve data paths. Flag paths are already absolute.
	cfg.ProjectRoot = projectRoot
	if p, ok := flagPaths["data.passengers.path"]; ok {
		cfg.Data.Passengers.Path = p
	} else {
		cfg.Data.Passengers.Path = resolvePathRelativeTo(cfg.Data.Passengers.Path, projectRoot)
	}
	if p, ok := flagPaths["data.coordinates.path"]; ok {
		cfg.Data.Coordinates.Path = p
	} else {
		cfg.Data.Coordinates.Path = resolvePathRelativeTo(cfg.Data.Coordinates.Path, projectRoot)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
