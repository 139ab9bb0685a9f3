package commands

import (
	"log/slog"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metroflow/internal/cli/config"
	"github.com/leapstack-labs/metroflow/internal/cli/output"
	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/leapstack-labs/metroflow/internal/engine"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	eng, err := createEngine(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, err
	}
	cmdCtx.Engine = eng
	return cmdCtx, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't read the data files.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration, or the defaults when the
// command ran without loading one.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	cfg := config.Defaults()
	return &cfg
}

// EngineConfig translates the CLI configuration into an engine configuration.
func EngineConfig(cfg *config.Config, logger *slog.Logger) engine.Config {
	return engine.Config{
		Passengers:    fileSpec(cfg.Data.Passengers),
		Coordinates:   fileSpec(cfg.Data.Coordinates),
		DropPattern:   cfg.Data.DropColumns,
		Colors:        cfg.Map.Colors,
		DefaultColor:  cfg.Map.DefaultColor,
		CircularLines: cfg.Map.CircularLines,
		Cache: dataset.CacheConfig{
			Size:   cfg.Data.CacheSize,
			TTL:    cfg.Data.CacheTTL,
			Logger: logger,
		},
		Map: engine.MapView{
			CenterLat:    cfg.Map.CenterLat,
			CenterLong:   cfg.Map.CenterLong,
			Zoom:         cfg.Map.Zoom,
			MarkerRadius: cfg.Map.MarkerRadius,
			PathWeight:   cfg.Map.PathWeight,
		},
		Logger: logger,
	}
}

func fileSpec(f config.FileConfig) dataset.Spec {
	var delim rune
	if f.Delimiter != "" {
		delim, _ = utf8.DecodeRuneInString(f.Delimiter)
	}
	return dataset.Spec{
		Path:      f.Path,
		Delimiter: delim,
		Encoding:  f.Encoding,
		Sheet:     f.Sheet,
	}
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	return engine.New(EngineConfig(cfg, logger))
}
