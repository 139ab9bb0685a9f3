package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/metroflow/internal/cli/config"
	"github.com/leapstack-labs/metroflow/internal/cli/output"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Force  bool
	Sample bool
}

// configHeader is written above the generated configuration.
const configHeader = `# metroflow configuration.
# Relative paths are resolved against this file's directory.
# Every key can be overridden with METROFLOW_<SECTION>__<KEY>, e.g. METROFLOW_UI__PORT.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default metroflow.yaml",
		Long: `Write a metroflow.yaml with every setting at its default value.

Use --sample to also write a small passenger file and coordinate file so
the dashboard has something to show straight away.`,
		Example: `  # Initialize in current directory
  metroflow init

  # Initialize a new directory with sample data
  metroflow init demo --sample

  # Force overwrite existing config
  metroflow init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			// Create renderer
			cfg := getConfig()
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

			return runInit(r, dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&opts.Sample, "sample", false, "Also write sample data files")

	return cmd
}

func runInit(r *output.Renderer, dir string, opts *InitOptions) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	content, err := defaultConfigYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	r.StatusLine(configPath, "success", "")

	if opts.Sample {
		files, err := copyTemplate("sample", dir, opts.Force)
		if err != nil {
			return fmt.Errorf("failed to write sample data: %w", err)
		}
		for _, f := range files {
			r.StatusLine(f, "success", "")
		}
	}

	r.Println("")
	r.Success("metroflow project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  metroflow doctor     Check both data files and their line names")
	r.Println("  metroflow summary    Print passenger totals")
	r.Println("  metroflow serve      Open the dashboard")

	return nil
}

// defaultConfigYAML renders config.Defaults with a header comment.
func defaultConfigYAML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config.Defaults()); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
