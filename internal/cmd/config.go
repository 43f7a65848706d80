package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amply-impact/amply/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
	Long: `Inspect the configuration amply runs with.

Values come from, in increasing precedence: built-in defaults, the YAML
config file, AMPLY_* environment variables (api.url -> AMPLY_API_URL) and
command-line flags.

Examples:
  amply config view
  AMPLY_API_URL=http://localhost:8000/v1 amply config view --output json
  amply config path`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigView,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file and state directory paths",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigView(cmd *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return render(cmd, settings, string(data))
}

type configPaths struct {
	Config string `json:"config" yaml:"config"`
	State  string `json:"state" yaml:"state"`
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	p := configPaths{Config: cfgFile, State: settings.State.Dir}
	if p.Config == "" {
		p.Config = config.DefaultPath()
	}
	return render(cmd, p, record{{"Config file", p.Config}, {"State directory", p.State}})
}
