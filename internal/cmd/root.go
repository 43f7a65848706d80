package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amply-impact/amply/internal/config"
	"github.com/amply-impact/amply/internal/ux"
)

var rootCmd = &cobra.Command{
	Use:   "amply",
	Short: "Amply dashboard for donors and organizations",
	Long: `amply is the terminal client for the Amply giving platform.

Donors review their giving history. Organization administrators manage
donations, funds, the public ledger, campaigns and donation widgets once
their organization has been approved.

Run 'amply dash' for the interactive dashboard, or use the data commands
directly for scripting:

  amply login --email you@example.org
  amply donations list --output json
  amply campaigns create --title "Clean water" --goal 5000`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

var (
	cfgFile      string
	apiURL       string
	logLevel     string
	logFormat    string
	outputFormat string
)

// settings is the configuration of the running command, loaded before
// any RunE.
var settings = config.Default()

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $AMPLY_CONFIG or ~/.config/amply/config.yaml)")
	pf.StringVar(&apiURL, "api-url", "", "Amply API base URL")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "log format (json, text)")
	pf.StringVarP(&outputFormat, "output", "o", "text", "output format (text, json, yaml)")
}

// loadSettings merges defaults, the config file, AMPLY_* variables and
// flags into settings.
func loadSettings(cmd *cobra.Command, _ []string) error {
	if !slices.Contains(ux.Formats, strings.ToLower(outputFormat)) {
		return ux.EnhanceError(fmt.Errorf("unknown format: %s (supported: %s)", outputFormat, strings.Join(ux.Formats, ", ")))
	}

	v := config.New()
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	settings = c
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	flags := cmd.Flags()
	for key, name := range map[string]string{
		"api.url":    "api-url",
		"log.level":  "log-level",
		"log.format": "log-format",
	} {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}
