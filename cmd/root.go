package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dealscout/internal/config"
)

var cfg *config.Config

var rootFlags struct {
	configFile string
	logLevel   string
	logFormat  string
}

var rootCmd = &cobra.Command{
	Use:   "dealscout",
	Short: "Lead sourcing and deal scoring for small-business acquisitions",
	Long: `Finds small-business leads from a licensed directory or local dataset, scores them
against their peer group, enriches them with website, review and market signals,
and ranks deal readiness.

Configuration is read from --config, ./config.yaml or
$HOME/.config/dealscout/config.yaml, then DEALSCOUT_* environment variables
(for example DEALSCOUT_SOURCE_PRIMARY=directory).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFile(rootFlags.configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyRootFlags(cmd, c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		zap.L().Debug("config loaded",
			zap.String("command", cmd.Name()),
			zap.String("primary", cfg.Source.Primary),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// applyRootFlags lets explicitly set logging flags win over file and env.
func applyRootFlags(cmd *cobra.Command, c *config.Config) {
	pf := cmd.Root().PersistentFlags()
	if pf.Changed("log-level") {
		c.Log.Level = rootFlags.logLevel
	}
	if pf.Changed("log-format") {
		c.Log.Format = rootFlags.logFormat
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configFile, "config", "", "config file (default ./config.yaml or $HOME/.config/dealscout/config.yaml)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "json", "log format: json or console")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
