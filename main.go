package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"live-dashboard/config"
	"live-dashboard/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	outputFmt  string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Personal live dashboard: widgets, market data, news, scores, tasks and notes",
	Long: `dashboard serves a configurable grid of widgets whose data is polled from
market, news and sports providers and streamed to the browser.
The widgets, tasks and notes commands edit the same preference store the
server uses; a running server with the file backend picks the changes up.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			c.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			c.Log.Format = logFormat
		}
		l, err := logging.New(c.Log.Level, c.Log.Format)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "dashboard.yaml", "path to the YAML config file (optional)")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "json", "log format: json or console")
	flags.StringVarP(&outputFmt, "output", "o", "table", "output format for listing commands: table, json or yaml")

	rootCmd.AddCommand(serveCmd, widgetsCmd, prefsCmd, tasksCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
