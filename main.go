package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"f1laptrend/pkg/config"
	"f1laptrend/pkg/dashboard"
	"f1laptrend/pkg/datasource"
	"f1laptrend/pkg/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile     string
	baseURL     string
	verbose     bool
	loadTimeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "f1laptrend",
	Short: "Formula 1 lap time trends per circuit",
	Long: `f1laptrend charts how pole positions, race fastest laps and individual
driver or constructor best laps evolved at each Formula 1 circuit.

The lap data is read from static JSON files:
  /data/{circuit}_lap_times.json       pole and fastest lap per year
  /data/{circuit}_driver_laps.json     best lap per driver, session and year
  /data/constructors/{circuit}.json    best lap per constructor, session and year`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if baseURL != "" {
			cfg.Source.BaseURL = baseURL
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Development)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "host serving the /data JSON files (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&loadTimeout, "load-timeout", 30*time.Second, "how long to wait for a circuit's datasets")

	rootCmd.AddCommand(serveCmd, botCmd, reportCmd, chartCmd, circuitsCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newFetcher() *datasource.Client {
	return datasource.NewClient(cfg.Source.BaseURL, cfg.SourceTimeout(), logger)
}

// loadView loads one circuit and derives the dashboard for in once every
// dataset has settled.
func loadView(ctx context.Context, in dashboard.Inputs) (dashboard.View, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	l := dashboard.NewLoader(ctx, newFetcher(), nil, logger)
	defer l.Close()
	l.Select(in.Circuit)
	if err := l.Wait(ctx); err != nil {
		return dashboard.View{}, fmt.Errorf("loading %s: %w", in.Circuit, err)
	}
	return dashboard.Derive(in, l.Current()), nil
}
