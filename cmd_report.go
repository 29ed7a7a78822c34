package main

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strings"

	"f1laptrend/pkg/circuits"
	"f1laptrend/pkg/config"
	"f1laptrend/pkg/dashboard"
	"f1laptrend/pkg/render"
	"f1laptrend/pkg/trend"

	"github.com/spf13/cobra"
)

var (
	viewMode         string
	viewSession      string
	viewMetric       string
	viewDrivers      string
	viewConstructors string
	viewPole         string
	viewFastest      string

	chartKind   string
	chartOutput string
	chartWidth  int
	chartHeight int
)

var reportCmd = &cobra.Command{
	Use:   "report [circuit]",
	Short: "Print the lap time trend of a circuit",
	Long: `Loads the three datasets of a circuit and prints the pole trend, the
pole and fastest lap table and the driver or constructor comparison.

Example:
  f1laptrend report monza --session R --metric gap --drivers VER,LEC`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

var chartCmd = &cobra.Command{
	Use:   "chart [circuit]",
	Short: "Render a circuit chart to a PNG file",
	Long: `Kinds:
  comparison  driver or constructor lap times (default)
  trend       pole and race fastest lap per year
  sparkline   compact pole trend line`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChart,
}

var circuitsCmd = &cobra.Command{
	Use:   "circuits",
	Short: "List the known circuits",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), render.CircuitsTable(circuits.All()))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err == nil {
			return fmt.Errorf("%s already exists", args[0])
		}
		if err := config.DefaultConfig().Save(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{reportCmd, chartCmd} {
		cmd.Flags().StringVar(&viewMode, "mode", "", "driver or constructor")
		cmd.Flags().StringVar(&viewSession, "session", "", "Q or R")
		cmd.Flags().StringVar(&viewMetric, "metric", "", "time or gap")
		cmd.Flags().StringVar(&viewDrivers, "drivers", "", "comma separated driver ids")
		cmd.Flags().StringVar(&viewConstructors, "constructors", "", "comma separated constructor names")
		cmd.Flags().StringVar(&viewPole, "pole", "", "show the pole line (true/false)")
		cmd.Flags().StringVar(&viewFastest, "fastest", "", "show the fastest lap line (true/false)")
	}
	chartCmd.Flags().StringVar(&chartKind, "kind", "comparison", "comparison, trend or sparkline")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "chart.png", "output file")
	chartCmd.Flags().IntVar(&chartWidth, "width", 160, "sparkline width in pixels")
	chartCmd.Flags().IntVar(&chartHeight, "height", 40, "sparkline height in pixels")

	configCmd.AddCommand(configInitCmd)
}

// inputsFromFlags overlays the view flags that were set on the configured
// defaults, the same way the web API overlays its query string.
func inputsFromFlags(cmd *cobra.Command, args []string) (dashboard.Inputs, error) {
	base := cfg.DefaultInputs()
	if len(args) == 1 {
		base = base.WithCircuit(args[0])
	}

	q := url.Values{}
	for key, v := range map[string]string{
		"mode":         viewMode,
		"session":      viewSession,
		"metric":       viewMetric,
		"drivers":      viewDrivers,
		"constructors": viewConstructors,
		"pole":         viewPole,
		"fastest":      viewFastest,
	} {
		if cmd.Flags().Changed(key) {
			q.Set(key, v)
		}
	}

	in, err := dashboard.ParseQuery(base, q)
	if err != nil {
		return in, err
	}
	return in, in.Validate()
}

func runReport(cmd *cobra.Command, args []string) error {
	in, err := inputsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	view, err := loadView(cmd.Context(), in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.TrendCard(view))
	if view.Years != nil {
		fmt.Fprintf(out, "Years covered: %d to %d\n", view.Years.From, view.Years.To)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, render.ReferenceTable(view))
	fmt.Fprintln(out)
	fmt.Fprintln(out, render.ComparisonTable(view))
	return nil
}

func runChart(cmd *cobra.Command, args []string) error {
	in, err := inputsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	view, err := loadView(cmd.Context(), in)
	if err != nil {
		return err
	}

	var b bytes.Buffer
	switch strings.ToLower(chartKind) {
	case "comparison":
		err = render.ComparisonChart(&b, view)
	case "trend":
		err = render.ReferenceChart(&b, view)
	case "sparkline":
		err = sparkline(&b, view)
	default:
		return fmt.Errorf("unknown chart kind %q", chartKind)
	}
	if err != nil {
		return fmt.Errorf("%s chart of %s: %w", chartKind, view.CircuitLabel, err)
	}

	if err := os.WriteFile(chartOutput, b.Bytes(), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", chartOutput)
	return nil
}

func sparkline(b *bytes.Buffer, view dashboard.View) error {
	return render.Sparkline(b, trend.EntityPoints(view.Reference.Rows, "pole"), chartWidth, chartHeight, "#4cc9f0")
}
