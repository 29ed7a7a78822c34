package main

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var files = map[string]string{
	"/data/spa_lap_times.json": `[{"year":2015,"pole":110.0,"fastest":112.0},{"year":2023,"pole":105.0,"fastest":107.0}]`,
	"/data/spa_driver_laps.json": `[
		{"year":2015,"session":"Q","driverId":"HAM","lapTime":110.5},
		{"year":2023,"session":"Q","driverId":"HAM","lapTime":105.9},
		{"year":2023,"session":"Q","driverId":"VER","lapTime":105.2}
	]`,
}

func dataServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// execute runs the root command with fresh flag values and returns its
// output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, cmd := range []*cobra.Command{rootCmd, reportCmd, chartCmd} {
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		cmd.Flags().VisitAll(reset)
		cmd.PersistentFlags().VisitAll(reset)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCircuitsCommand(t *testing.T) {
	out, err := execute(t, "circuits")
	require.NoError(t, err)
	assert.Contains(t, out, "Spa-Francorchamps (Belgium)")
	assert.Contains(t, out, "yas_marina")
}

func TestReportCommand(t *testing.T) {
	out, err := execute(t, "report", "spa", "--base-url", dataServer(t), "--metric", "gap")
	require.NoError(t, err)
	assert.Contains(t, out, "Spa-Francorchamps (Belgium)")
	assert.Contains(t, out, "Years covered: 2015 to 2023")
	assert.Contains(t, out, "0.625s per year")
	assert.Contains(t, out, "VER")
}

func TestReportCommand_InvalidSession(t *testing.T) {
	_, err := execute(t, "report", "spa", "--base-url", dataServer(t), "--session", "sprint")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sprint")
}

func TestChartCommand(t *testing.T) {
	base := dataServer(t)
	for _, kind := range []string{"comparison", "trend", "sparkline"} {
		output := filepath.Join(t.TempDir(), kind+".png")
		_, err := execute(t, "chart", "spa", "--base-url", base, "--kind", kind, "-o", output)
		require.NoError(t, err, kind)

		f, err := os.Open(output)
		require.NoError(t, err)
		_, err = png.Decode(f)
		f.Close()
		assert.NoError(t, err, kind)
	}
}

func TestChartCommand_NothingToPlot(t *testing.T) {
	output := filepath.Join(t.TempDir(), "chart.png")
	_, err := execute(t, "chart", "spa", "--base-url", dataServer(t), "--mode", "constructor", "-o", output)
	require.Error(t, err)
	assert.NoFileExists(t, output)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f1laptrend.yaml")
	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", path)
	assert.Error(t, err)
}

func TestInvalidBaseURL(t *testing.T) {
	_, err := execute(t, "circuits", "--base-url", "ftp://example.com")
	require.Error(t, err)
}
