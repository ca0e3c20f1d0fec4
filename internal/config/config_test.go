package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPfile = "data/17010623.P20"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./192", cfg.BaseFolder)
	assert.Equal(t, "*.rep", cfg.ReportPattern)
	assert.Equal(t, "./outputs", cfg.OutputDir)
	assert.Empty(t, cfg.OutputPath)
	assert.Equal(t, 4, cfg.Workers)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.PfilePath)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("EEW_BASE_FOLDER", "/data/eew/205")
	t.Setenv("REPORT_PATTERN", "*.REP")
	t.Setenv("SUMMARY_OUTPUT_DIR", "/tmp/out")
	t.Setenv("SUMMARY_PATH", "/tmp/out/custom.txt")
	t.Setenv("PARSE_WORKERS", "16")
	t.Setenv("METRICS_TEXTFILE", "/var/lib/node_exporter/eew.prom")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/eew/205", cfg.BaseFolder)
	assert.Equal(t, "*.REP", cfg.ReportPattern)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "/tmp/out/custom.txt", cfg.OutputPath)
	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, "/var/lib/node_exporter/eew.prom", cfg.MetricsTextfile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidWorkers(t *testing.T) {
	for _, v := range []string{"0", "-3", "65", "many"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("PARSE_WORKERS", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "PARSE_WORKERS")
		})
	}
}

func TestLoad_InvalidPattern(t *testing.T) {
	t.Setenv("REPORT_PATTERN", "[")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_PATTERN")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoad_WarningLevelAlias(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warning")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warning", cfg.LogLevel)
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestValidate_RequiresPfile(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pfile")

	cfg.PfilePath = testPfile
	require.NoError(t, cfg.Validate())
}

func TestValidate_FlagOverrides(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	cfg.PfilePath = testPfile

	cfg.BaseFolder = ""
	require.ErrorContains(t, cfg.Validate(), "EEW_BASE_FOLDER")

	cfg.BaseFolder = "./192"
	cfg.Workers = 0
	require.ErrorContains(t, cfg.Validate(), "PARSE_WORKERS")
}

func TestSummaryPath(t *testing.T) {
	cfg := &Config{BaseFolder: "./192/", OutputDir: "outputs", PfilePath: testPfile}
	assert.Equal(t, filepath.Join("outputs", "summary_192_17010623.txt"), cfg.SummaryPath())

	cfg.OutputPath = "elsewhere/table.txt"
	assert.Equal(t, "elsewhere/table.txt", cfg.SummaryPath())
}
