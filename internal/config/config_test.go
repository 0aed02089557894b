package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.HaikuModel)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.SonnetModel)
	assert.Equal(t, int64(2048), cfg.Anthropic.MaxTokens)
	assert.Equal(t, "https://api.jina.ai/v1/embeddings", cfg.Jina.BaseURL)
	assert.Equal(t, "jina-embeddings-v3", cfg.Jina.Model)
	assert.Equal(t, "local", cfg.OCR.Provider)
	assert.Equal(t, "pdftotext", cfg.OCR.PdfToTextPath)
	assert.Equal(t, "pixtral-large-latest", cfg.OCR.MistralModel)
	assert.InDelta(t, 0.85, cfg.Validation.MatchThreshold, 0.001)
	assert.InDelta(t, 0.60, cfg.Validation.AmbiguousThreshold, 0.001)
	assert.Equal(t, 4, cfg.Validation.MaxInFlight)
	assert.Equal(t, 2, cfg.Risk.HighMismatches)
	assert.Equal(t, 3, cfg.Risk.MediumAmbiguous)
	assert.Equal(t, 120, cfg.Pipeline.IngestTimeoutSecs)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
validate:
  match_threshold: 0.9
risk:
  high_mismatches: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 0.9, cfg.Validation.MatchThreshold, 0.001)
	assert.Equal(t, 1, cfg.Risk.HighMismatches)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.60, cfg.Validation.AmbiguousThreshold, 0.001)
	assert.Equal(t, 3, cfg.Risk.MediumAmbiguous)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
ocr:
  provider: local
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ONBOARD_LOG_LEVEL", "warn")
	t.Setenv("ONBOARD_OCR_PROVIDER", "mistral")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "mistral", cfg.OCR.Provider)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("ONBOARD_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Validation.MatchThreshold = 0.85
	cfg.Validation.AmbiguousThreshold = 0.60
	cfg.Validation.MaxInFlight = 4
	cfg.Risk.HighMismatches = 2
	cfg.Risk.MediumAmbiguous = 3
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("run"))
	assert.NoError(t, validDefaults().Validate("serve"))
}

func TestValidate_UnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	// Port is only checked in serve mode.
	assert.NoError(t, cfg.Validate("run"))
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	cfg := validDefaults()
	cfg.Validation.MatchThreshold = 0.5
	cfg.Validation.AmbiguousThreshold = 0.7

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "match_threshold must be >= validate.ambiguous_threshold")
}

func TestValidate_ThresholdRange(t *testing.T) {
	cfg := validDefaults()
	cfg.Validation.MatchThreshold = 1.2

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "within [0, 1]")
}

func TestValidate_InFlightBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Validation.MaxInFlight = 0

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_in_flight must be between 1 and 32")

	cfg.Validation.MaxInFlight = 33
	err = cfg.Validate("run")
	assert.Error(t, err)

	cfg.Validation.MaxInFlight = 32
	assert.NoError(t, cfg.Validate("run"))
}

func TestValidate_MistralKeyRequired(t *testing.T) {
	cfg := validDefaults()
	cfg.OCR.Provider = "mistral"

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mistral.key is required")

	cfg.Mistral.Key = "key"
	assert.NoError(t, cfg.Validate("run"))
}
