package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic  AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Jina       JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Mistral    MistralConfig   `yaml:"mistral" mapstructure:"mistral"`
	OCR        OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Validation ValidateConfig  `yaml:"validate" mapstructure:"validate"`
	Risk       RiskConfig      `yaml:"risk" mapstructure:"risk"`
	Fields     FieldsConfig    `yaml:"fields" mapstructure:"fields"`
	Pipeline   PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server     ServerConfig    `yaml:"server" mapstructure:"server"`
	Log        LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	HaikuModel   string `yaml:"haiku_model" mapstructure:"haiku_model"`
	SonnetModel  string `yaml:"sonnet_model" mapstructure:"sonnet_model"`
	MaxTokens    int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	SummaryModel string `yaml:"summary_model" mapstructure:"summary_model"`
}

// JinaConfig holds Jina embeddings API settings.
type JinaConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Model     string  `yaml:"model" mapstructure:"model"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

// MistralConfig holds Mistral OCR API credentials.
type MistralConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// OCRConfig configures document text extraction.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralModel  string `yaml:"mistral_model" mapstructure:"mistral_model"`
}

// ValidateConfig configures similarity thresholds and concurrency.
type ValidateConfig struct {
	MatchThreshold     float64 `yaml:"match_threshold" mapstructure:"match_threshold"`
	AmbiguousThreshold float64 `yaml:"ambiguous_threshold" mapstructure:"ambiguous_threshold"`
	MaxInFlight        int     `yaml:"max_in_flight" mapstructure:"max_in_flight"`
}

// RiskConfig configures the risk classification cut-offs.
type RiskConfig struct {
	HighMismatches  int `yaml:"high_mismatches" mapstructure:"high_mismatches"`
	MediumAmbiguous int `yaml:"medium_ambiguous" mapstructure:"medium_ambiguous"`
}

// FieldsConfig points at an optional field schema override file.
type FieldsConfig struct {
	SchemaPath string `yaml:"schema_path" mapstructure:"schema_path"`
}

// PipelineConfig configures run behavior.
type PipelineConfig struct {
	IngestTimeoutSecs int `yaml:"ingest_timeout_secs" mapstructure:"ingest_timeout_secs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the configuration is usable for the given mode
// ("run" or "serve"). All problems are reported at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "run", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if mode == "serve" && c.Server.Port <= 0 {
		problems = append(problems, "server.port must be > 0")
	}
	if c.Validation.MatchThreshold < c.Validation.AmbiguousThreshold {
		problems = append(problems, "validate.match_threshold must be >= validate.ambiguous_threshold")
	}
	if c.Validation.MatchThreshold > 1 || c.Validation.AmbiguousThreshold < 0 {
		problems = append(problems, "validate thresholds must be within [0, 1]")
	}
	if c.Validation.MaxInFlight < 1 || c.Validation.MaxInFlight > 32 {
		problems = append(problems, "validate.max_in_flight must be between 1 and 32")
	}
	if c.Risk.HighMismatches < 0 || c.Risk.MediumAmbiguous < 0 {
		problems = append(problems, "risk cut-offs must be >= 0")
	}
	if c.OCR.Provider == "mistral" && c.Mistral.Key == "" {
		problems = append(problems, "mistral.key is required when ocr.provider is mistral")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ONBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.haiku_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.sonnet_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.summary_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("jina.base_url", "https://api.jina.ai/v1/embeddings")
	v.SetDefault("jina.model", "jina-embeddings-v3")
	v.SetDefault("jina.rate_limit", 10)
	v.SetDefault("jina.burst", 10)
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.mistral_model", "pixtral-large-latest")
	v.SetDefault("validate.match_threshold", 0.85)
	v.SetDefault("validate.ambiguous_threshold", 0.60)
	v.SetDefault("validate.max_in_flight", 4)
	v.SetDefault("risk.high_mismatches", 2)
	v.SetDefault("risk.medium_ambiguous", 3)
	v.SetDefault("pipeline.ingest_timeout_secs", 120)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
