package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains process configuration.
type Config struct {
	// ServerPort is the HTTP listen port.
	ServerPort string `koanf:"server_port"`

	// GeminiAPIKey is the single API credential used for every backend call.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// GeminiBaseURL points at the generative language REST endpoint.
	// Overridable for tests.
	GeminiBaseURL string `koanf:"gemini_base_url"`

	// Models is the ordered candidate list of model variants the extraction
	// orchestrator falls through. At least two are expected.
	Models []string `koanf:"models"`

	// StorePath is the xlsx workbook the tabular store persists to.
	StorePath string `koanf:"store_path"`

	// MaxFileSize caps uploaded documents, in bytes.
	MaxFileSize int64 `koanf:"max_file_size"`

	// MaxImageDimension caps the longest side of an uploaded image before it
	// is sent to a backend. Cost/latency policy, not a correctness need.
	MaxImageDimension int `koanf:"max_image_dimension"`

	// EnableLocalFallback appends a local Tesseract backend after the remote
	// model variants. Off by default.
	EnableLocalFallback bool `koanf:"enable_local_fallback"`

	// TessdataPrefix is the tessdata directory for the local fallback.
	TessdataPrefix string `koanf:"tessdata_prefix"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		ServerPort:        "8080",
		GeminiBaseURL:     "https://generativelanguage.googleapis.com/v1beta",
		Models:            []string{"gemini-1.5-pro-latest", "gemini-1.5-flash-latest"},
		StorePath:         "kyc_database.xlsx",
		MaxFileSize:       10 * 1024 * 1024, // 10 MB
		MaxImageDimension: 2048,
		TessdataPrefix:    "/usr/share/tesseract-ocr/5/tessdata/",
	}
}

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if KYC_CONFIG is set
//  3. env (prefix KYC_), e.g. KYC_SERVER_PORT, KYC_GEMINI_API_KEY
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("KYC_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Map env keys like KYC_STORE_PATH -> store_path (flat keys matching the
	// koanf tags on the struct).
	envProvider := env.Provider("KYC_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "kyc_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.ServerPort == "" {
		return nil, errors.New("server_port must not be empty")
	}
	if len(cfg.Models) == 0 {
		return nil, errors.New("at least one extraction model must be configured")
	}
	if len(cfg.Models) < 2 && !cfg.EnableLocalFallback {
		return nil, errors.New("at least two extraction backends are required; add a second model or enable the local fallback")
	}
	return &cfg, nil
}
