package runtimeconfig

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goliatone/go-compage/internal/validation"
)

//go:embed config_schema.json
var configSchema []byte

const configSchemaName = "compage-config"

var ErrConfigFileInvalid = errors.New("compage config: config file invalid")

type fileConfig struct {
	RootNamespace    *string       `json:"root_namespace"`
	ContentRoots     []string      `json:"content_roots"`
	OutputDir        *string       `json:"output_dir"`
	Extension        *string       `json:"extension"`
	KnownComponents  []string      `json:"known_components"`
	Workers          *int          `json:"workers"`
	Incremental      *bool         `json:"incremental"`
	CleanBuild       *bool         `json:"clean_build"`
	BaseURL          *string       `json:"base_url"`
	GenerateManifest *bool         `json:"generate_manifest"`
	GenerateSitemap  *bool         `json:"generate_sitemap"`
	Markdown         *fileMarkdown `json:"markdown"`
	Cache            *fileCache    `json:"cache"`
	Logging          *fileLogging  `json:"logging"`
}

type fileMarkdown struct {
	Extensions []string `json:"extensions"`
	HardWraps  *bool    `json:"hard_wraps"`
	Unsafe     *bool    `json:"unsafe"`
}

type fileCache struct {
	Enabled *bool   `json:"enabled"`
	Path    *string `json:"path"`
	TTL     *string `json:"ttl"`
}

type fileLogging struct {
	Provider  *string  `json:"provider"`
	Level     *string  `json:"level"`
	Format    *string  `json:"format"`
	AddSource *bool    `json:"add_source"`
	Focus     []string `json:"focus"`
}

// LoadFile reads a JSON configuration file, validates it against the
// embedded schema, and overlays it on DefaultConfig. The schema cache is
// injected so hosts share one compiled schema per process and tests can use
// a throwaway instance.
func LoadFile(path string, schemas *validation.SchemaCache) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("compage config: read %s: %w", path, err)
	}
	return ParseFile(raw, schemas)
}

// ParseFile validates and overlays raw JSON configuration bytes.
func ParseFile(raw []byte, schemas *validation.SchemaCache) (Config, error) {
	if schemas == nil {
		schemas = validation.NewSchemaCache()
	}
	schema, err := schemas.Compile(configSchemaName, configSchema)
	if err != nil {
		return Config{}, err
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigFileInvalid, err)
	}
	if err := validation.ValidatePayload(schema, payload); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigFileInvalid, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigFileInvalid, err)
	}

	cfg := DefaultConfig()
	applyFileConfig(&cfg, fc)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.RootNamespace != nil {
		cfg.RootNamespace = *fc.RootNamespace
	}
	if len(fc.ContentRoots) > 0 {
		cfg.ContentRoots = fc.ContentRoots
	}
	if fc.OutputDir != nil {
		cfg.OutputDir = *fc.OutputDir
	}
	if fc.Extension != nil {
		cfg.Extension = *fc.Extension
	}
	if len(fc.KnownComponents) > 0 {
		cfg.KnownComponents = fc.KnownComponents
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.Incremental != nil {
		cfg.Incremental = *fc.Incremental
	}
	if fc.CleanBuild != nil {
		cfg.CleanBuild = *fc.CleanBuild
	}
	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.GenerateManifest != nil {
		cfg.GenerateManifest = *fc.GenerateManifest
	}
	if fc.GenerateSitemap != nil {
		cfg.GenerateSitemap = *fc.GenerateSitemap
	}
	if fc.Markdown != nil {
		if len(fc.Markdown.Extensions) > 0 {
			cfg.Markdown.Extensions = fc.Markdown.Extensions
		}
		if fc.Markdown.HardWraps != nil {
			cfg.Markdown.HardWraps = *fc.Markdown.HardWraps
		}
		if fc.Markdown.Unsafe != nil {
			cfg.Markdown.Unsafe = *fc.Markdown.Unsafe
		}
	}
	if fc.Cache != nil {
		if fc.Cache.Enabled != nil {
			cfg.Cache.Enabled = *fc.Cache.Enabled
		}
		if fc.Cache.Path != nil {
			cfg.Cache.Path = *fc.Cache.Path
		}
		if fc.Cache.TTL != nil {
			if ttl, err := time.ParseDuration(*fc.Cache.TTL); err == nil && ttl > 0 {
				cfg.Cache.TTL = ttl
			}
		}
	}
	if fc.Logging != nil {
		if fc.Logging.Provider != nil {
			cfg.Logging.Provider = *fc.Logging.Provider
		}
		if fc.Logging.Level != nil {
			cfg.Logging.Level = *fc.Logging.Level
		}
		if fc.Logging.Format != nil {
			cfg.Logging.Format = *fc.Logging.Format
		}
		if fc.Logging.AddSource != nil {
			cfg.Logging.AddSource = *fc.Logging.AddSource
		}
		if len(fc.Logging.Focus) > 0 {
			cfg.Logging.Focus = fc.Logging.Focus
		}
	}
}
