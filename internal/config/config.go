// Package config loads bridge configuration from an optional YAML file and
// the environment. Environment variables use the WIREBRIDGE_ prefix and
// override file values.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Anthropic UpstreamConfig  `koanf:"anthropic"`
	OpenAI    UpstreamConfig  `koanf:"openai"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Storage   StorageConfig   `koanf:"storage"`
	Overrides []OverrideRule  `koanf:"overrides"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// UpstreamConfig configures one upstream provider. APIKey supports
// ${VAR_NAME} substitution from the environment.
type UpstreamConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
}

// TelemetryConfig toggles tracing.
type TelemetryConfig struct {
	Enabled bool `koanf:"enabled"`
}

// StorageConfig configures the exchange recorder. An empty path disables
// recording.
type StorageConfig struct {
	Path string `koanf:"path"`
}

// OverrideRule rewrites generated upstream request payloads. Rules apply in
// order when Model matches the request's model exactly, or any model when
// empty. Set assigns JSON values by path; Delete removes paths.
type OverrideRule struct {
	Model  string         `koanf:"model"`
	Set    map[string]any `koanf:"set"`
	Delete []string       `koanf:"delete"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads configuration, lowest precedence first: the YAML file at path
// (skipped when empty), environment variables, defaults for unset keys.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// WIREBRIDGE_ANTHROPIC__API_KEY -> anthropic.api_key
	if err := k.Load(env.Provider("WIREBRIDGE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "WIREBRIDGE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.Anthropic.APIKey = substituteEnvVars(cfg.Anthropic.APIKey)
	cfg.OpenAI.APIKey = substituteEnvVars(cfg.OpenAI.APIKey)

	return &cfg, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
