package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	origPort := os.Getenv("WIREBRIDGE_SERVER__PORT")
	defer func() {
		if origPort != "" {
			os.Setenv("WIREBRIDGE_SERVER__PORT", origPort)
		} else {
			os.Unsetenv("WIREBRIDGE_SERVER__PORT")
		}
	}()

	t.Run("default port", func(t *testing.T) {
		os.Unsetenv("WIREBRIDGE_SERVER__PORT")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 8080 {
			t.Errorf("Load() port = %v, want 8080", cfg.Server.Port)
		}
	})

	t.Run("env var port override", func(t *testing.T) {
		os.Setenv("WIREBRIDGE_SERVER__PORT", "9000")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 9000 {
			t.Errorf("Load() port = %v, want 9000", cfg.Server.Port)
		}
	})

	t.Run("env var api key", func(t *testing.T) {
		os.Setenv("WIREBRIDGE_ANTHROPIC__API_KEY", "sk-ant-test")
		defer os.Unsetenv("WIREBRIDGE_ANTHROPIC__API_KEY")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Anthropic.APIKey != "sk-ant-test" {
			t.Errorf("Load() anthropic api key = %q, want %q", cfg.Anthropic.APIKey, "sk-ant-test")
		}
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `server:
  port: 7070
openai:
  api_key: ${TEST_OPENAI_KEY}
  base_url: https://example.test/v1
overrides:
  - model: gpt-4o
    set:
      temperature: 0.5
    delete:
      - top_p
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("TEST_OPENAI_KEY", "sk-file-test")
	defer os.Unsetenv("TEST_OPENAI_KEY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Load() port = %v, want 7070", cfg.Server.Port)
	}
	if cfg.OpenAI.APIKey != "sk-file-test" {
		t.Errorf("Load() openai api key = %q, want %q", cfg.OpenAI.APIKey, "sk-file-test")
	}
	if cfg.OpenAI.BaseURL != "https://example.test/v1" {
		t.Errorf("Load() openai base url = %q", cfg.OpenAI.BaseURL)
	}
	if len(cfg.Overrides) != 1 {
		t.Fatalf("Load() overrides = %d, want 1", len(cfg.Overrides))
	}
	if cfg.Overrides[0].Model != "gpt-4o" {
		t.Errorf("Load() override model = %q, want %q", cfg.Overrides[0].Model, "gpt-4o")
	}
	if len(cfg.Overrides[0].Delete) != 1 || cfg.Overrides[0].Delete[0] != "top_p" {
		t.Errorf("Load() override delete = %v", cfg.Overrides[0].Delete)
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple substitution",
			input: "${TEST_VAR}",
			want:  "test-value",
		},
		{
			name:  "no substitution",
			input: "plain-value",
			want:  "plain-value",
		},
		{
			name:  "embedded substitution",
			input: "prefix-${TEST_VAR}-suffix",
			want:  "prefix-test-value-suffix",
		},
		{
			name:  "unset variable",
			input: "${WIREBRIDGE_UNSET_TEST_VAR}",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := substituteEnvVars(tt.input)
			if got != tt.want {
				t.Errorf("substituteEnvVars() = %v, want %v", got, tt.want)
			}
		})
	}
}
