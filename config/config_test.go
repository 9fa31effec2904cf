package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server        struct {
		Port int    `mapstructure:"port"`
		Host string `mapstructure:"host"`
	} `mapstructure:"server"`
	LLM struct {
		OpenAI struct {
			APIKey string `mapstructure:"api_key"`
		} `mapstructure:"openai"`
	} `mapstructure:"llm"`
}

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

// --- ServiceConfig tests ---

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		var cfg ServiceConfig
		cfg.ApplyDefaults()
		if cfg.Name != "paiflow" || cfg.Environment != "development" || !cfg.Debug {
			t.Errorf("unexpected defaults %+v", cfg)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("development should log at debug, got %q", cfg.Logging.Level)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "staging"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

// --- Loader tests ---

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paiflow.yml")
	content := `
name: paiflow-test
environment: staging
server:
  host: 127.0.0.1
  port: 9090
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var cfg testConfig
	if err := LoadConfig("paiflow", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "none.env"))); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "paiflow-test" || cfg.Environment != "staging" {
		t.Errorf("unexpected base %+v", cfg.ServiceConfig)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("unexpected server section %+v", cfg.Server)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paiflow.yml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PFTEST_SERVER_PORT", "7070")
	t.Setenv("PFTEST_LLM_OPENAI_API_KEY", "sk-test")

	var cfg testConfig
	err := LoadConfig("paiflow", &cfg, WithConfigFile(path), WithEnvPrefix("PFTEST"), WithEnvFile(filepath.Join(dir, "none.env")))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected env override 7070, got %d", cfg.Server.Port)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-test" {
		t.Errorf("expected api key from env, got %q", cfg.LLM.OpenAI.APIKey)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	fs := &mockFS{files: map[string]bool{}}
	if err := LoadConfig("paiflow", &cfg, WithFileSystem(fs), WithConfigFile("/nonexistent/path.yml")); err != nil {
		t.Fatalf("expected success with missing file, got %v", err)
	}
}

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./config/paiflow.yml": true,
		"./config.yml":         true,
		"./.env":               true,
	}}
	r := &Resolver{FileSystem: fs}
	files := r.ResolveFiles("paiflow", LoaderConfig{})
	if files.ConfigFile != "./config/paiflow.yml" {
		t.Errorf("expected ./config/paiflow.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected ./.env, got %q", files.EnvFile)
	}
}

func TestLoadConfigLoadsEnvFile(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./.env": true}}
	var cfg testConfig
	if err := LoadConfig("paiflow", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatal(err)
	}
	if len(fs.loaded) != 1 || fs.loaded[0] != "./.env" {
		t.Errorf("expected .env to be loaded, got %v", fs.loaded)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("LLM_OPENAI_API_KEY")
	for _, want := range []string{"llm_openai_api_key", "llm.openai.api_key", "llm.openai_api_key"} {
		if !slices.Contains(got, want) {
			t.Errorf("missing variant %q in %v", want, got)
		}
	}
	if single := generateEnvKeyVariants("NAME"); len(single) != 1 || single[0] != "name" {
		t.Errorf("unexpected %v", single)
	}
}
