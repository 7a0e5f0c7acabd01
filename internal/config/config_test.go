package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Workers != 8 {
		t.Errorf("expected default workers 8, got %d", cfg.Workers)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Timeout)
	}
	if cfg.MaxAssetSize != 16*1024*1024 {
		t.Errorf("expected default max asset size 16MiB, got %d", cfg.MaxAssetSize)
	}
	if cfg.Retry.Attempts != 2 {
		t.Errorf("expected default retry attempts 2, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 500*time.Millisecond {
		t.Errorf("expected default retry backoff 500ms, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 5*time.Second {
		t.Errorf("expected default retry max backoff 5s, got %v", cfg.Retry.MaxBackoff)
	}
	if cfg.Categories != nil {
		t.Errorf("expected categories unset, got %q", cfg.Categories)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
instance: mastodon.social
categories: [Blobs, Cats]
output: ./emoji
workers: 16
timeout: 10s
max_asset_size: 1MiB
progress: true
retry:
  attempts: 0
  backoff: 2s
  max_backoff: 60s
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Instance != "mastodon.social" {
		t.Errorf("expected instance mastodon.social, got %q", cfg.Instance)
	}
	if !reflect.DeepEqual(cfg.Categories, []string{"Blobs", "Cats"}) {
		t.Errorf("unexpected categories %q", cfg.Categories)
	}
	if cfg.Output != "./emoji" {
		t.Errorf("expected output ./emoji, got %q", cfg.Output)
	}
	if cfg.Workers != 16 {
		t.Errorf("expected workers 16, got %d", cfg.Workers)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Timeout)
	}
	if cfg.MaxAssetSize != 1024*1024 {
		t.Errorf("expected max asset size 1MiB, got %d", cfg.MaxAssetSize)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
	if cfg.Retry.Attempts != 0 {
		t.Errorf("expected retry attempts 0, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 2*time.Second {
		t.Errorf("expected retry backoff 2s, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 60*time.Second {
		t.Errorf("expected retry max backoff 60s, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestLoadCategoriesForms(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want []string
	}{
		{"string", `categories: "Blobs,Cats"`, []string{"Blobs", "Cats"}},
		{"empty string", `categories: ""`, []string{""}},
		{"trailing comma", `categories: "Blobs,"`, []string{"Blobs", ""}},
		{"empty list", `categories: []`, []string{}},
		{"null", `categories:`, nil},
		{"absent", `workers: 2`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromFile(writeConfig(t, tt.yaml))
			if err != nil {
				t.Fatalf("LoadFromFile: %v", err)
			}
			if !reflect.DeepEqual(cfg.Categories, tt.want) {
				t.Errorf("categories = %#v, want %#v", cfg.Categories, tt.want)
			}
		})
	}
}

func TestLoadCategoriesInvalid(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "categories:\n  a: b\n"))
	if err == nil {
		t.Error("expected error for mapping categories")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MASTOYOINK_INSTANCE", "example.social")
	t.Setenv("MASTOYOINK_CATEGORIES", "a,b")
	t.Setenv("MASTOYOINK_WORKERS", "4")
	t.Setenv("MASTOYOINK_TIMEOUT", "5s")
	t.Setenv("MASTOYOINK_MAX_ASSET_SIZE", "512KiB")
	t.Setenv("MASTOYOINK_PROGRESS", "true")
	t.Setenv("MASTOYOINK_RETRY_ATTEMPTS", "1")
	t.Setenv("MASTOYOINK_RETRY_BACKOFF", "100ms")
	t.Setenv("MASTOYOINK_RETRY_MAX_BACKOFF", "1s")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Instance != "example.social" {
		t.Errorf("expected instance example.social, got %q", cfg.Instance)
	}
	if !reflect.DeepEqual(cfg.Categories, []string{"a", "b"}) {
		t.Errorf("unexpected categories %q", cfg.Categories)
	}
	if cfg.Workers != 4 {
		t.Errorf("expected workers 4, got %d", cfg.Workers)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Timeout)
	}
	if cfg.MaxAssetSize != 512*1024 {
		t.Errorf("expected max asset size 512KiB, got %d", cfg.MaxAssetSize)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}
	if cfg.Retry.Attempts != 1 {
		t.Errorf("expected retry attempts 1, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 100*time.Millisecond {
		t.Errorf("expected retry backoff 100ms, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != time.Second {
		t.Errorf("expected retry max backoff 1s, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestLoadFromEnvEmptyCategories(t *testing.T) {
	t.Setenv("MASTOYOINK_CATEGORIES", "")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if !reflect.DeepEqual(cfg.Categories, []string{""}) {
		t.Errorf("expected the empty category, got %#v", cfg.Categories)
	}
}

func TestLoadFromEnvInvalid(t *testing.T) {
	for _, key := range []string{
		"MASTOYOINK_WORKERS",
		"MASTOYOINK_TIMEOUT",
		"MASTOYOINK_MAX_ASSET_SIZE",
		"MASTOYOINK_RETRY_ATTEMPTS",
		"MASTOYOINK_RETRY_BACKOFF",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "bogus")
			cfg := Default()
			if err := cfg.LoadFromEnv(); err == nil {
				t.Errorf("expected error for %s=bogus", key)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.Instance = "mastodon.social"
		cfg.Categories = []string{"Blobs"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"empty category is valid", func(c *Config) { c.Categories = []string{""} }, false},
		{"host with port", func(c *Config) { c.Instance = "localhost:8443" }, false},
		{"missing instance", func(c *Config) { c.Instance = "" }, true},
		{"instance with scheme", func(c *Config) { c.Instance = "https://mastodon.social" }, true},
		{"instance with trailing slash", func(c *Config) { c.Instance = "mastodon.social/" }, true},
		{"instance with path", func(c *Config) { c.Instance = "mastodon.social/api" }, true},
		{"missing categories", func(c *Config) { c.Categories = nil }, true},
		{"invalid workers", func(c *Config) { c.Workers = 0 }, true},
		{"invalid timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"negative retries", func(c *Config) { c.Retry.Attempts = -1 }, true},
		{"negative max size", func(c *Config) { c.MaxAssetSize = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.Instance = "mastodon.social"
	base.Categories = []string{"Blobs"}
	base.Output = "/srv/emoji"

	override := Config{
		Workers:    32,
		Categories: []string{""},
	}

	merged := base.Merge(override)

	if merged.Instance != "mastodon.social" {
		t.Errorf("expected Instance preserved, got %s", merged.Instance)
	}
	if merged.Output != "/srv/emoji" {
		t.Errorf("expected Output preserved, got %s", merged.Output)
	}
	if merged.Timeout != 30*time.Second {
		t.Errorf("expected Timeout preserved, got %v", merged.Timeout)
	}
	if merged.Workers != 32 {
		t.Errorf("expected Workers overridden to 32, got %d", merged.Workers)
	}
	if !reflect.DeepEqual(merged.Categories, []string{""}) {
		t.Errorf("expected Categories overridden to the empty category, got %#v", merged.Categories)
	}
	if !reflect.DeepEqual(base.Categories, []string{"Blobs"}) {
		t.Error("Merge must not modify the receiver")
	}
}

func TestLoadYAMLFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadYAMLBadDuration(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "timeout: soon"))
	if err == nil {
		t.Error("expected error for invalid duration")
	}
}
