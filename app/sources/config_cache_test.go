package sources

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfigs(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("TEST_GNEWS_KEY", "from-env")

	writeConfig(t, tempDir, "newsapi.yml", `
type: newsapi
api_key: "literal-key"
settings:
  enabled: true
  requests_per_hour: 50
`)
	writeConfig(t, tempDir, "gnews.yml", `
type: gnews
api_key_env: TEST_GNEWS_KEY
settings:
  enabled: true
  timeout: 10
`)
	writeConfig(t, tempDir, "bbc.yml", `
type: rss
url: "https://feeds.bbci.co.uk/news/rss.xml"
settings:
  enabled: false
  extract_content: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 3 {
		t.Errorf("Expected 3 configs, got %d", configCache.GetConfigCount())
	}

	configs := configCache.GetConfigs()
	names := []string{configs[0].Name, configs[1].Name, configs[2].Name}
	if strings.Join(names, ",") != "bbc,gnews,newsapi" {
		t.Errorf("Expected configs sorted by name, got %v", names)
	}

	newsapi, err := configCache.GetConfig("newsapi")
	if err != nil {
		t.Fatal(err)
	}
	if newsapi.Credential() != "literal-key" {
		t.Errorf("Expected literal credential, got %q", newsapi.Credential())
	}
	if newsapi.Settings.MaxItems != 100 || newsapi.Settings.Timeout != 30 {
		t.Errorf("Expected defaults max_items=100 timeout=30, got %d/%d", newsapi.Settings.MaxItems, newsapi.Settings.Timeout)
	}
	if newsapi.Settings.RequestsPerHour != 50 {
		t.Errorf("Expected requests_per_hour 50, got %d", newsapi.Settings.RequestsPerHour)
	}

	gnews, _ := configCache.GetConfig("gnews")
	if gnews.Credential() != "from-env" {
		t.Errorf("Expected credential from environment, got %q", gnews.Credential())
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 2 {
		t.Errorf("Expected 2 enabled configs, got %d", len(enabled))
	}

	adapters, err := NewAdapters(configCache.GetConfigs(), http.DefaultClient, "test", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(adapters) != 2 {
		t.Errorf("Expected 2 adapters for enabled sources, got %d", len(adapters))
	}
}

func TestConfigCacheMissingKeyStillLoads(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "newsapi.yml", `
type: newsapi
settings:
  enabled: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatalf("Expected blank credential to load, got: %v", err)
	}

	config, _ := configCache.GetConfig("newsapi")
	adapter, err := NewAdapter(config, http.DefaultClient, "test")
	if err != nil {
		t.Fatal(err)
	}
	if err := adapter.Validate(); err == nil {
		t.Error("Expected validation error for blank credential")
	}
}

func TestConfigCacheInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"unknown type", "type: atom\nurl: https://x\n", "invalid source type"},
		{"rss without url", "type: rss\n", "URL is required"},
		{"negative limit", "type: newsapi\nsettings:\n  requests_per_hour: -1\n", "non-negative"},
		{"bad yaml", "type: [rss\n", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeConfig(t, tempDir, "broken.yml", tt.content)

			err := NewConfigCache(tempDir).Run()
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Expected error containing %q, got: %v", tt.errText, err)
			}
		})
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "absent"))
	if err := configCache.Run(); err != nil {
		t.Errorf("Expected no error for missing directory, got: %v", err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs, got %d", configCache.GetConfigCount())
	}
	if _, err := configCache.GetConfig("nope"); err == nil {
		t.Error("Expected error for unknown config")
	}
}

func TestNewAdapterUnknownType(t *testing.T) {
	if _, err := NewAdapter(&Config{Name: "x", Type: "carrier-pigeon"}, nil, ""); err == nil {
		t.Error("Expected error for unknown type")
	}
}
