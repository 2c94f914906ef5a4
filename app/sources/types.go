package sources

import (
	"cmp"
	"context"
	"os"

	"github.com/lysyi3m/news-comb/app/news"
)

const (
	TypeNewsAPI = "newsapi"
	TypeGNews   = "gnews"
	TypeRSS     = "rss"
)

const (
	DefaultNewsAPIURL = "https://newsapi.org/v2/top-headlines?language=en&pageSize=100&apiKey={api_key}"
	DefaultGNewsURL   = "https://gnews.io/api/v4/top-headlines?lang=en&max=100&apikey={api_key}"
)

const keyPlaceholder = "{api_key}"

// Adapter fetches one external source and normalizes its entries into articles.
type Adapter interface {
	Name() string
	// Validate reports a configuration error without touching the network.
	Validate() error
	Fetch(ctx context.Context) ([]news.Article, error)
}

type Config struct {
	Name      string         // Derived from filename (without .yml extension)
	Type      string         `yaml:"type"`
	URL       string         `yaml:"url"`
	APIKey    string         `yaml:"api_key"`
	APIKeyEnv string         `yaml:"api_key_env"`
	Settings  ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	Timeout         int  `yaml:"timeout"` // seconds
	MaxItems        int  `yaml:"max_items"`
	RequestsPerHour int  `yaml:"requests_per_hour"` // 0 disables the hourly counter
	ExtractContent  bool `yaml:"extract_content"`
}

// Credential returns the literal api_key, or the value of api_key_env when no literal is set.
func (c *Config) Credential() string {
	var fromEnv string
	if c.APIKeyEnv != "" {
		fromEnv = os.Getenv(c.APIKeyEnv)
	}
	return cmp.Or(c.APIKey, fromEnv)
}
