package sources

import (
	"fmt"
	"net/http"
	"time"
)

// NewAdapter builds the adapter described by config. Credentials are checked at fetch time.
func NewAdapter(config *Config, client *http.Client, userAgent string) (Adapter, error) {
	endpoint := Endpoint{
		Name:        config.Name,
		URLTemplate: config.URL,
		Credential:  config.Credential(),
		Timeout:     time.Duration(config.Settings.Timeout) * time.Second,
		MaxItems:    config.Settings.MaxItems,
		UserAgent:   userAgent,
		Client:      client,
	}

	switch config.Type {
	case TypeNewsAPI:
		return NewNewsAPI(endpoint), nil
	case TypeGNews:
		return NewGNews(endpoint), nil
	case TypeRSS:
		return NewRSS(endpoint), nil
	default:
		return nil, fmt.Errorf("unknown source type '%s'", config.Type)
	}
}

// NewAdapters builds a throttled adapter for every enabled config, ordered by name.
func NewAdapters(configs []*Config, client *http.Client, userAgent string, counter RequestCounter) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(configs))
	for _, config := range configs {
		if !config.Settings.Enabled {
			continue
		}

		adapter, err := NewAdapter(config, client, userAgent)
		if err != nil {
			return nil, fmt.Errorf("failed to build adapter %s: %w", config.Name, err)
		}

		adapters = append(adapters, Throttle(adapter, counter, config.Settings.RequestsPerHour))
	}
	return adapters, nil
}
