package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	env "github.com/netflix/go-env"
)

// Config holds process-wide settings for the answering bot.
type Config struct {
	// OpenSearch document index
	OpenSearchEndpoint        string  `env:"OPENSEARCH_ENDPOINT,required=true"`
	OpenSearchRegion          string  `env:"OPENSEARCH_REGION,default=us-east-1"`
	OpenSearchIndex           string  `env:"OPENSEARCH_INDEX,default=documents"`
	OpenSearchInsecureSkipTLS bool    `env:"OPENSEARCH_INSECURE_SKIP_TLS,default=false"`
	OpenSearchRateLimit       float64 `env:"OPENSEARCH_RATE_LIMIT,default=10"`
	OpenSearchRateBurst       int     `env:"OPENSEARCH_RATE_BURST,default=20"`

	// Bedrock chat model
	BedrockRegion string `env:"BEDROCK_REGION,default=us-east-1"`
	ChatModel     string `env:"BEDROCK_CHAT_MODEL,default=anthropic.claude-3-5-sonnet-20240620-v1:0"`
	ChatMaxTokens int    `env:"BEDROCK_CHAT_MAX_TOKENS,default=1024"`

	// Number of document chunks supplied to the model per question
	ContextSize int `env:"RETRIEVAL_CONTEXT_SIZE,default=5"`

	// Conversation history store. Empty path resolves to ~/.threadbot/history.db
	HistoryDBPath string `env:"HISTORY_DB_PATH"`

	// OpenTelemetry
	OTelEnabled              bool          `env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string        `env:"OTEL_SERVICE_NAME"`
	OTelExporterOTLPEndpoint string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string        `env:"OTEL_EXPORTER_OTLP_PROTOCOL"`
	OTelMetricExportInterval time.Duration `env:"OTEL_METRIC_EXPORT_INTERVAL,default=60s"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values and adjusts them to safe ranges
func validateConfig(config *Config) error {
	if config.ContextSize < 1 {
		config.ContextSize = 1
	}
	if config.ContextSize > 20 {
		config.ContextSize = 20
	}

	if config.ChatMaxTokens < 1 {
		config.ChatMaxTokens = 1024
	}

	if config.OpenSearchRateLimit <= 0 {
		config.OpenSearchRateLimit = 10
	}
	if config.OpenSearchRateBurst <= 0 {
		config.OpenSearchRateBurst = 20
	}

	if err := validateOpenSearchEndpoint(config.OpenSearchEndpoint); err != nil {
		return fmt.Errorf("OpenSearch configuration validation failed: %w", err)
	}

	return nil
}

// validateOpenSearchEndpoint validates the document index endpoint URL
func validateOpenSearchEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("OPENSEARCH_ENDPOINT is required")
	}

	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid OPENSEARCH_ENDPOINT URL format: %w", err)
	}

	if parsedURL.Scheme == "" {
		return fmt.Errorf("OPENSEARCH_ENDPOINT must include scheme (http:// or https://)")
	}

	if !strings.HasPrefix(parsedURL.Scheme, "http") {
		return fmt.Errorf("OPENSEARCH_ENDPOINT scheme must be http or https")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("OPENSEARCH_ENDPOINT must include a valid host")
	}

	return nil
}

// ResolveHistoryDBPath returns the configured history database path, creating
// the default directory under the user's home when no path is set.
func (c *Config) ResolveHistoryDBPath() (string, error) {
	if c.HistoryDBPath != "" {
		return c.HistoryDBPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".threadbot")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create .threadbot directory: %w", err)
	}

	return filepath.Join(dir, "history.db"), nil
}
