package observability

import (
	"testing"

	"github.com/stretchr/testify/require"

	appconfig "github.com/helpdeskhq/threadbot/internal/config"
)

func TestLoadConfig(t *testing.T) {
	t.Run("disabled config needs no endpoint", func(t *testing.T) {
		cfg, err := LoadConfig(&appconfig.Config{})
		require.NoError(t, err)
		require.False(t, cfg.Enabled)
		require.Equal(t, "threadbot", cfg.ServiceName)
		require.Equal(t, defaultExporterProtocol, cfg.ExporterProtocol)
	})

	t.Run("enabled config requires endpoint", func(t *testing.T) {
		_, err := LoadConfig(&appconfig.Config{OTelEnabled: true})
		require.Error(t, err)
	})

	t.Run("unsupported protocol is rejected", func(t *testing.T) {
		_, err := LoadConfig(&appconfig.Config{
			OTelEnabled:              true,
			OTelExporterOTLPEndpoint: "https://collector.example.com",
			OTelExporterOTLPProtocol: "thrift",
		})
		require.Error(t, err)
	})

	t.Run("nil root config is rejected", func(t *testing.T) {
		_, err := LoadConfig(nil)
		require.Error(t, err)
	})
}
