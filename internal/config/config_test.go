package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("parses environment overrides", func(t *testing.T) {
		t.Setenv("OPENSEARCH_ENDPOINT", "https://opensearch.example.com")
		t.Setenv("OPENSEARCH_INDEX", "kb")
		t.Setenv("RETRIEVAL_CONTEXT_SIZE", "7")
		t.Setenv("BEDROCK_CHAT_MAX_TOKENS", "2048")

		cfg, err := Load()
		require.NoError(t, err)

		require.Equal(t, "kb", cfg.OpenSearchIndex)
		require.Equal(t, 7, cfg.ContextSize)
		require.Equal(t, 2048, cfg.ChatMaxTokens)
		require.Equal(t, "us-east-1", cfg.BedrockRegion, "region should default")
	})

	t.Run("clamps out-of-range values", func(t *testing.T) {
		t.Setenv("OPENSEARCH_ENDPOINT", "https://opensearch.example.com")
		t.Setenv("RETRIEVAL_CONTEXT_SIZE", "100")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 20, cfg.ContextSize, "context size should clamp to the safe maximum")
	})

	t.Run("rejects missing endpoint scheme", func(t *testing.T) {
		t.Setenv("OPENSEARCH_ENDPOINT", "opensearch.example.com")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoadSlack(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")
	t.Setenv("SLACK_THREAD_HISTORY_MAX_TURNS", "-1")

	cfg, err := LoadSlack()
	require.NoError(t, err)

	require.Equal(t, "xoxb-test", cfg.BotToken)
	require.Equal(t, 20, cfg.ThreadHistoryMaxTurns, "invalid bound should normalize to default")
	require.Equal(t, "hourglass_flowing_sand", cfg.ProgressEmoji)
	require.False(t, cfg.ReplyToChannelMessages)
}
