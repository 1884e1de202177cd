package config

import (
	"time"

	env "github.com/netflix/go-env"
)

// SlackConfig holds Slack-related settings
type SlackConfig struct {
	BotToken string `env:"SLACK_BOT_TOKEN,required=true"`
	// App-level token for Socket Mode (xapp-)
	AppToken        string        `env:"SLACK_APP_TOKEN,required=true"`
	ResponseTimeout time.Duration `env:"SLACK_RESPONSE_TIMEOUT,default=60s"`
	// Reply to plain channel messages, not just mentions and DMs
	ReplyToChannelMessages bool `env:"SLACK_REPLY_TO_CHANNEL_MESSAGES,default=false"`
	// Reaction emoji attached while an answer is being generated
	ProgressEmoji string `env:"SLACK_PROGRESS_EMOJI,default=hourglass_flowing_sand"`
	// Maximum prior turns loaded from a thread's history per question
	ThreadHistoryMaxTurns int `env:"SLACK_THREAD_HISTORY_MAX_TURNS,default=20"`
	// Rate limits per minute
	RateUserPerMinute    int `env:"SLACK_RATE_USER_PER_MINUTE,default=10"`
	RateChannelPerMinute int `env:"SLACK_RATE_CHANNEL_PER_MINUTE,default=30"`
	RateGlobalPerMinute  int `env:"SLACK_RATE_GLOBAL_PER_MINUTE,default=100"`
}

// LoadSlack loads Slack configuration from environment variables
func LoadSlack() (*SlackConfig, error) {
	var cfg SlackConfig
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, err
	}
	if cfg.ThreadHistoryMaxTurns <= 0 {
		cfg.ThreadHistoryMaxTurns = 20
	}
	if cfg.ProgressEmoji == "" {
		cfg.ProgressEmoji = "hourglass_flowing_sand"
	}
	return &cfg, nil
}
