package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	"github.com/helpdeskhq/threadbot/internal/answer"
	appcfg "github.com/helpdeskhq/threadbot/internal/config"
	"github.com/helpdeskhq/threadbot/internal/history"
	"github.com/helpdeskhq/threadbot/internal/llm"
	"github.com/helpdeskhq/threadbot/internal/observability"
	"github.com/helpdeskhq/threadbot/internal/retrieval"
	"github.com/helpdeskhq/threadbot/internal/slackbot"
)

var botContextSize int

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Start the Slack answering bot (Socket Mode)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appcfg.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		scfg, err := appcfg.LoadSlack()
		if err != nil {
			return fmt.Errorf("failed to load slack config: %w", err)
		}
		if botContextSize > 0 {
			cfg.ContextSize = botContextSize
		}

		logger := log.New(os.Stdout, "slack-bot ", log.LstdFlags)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		obsCfg, err := observability.LoadConfig(cfg)
		if err != nil {
			return err
		}
		shutdown, err := observability.Init(ctx, obsCfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Printf("event=observability_shutdown status=error err=%v", err)
			}
		}()

		dbPath, err := cfg.ResolveHistoryDBPath()
		if err != nil {
			return err
		}
		store, err := history.NewSQLiteStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer func() { _ = store.Close() }()

		provider := retrieval.NewProvider(func(ctx context.Context) (retrieval.Searcher, error) {
			return retrieval.NewClient(ctx, &retrieval.Config{
				Endpoint:        cfg.OpenSearchEndpoint,
				Region:          cfg.OpenSearchRegion,
				Index:           cfg.OpenSearchIndex,
				InsecureSkipTLS: cfg.OpenSearchInsecureSkipTLS,
				RateLimit:       cfg.OpenSearchRateLimit,
				RateBurst:       cfg.OpenSearchRateBurst,
			})
		})

		awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.BedrockRegion))
		if err != nil {
			return fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		generator := llm.NewClient(awsConfig, cfg.ChatModel, cfg.ChatMaxTokens)

		pipeline := answer.NewPipeline(generator, cfg.ContextSize, logger)

		client := slack.New(scfg.BotToken, slack.OptionAppLevelToken(scfg.AppToken))
		progress := slackbot.NewProgressMarker(client, scfg.ProgressEmoji, logger)
		processor := slackbot.NewProcessor(store, provider, pipeline, progress, scfg.ThreadHistoryMaxTurns, logger)

		bot, err := slackbot.NewSocketBot(client, processor, logger)
		if err != nil {
			return err
		}
		bot.SetReplyToChannelMessages(scfg.ReplyToChannelMessages)
		bot.SetRateLimiter(slackbot.NewRateLimiter(
			scfg.RateUserPerMinute,
			scfg.RateChannelPerMinute,
			scfg.RateGlobalPerMinute,
		))

		logger.Printf("Starting Slack answering bot (model=%s context_size=%d)...", cfg.ChatModel, cfg.ContextSize)
		return bot.Start(ctx)
	},
}

func init() {
	botCmd.Flags().IntVarP(&botContextSize, "context-size", "c", 0, "Number of context documents to retrieve (overrides config)")
}
