package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/helpdeskhq/threadbot/internal/answer"
	appcfg "github.com/helpdeskhq/threadbot/internal/config"
	"github.com/helpdeskhq/threadbot/internal/history"
	"github.com/helpdeskhq/threadbot/internal/llm"
	"github.com/helpdeskhq/threadbot/internal/retrieval"
)

var chatContextSize int

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat against the document index without Slack",
	Long: `Start a local chat session that exercises the same answering pipeline
as the Slack bot: retrieval from the OpenSearch index, generation with the
configured Bedrock model, and per-session conversation history.

Examples:
  threadbot chat
  threadbot chat --context-size 10`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().IntVarP(&chatContextSize, "context-size", "c", 0, "Number of context documents to retrieve (overrides config)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := appcfg.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if chatContextSize > 0 {
		cfg.ContextSize = chatContextSize
	}

	logger := log.New(os.Stdout, "chat ", log.LstdFlags)
	ctx := context.Background()

	store, err := history.NewSQLiteStore(filepath.Join(os.TempDir(), "threadbot-chat.db"))
	if err != nil {
		return fmt.Errorf("failed to open session history store: %w", err)
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
	pipeline := answer.NewPipeline(llm.NewClient(awsConfig, cfg.ChatModel, cfg.ChatMaxTokens), cfg.ContextSize, logger)

	// each session is its own thread
	mem := history.Bind(store, "local-"+uuid.NewString(), 20)

	fmt.Printf("Chat ready! Using model: %s\n", cfg.ChatModel)
	fmt.Println("Type 'exit' or 'quit' to end the session")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		handle, err := provider.Get(ctx)
		if err != nil {
			logger.Printf("event=retrieval status=error err=%v", err)
			continue
		}

		text, err := pipeline.Answer(ctx, question, mem, handle)
		if err != nil {
			logger.Printf("event=answer status=error err=%v", err)
			continue
		}

		fmt.Println()
		fmt.Println(text)
		fmt.Println()
	}
}
