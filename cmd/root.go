package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "threadbot",
	Short: "Slack bot answering questions from an indexed knowledge base",
	Long: `threadbot answers questions posted in Slack by retrieving relevant
context from an OpenSearch document index and generating a response with an
AWS Bedrock model. Replies are threaded under the originating message and
each thread keeps its own conversation history across turns.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// optional .env for local development
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(chatCmd)
}
