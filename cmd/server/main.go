// Command server runs the chatbot API and its maintenance commands.
package main

import (
	"os"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/spf13/cobra"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "chatbot",
		Short: "Retrieval-augmented customer support chatbot",
		Long:  `Answers customer questions from the reference documents indexed in Elasticsearch, screening every message for harmful content and unclear wording first.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.Init(configPath)
			cfg := config.Conf
			log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
		},
		Run: runServe,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket API (default)",
		Run:   runServe,
	}
	askCmd = &cobra.Command{
		Use:   "ask [message]",
		Short: "Process one chat message and print the reply envelope",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAsk,
	}
	ingestCmd = &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Split, embed and index reference documents",
		Long:  `Indexes local text files and, with --prefix, every object under that prefix in the MinIO bucket.`,
		Run:   runIngest,
	}
	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for the evaluation endpoint",
		Run:   runToken,
	}

	ingestPrefix string
	tokenSubject string
	tokenRole    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./configs/config.yaml", "path to the YAML configuration file")
	ingestCmd.Flags().StringVar(&ingestPrefix, "prefix", "", "MinIO object prefix to ingest")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "evaluator", "token subject")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "evaluator", "token role")

	rootCmd.AddCommand(serveCmd, askCmd, ingestCmd, tokenCmd)
}

func main() {
	defer log.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
