package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"GoQuestionsAI/app/configs"
	"GoQuestionsAI/app/logs"
	"GoQuestionsAI/app/runtime"
	"GoQuestionsAI/app/vectordb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	envFile    string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Define, import and query Jeopardy questions in a vector store",
		Long: `questions talks to a hosted vector store (weaviate or qdrant).

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. YAML file (--config), with ${VAR} references expanded
  3. .env file (--env-file, or .env in the current directory)
  4. Environment variables
  5. Command line flags

Environment variables:
  OPENAI_KEY          OpenAI key forwarded to the store modules
  OPENAI_BASE_URL     OpenAI compatible endpoint (qdrant backend)
  VECTOR_BACKEND      weaviate or qdrant (default: weaviate)
  WEAVIATE_SCHEME     http or https (default: http)
  WEAVIATE_HOST       host:port (default: localhost:8080)
  WEAVIATE_API_KEY    bearer token for the store
  QDRANT_HOST         (default: localhost)
  QDRANT_PORT         gRPC port (default: 6334)
  QDRANT_API_KEY
  JOURNAL_PATH        sqlite file recording import submissions
  LOG_LEVEL           debug, info, warn, error (default: info)
  LOG_FORMAT          console or json (default: console)`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "env file to load (default .env)")

	cmd.AddCommand(schemaCmd(flags))
	cmd.AddCommand(importCmd(flags))
	cmd.AddCommand(queryCmd(flags))
	cmd.AddCommand(runCmd(flags))
	cmd.AddCommand(historyCmd(flags))
	return cmd
}

// app bundles what every subcommand needs. close releases the store and journal.
type app struct {
	cfg     *configs.Config
	logger  *zap.Logger
	runtime *runtime.Runtime
	close   func()
}

// setup loads the configuration, lets mutate apply flag overrides, validates
// the result and opens the journal and, when withStore is set, the store.
func setup(flags *globalFlags, withStore bool, mutate func(*configs.Config) error) (*app, error) {
	cfg, err := configs.Load(flags.configPath, flags.envFile)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		if err = mutate(cfg); err != nil {
			return nil, err
		}
		if err = cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := logs.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	var store vectordb.Interface = nopStore{}
	if withStore {
		if store, err = cfg.BuildStore(logger); err != nil {
			_ = logger.Sync()
			return nil, err
		}
	}
	journal, err := cfg.BuildJournal()
	if err != nil {
		_ = store.Close()
		_ = logger.Sync()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		runtime: runtime.NewRuntime(store, journal, logger),
		close: func() {
			if err := journal.Close(); err != nil {
				logger.Warn("⚠️ closing journal", zap.Error(err))
			}
			if err := store.Close(); err != nil {
				logger.Warn("⚠️ closing store", zap.Error(err))
			}
			_ = logger.Sync()
		},
	}, nil
}

// nopStore stands in for commands that only read the journal.
type nopStore struct{ vectordb.Interface }

func (nopStore) Close() error { return nil }
