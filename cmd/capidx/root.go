// Command capidx is the CLI driver (C12): a thin spf13/cobra + spf13/viper
// binary over the storage/search/embedding/tokenizer packages. Config
// precedence and env-var binding mirror the teacher's internal/config
// package; commands are grounded on the shape of the teacher's cmd/bd
// subcommands (one file per verb, a shared root command wiring
// PersistentPreRunE to config.Initialize) without its issue-tracker
// semantics.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arkohut/pensieve/internal/config"
	"github.com/arkohut/pensieve/internal/embedding"
	"github.com/arkohut/pensieve/internal/search"
	"github.com/arkohut/pensieve/internal/storage"
	"github.com/arkohut/pensieve/internal/telemetry"
	"github.com/arkohut/pensieve/internal/tokenizer"
)

var telemetryShutdown func(context.Context) error

var rootCmd = &cobra.Command{
	Use:           "capidx",
	Short:         "Hybrid lexical/vector index over indexed screen-capture entities",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return err
		}
		shutdown, err := telemetry.Init("capidx")
		if err != nil {
			return err
		}
		telemetryShutdown = shutdown
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return telemetryShutdown(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "override database_url from config")
	rootCmd.AddCommand(libraryCmd, ingestCmd, indexCmd, searchCmd, pluginsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openStorage opens the backend storage.Open selects from database_url,
// applying the --db flag override if set. Callers must Close() the result.
func openStorage(ctx context.Context, cmd *cobra.Command) (storage.Storage, error) {
	if dbFlag, _ := cmd.Flags().GetString("db"); dbFlag != "" {
		config.Set("database_url", dbFlag)
	}
	return storage.Open(ctx, config.GetString("database_url"))
}

// openTokenizer builds the tokenizer named by tokenizer.wasm_path, or the
// pure-Go fallback when unset (C11).
func openTokenizer(ctx context.Context) (tokenizer.Tokenizer, error) {
	path := config.GetString("tokenizer.wasm_path")
	if path == "" {
		return tokenizer.NewFallback(), nil
	}
	return tokenizer.Open(ctx, path)
}

// openEmbedder builds the configured Ollama embedder (C10). An empty
// embedding.ollama_host uses the Ollama client's environment defaults, so
// nil is returned only when the embedder cannot be constructed; callers
// pass the result straight to search.Ranker, whose vector leg tolerates a
// nil Embedder by skipping vector search.
func openEmbedder() embedding.Embedder {
	host := config.GetString("embedding.ollama_host")
	model := config.GetString("embedding.ollama_model")
	dim := config.GetInt("embedding.num_dim")
	emb, err := embedding.NewOllamaEmbedder(host, model, dim)
	if err != nil {
		return nil
	}
	return emb
}

// newRanker assembles the hybrid ranker (C6) from the configured tokenizer
// and embedder over store.
func newRanker(ctx context.Context, store storage.Storage) (*search.Ranker, error) {
	tok, err := openTokenizer(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening tokenizer: %w", err)
	}
	return &search.Ranker{Store: store, Tokenizer: tok, Embedder: openEmbedder()}, nil
}

// cmdContext returns a background context bounded by a generous timeout,
// since CLI invocations are one-shot and should not hang indefinitely on a
// wedged backend.
func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Minute)
}
