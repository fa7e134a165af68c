// Command ragserve loads a document directory, indexes it, and
// serves question answering and chat over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"ragserve/internal/chain"
	"ragserve/internal/config"
	"ragserve/internal/history"
	"ragserve/internal/index"
	"ragserve/internal/llm"
	"ragserve/internal/loader"
	"ragserve/internal/logger"
	"ragserve/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogLevel == "debug"})
	ctx := context.Background()

	// Model provider
	client, err := llm.NewClient(llm.ProviderConfig{
		Provider:    cfg.LLMProvider,
		APIKey:      cfg.ProviderAPIKey(),
		Model:       cfg.LLMModel,
		BaseURL:     cfg.OpenAIBaseURL,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return err
	}

	// Embeddings
	var embedder index.Embedder
	if key := cfg.EmbeddingKey(); key != "" {
		embedder = index.NewOpenAIEmbedder(key, cfg.EmbeddingModel, cfg.OpenAIBaseURL)
	} else {
		log.Warn().Msg("no embeddings api key, retrieval degrades to keyword search")
		embedder = index.NewNoopEmbedder(0)
	}

	// Index backend
	idx, err := newIndex(ctx, cfg, embedder, log)
	if err != nil {
		return err
	}
	defer idx.Close()

	// Load and index the document directory
	docLoader, err := loader.New(loader.FileType(cfg.DataType), loader.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		Workers:      cfg.LoaderWorkers,
	}, log)
	if err != nil {
		return err
	}

	if err := reindex(ctx, docLoader, idx, cfg.DataDir, log); err != nil {
		return err
	}

	// Optional reindex on data directory changes
	if cfg.WatchEnabled {
		watcher, err := loader.NewWatcher(cfg.DataDir, func() {
			if err := reindex(ctx, docLoader, idx, cfg.DataDir, log); err != nil {
				log.Error().Err(err).Msg("reindex failed")
			}
		}, log)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	// Chat history
	store, err := history.NewStore(cfg.HistoryDir, cfg.MaxHistoryLength, log)
	if err != nil {
		return err
	}

	// Chains and HTTP front end
	rag := chain.NewRAG(client, idx, chain.RAGOptions{TopK: cfg.RetrieverK}, log)
	chat := chain.NewChat(client, store, log)

	srv, err := server.New(server.Config{
		Addr:   cfg.Addr(),
		RAG:    rag,
		Chat:   chat,
		Logger: log,
	})
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	return srv.Stop()
}

func newIndex(ctx context.Context, cfg *config.Config, embedder index.Embedder, log zerolog.Logger) (index.Index, error) {
	switch cfg.IndexBackend {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.IndexPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create index dir: %w", err)
		}
		return index.NewHybrid(ctx, cfg.IndexPath, embedder, log)
	default:
		return index.NewMemory(embedder, cfg.EmbeddingConcurrency, log)
	}
}

// reindex rebuilds the index from the data directory. It resets
// first so a persistent backend does not accumulate a second copy of
// the corpus on every restart or watch event.
func reindex(ctx context.Context, docLoader *loader.Loader, idx index.Index, dataDir string, log zerolog.Logger) error {
	result, err := docLoader.LoadDir(ctx, dataDir)
	if err != nil {
		return err
	}
	if err := idx.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset index: %w", err)
	}
	for _, failure := range result.Failures {
		log.Warn().Str("path", failure.Path).Err(failure.Err).Msg("skipped unreadable file")
	}
	if err := idx.Add(ctx, result.Documents); err != nil {
		return err
	}
	log.Info().Int("chunks", len(result.Documents)).Str("dir", dataDir).Msg("documents indexed")
	return nil
}
