package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/ollama"

	"github.com/zenoharsh/ragserve/internal/chat"
	"github.com/zenoharsh/ragserve/internal/config"
	"github.com/zenoharsh/ragserve/internal/knowledge"
	"github.com/zenoharsh/ragserve/internal/log"
	"github.com/zenoharsh/ragserve/internal/rag"
)

// Setup initializes the application: the Ollama-backed model runtime, the
// persisted vector index, and the query engine.
//
// Failure to reach the model runtime is fatal. Failure to provision the
// index is not: the app comes up degraded with IndexErr set, so the HTTP
// surface can keep answering with a fixed notice.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	a := &App{Config: cfg, Logger: logger}

	g, embedder, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g
	a.Embedder = embedder

	store, err := rag.Provision(ctx, rag.Options{
		DocDir:       cfg.DocDir,
		StorageDir:   cfg.StorageDir,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	}, knowledge.NewEmbeddingFunc(embedder), logger)
	if err != nil {
		logger.Error("index provisioning failed, running degraded", "error", err)
		a.IndexErr = err
		return a, nil
	}
	a.Store = store

	engine, err := chat.New(chat.Config{
		Genkit:    g,
		Store:     store,
		Logger:    logger,
		ModelName: "ollama/" + cfg.ModelName,
		TopK:      cfg.TopK,
		Timeout:   cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating query engine: %w", err)
	}
	a.Engine = engine

	return a, nil
}

// provideGenkit initializes Genkit with the Ollama plugin and registers the
// chat model and the embedder. Ollama requires explicit model registration.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, ai.Embedder, error) {
	ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}

	g := genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
	if g == nil {
		return nil, nil, errors.New("initializing genkit with ollama provider")
	}

	ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
		Name: cfg.ModelName,
		Type: "chat",
	}, nil)
	ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)

	embedder := ollama.Embedder(g, cfg.OllamaHost)
	if embedder == nil {
		return nil, nil, fmt.Errorf("embedder %q not found on ollama host %q", cfg.EmbedderModel, cfg.OllamaHost)
	}

	logger.Info("initialized genkit with ollama provider",
		"model", cfg.ModelName,
		"embedder", cfg.EmbedderModel,
		"host", cfg.OllamaHost,
	)

	return g, embedder, nil
}
