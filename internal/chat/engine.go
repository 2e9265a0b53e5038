// Package chat implements the retrieval+generation query engine.
//
// The engine composes the vector index, the local LLM, a fixed QA prompt
// template, and a fixed retrieval breadth into one pipeline: retrieve the
// most similar chunks, assemble the prompt, stream the model's answer.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/zenoharsh/ragserve/internal/knowledge"
	"github.com/zenoharsh/ragserve/internal/log"
)

// Retriever is the slice of the knowledge store the engine depends on.
// *knowledge.Store satisfies it; tests substitute fakes.
type Retriever interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
}

// TokenCallback receives each generated text token as it becomes available.
// Returning an error aborts the stream.
type TokenCallback func(ctx context.Context, token string) error

// Config contains all required parameters for the query engine.
type Config struct {
	Genkit *genkit.Genkit
	Store  Retriever
	Logger log.Logger

	// ModelName is the provider-qualified chat model (e.g. "ollama/gemma2:2b").
	ModelName string

	// TopK is the number of most similar chunks retrieved per query.
	TopK int

	// Timeout bounds a single retrieval+generation call. Zero uses the
	// default of two minutes.
	Timeout time.Duration
}

func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.Store == nil {
		return errors.New("store is required")
	}
	if cfg.ModelName == "" {
		return errors.New("model name is required")
	}
	return nil
}

// Engine is the retrieval-augmented query pipeline.
//
// Engine is stateless aside from its read-only configuration; it is safe for
// concurrent use.
type Engine struct {
	g         *genkit.Genkit
	store     Retriever
	logger    log.Logger
	modelName string
	topK      int
	timeout   time.Duration
}

// New creates a query engine. The store must already be provisioned; a
// process without a store runs degraded with no engine at all.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = 3
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Engine{
		g:         cfg.Genkit,
		store:     cfg.Store,
		logger:    logger,
		modelName: cfg.ModelName,
		topK:      topK,
		timeout:   timeout,
	}, nil
}

// Ask answers question from the indexed corpus, forwarding each generated
// token to onToken as it arrives. The full answer text is returned once
// generation completes. The engine's timeout bounds the whole call.
func (e *Engine) Ask(ctx context.Context, question string, onToken TokenCallback) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	results, err := e.store.Search(ctx, question, knowledge.WithTopK(e.topK))
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}

	opts := []ai.GenerateOption{
		ai.WithModelName(e.modelName),
		ai.WithSystem(systemPrompt),
		ai.WithPrompt(renderPrompt(results, question)),
	}

	if onToken != nil {
		opts = append(opts, ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			if chunk == nil {
				return nil
			}
			for _, part := range chunk.Content {
				if part.Text == "" {
					continue
				}
				if err := onToken(ctx, part.Text); err != nil {
					return err
				}
			}
			return nil
		}))
	}

	e.logger.Debug("generating answer",
		"retrieved", len(results),
		"question_length", len(question),
	)

	resp, err := genkit.Generate(ctx, e.g, opts...)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	return resp.Text(), nil
}
