// Package app wires configuration, the model runtime, the vector index,
// and the query engine into one application container.
package app

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/zenoharsh/ragserve/internal/chat"
	"github.com/zenoharsh/ragserve/internal/config"
	"github.com/zenoharsh/ragserve/internal/knowledge"
	"github.com/zenoharsh/ragserve/internal/log"
)

// App is the assembled application.
//
// A fully provisioned App has a Store and an Engine. When index
// provisioning fails at startup the process stays up in degraded mode:
// Store and Engine are nil and IndexErr records why.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	Store    *knowledge.Store
	Engine   *chat.Engine

	// IndexErr is the provisioning failure that put the app in degraded
	// mode, nil when the index is available.
	IndexErr error
}

// Degraded reports whether the app came up without a usable index.
func (a *App) Degraded() bool {
	return a.Engine == nil
}

// Close releases application resources. The vector index persists itself
// on write, so shutdown has nothing to flush.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")
	return nil
}
