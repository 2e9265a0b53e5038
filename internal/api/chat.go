package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zenoharsh/ragserve/internal/chat"
)

// Client-facing notices. Errors travel in-band as plain text over a 200
// response so browser streaming readers handle every outcome the same way.
const (
	degradedNotice   = "Error: The document index is not available."
	validationNotice = "Please ask a valid question."
	failureNotice    = "Sorry, an error occurred while processing your request."
	busyNotice       = "The server is busy. Please try again in a moment."
)

const (
	// minQuestionLength is the shortest trimmed message accepted.
	minQuestionLength = 2

	// tokenPacing is the delay between streamed tokens. Smooths bursty
	// model output into a steady client-visible stream.
	tokenPacing = 10 * time.Millisecond

	// maxRequestBody bounds the chat request payload.
	maxRequestBody = 1 << 20
)

// Asker answers a question, forwarding tokens as they are generated.
// *chat.Engine satisfies it; tests substitute stubs.
type Asker interface {
	Ask(ctx context.Context, question string, onToken chat.TokenCallback) (string, error)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	// Degraded mode answers immediately without consuming a slot.
	if s.engine == nil {
		s.writeNotice(w, degradedNotice)
		return
	}

	if err := s.gate.Acquire(ctx); err != nil {
		if errors.Is(err, ErrGateSaturated) {
			s.logger.Warn("chat request rejected, gate saturated", "ip", r.RemoteAddr)
			s.writeNotice(w, busyNotice)
		}
		return
	}
	defer s.gate.Release()

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.logger.Debug("malformed chat request", "error", err)
		s.writeNotice(w, validationNotice)
		return
	}

	question := strings.TrimSpace(req.Message)
	if utf8.RuneCountInString(question) < minQuestionLength {
		s.writeNotice(w, validationNotice)
		return
	}

	s.logger.Info("received question", "length", len(question))

	flusher, canFlush := w.(http.Flusher)
	wroteAny := false

	_, err := s.engine.Ask(ctx, question, func(ctx context.Context, token string) error {
		if wroteAny {
			// Pacing between tokens, not before the first one.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.pacing):
			}
		}
		if _, err := w.Write([]byte(token)); err != nil {
			return err
		}
		if canFlush {
			flusher.Flush()
		}
		wroteAny = true
		return nil
	})
	if err != nil {
		s.logger.Error("answering question", "error", err)
		// Tokens already sent stay sent; the apology is appended in-band
		// unless the client itself went away.
		if ctx.Err() == nil {
			s.writeNotice(w, failureNotice)
		}
	}
}

// writeNotice streams a fixed in-band text and flushes it.
func (s *Server) writeNotice(w http.ResponseWriter, notice string) {
	if _, err := w.Write([]byte(notice)); err != nil {
		s.logger.Debug("writing notice", "error", err)
		return
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
