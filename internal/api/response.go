package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zenoharsh/ragserve/internal/log"
)

// writeJSON writes a JSON response with the given status code.
// Uses buffer-first strategy so headers are only sent after successful
// encoding, allowing a proper 500 if encoding fails.
func writeJSON(w http.ResponseWriter, status int, data any, logger log.Logger) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		logger.Error("encoding JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		// Client disconnects are common and expected.
		logger.Debug("writing response body", "error", err)
	}
}
