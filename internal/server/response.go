package server

import (
	"encoding/json"
	"net/http"

	"github.com/programmers-nightmare/research-helper/internal/pipeline"
)

// uploadResponse is the JSON body returned by a successful upload run.
type uploadResponse struct {
	Saved    []string         `json:"saved"`
	Rejected []string         `json:"rejected,omitempty"`
	Run      *pipeline.Result `json:"run"`
}

// filterResponse is the JSON body returned by a successful filter pass.
type filterResponse struct {
	Artifact string `json:"artifact"`
	Rows     int    `json:"rows"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort log; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
