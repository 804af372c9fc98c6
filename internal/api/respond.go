package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dgallion1/speedread/internal/pipeline"
	"github.com/dustin/go-humanize"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, title, msg string, code int) {
	writeJSON(w, code, errorBody{Error: title, Message: msg, Status: code})
}

// writeError maps an error kind to a status. Internal errors are logged in
// full and reported generically.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput):
		jsonError(w, "Invalid input", pipeline.Message(err), http.StatusBadRequest)
	case errors.Is(err, pipeline.ErrNotImplemented):
		jsonError(w, "Not Implemented", pipeline.Message(err), http.StatusNotImplemented)
	default:
		s.log.Error("request failed",
			slog.String("request_id", RequestIDFrom(r.Context())),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		jsonError(w, "Internal Server Error", "An unexpected error occurred", http.StatusInternalServerError)
	}
}

func tooLarge(w http.ResponseWriter, limit int64) {
	jsonError(w, "Payload Too Large",
		fmt.Sprintf("request exceeds the %s limit", humanize.IBytes(uint64(limit))),
		http.StatusRequestEntityTooLarge)
}

// decodeJSON reads a size-limited JSON body, checks it against schema and
// unmarshals it into dst. It writes the error response itself and reports
// whether the handler should continue.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, dst any) bool {
	limit := s.cfg.MaxRequestBytes
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			tooLarge(w, limit)
			return false
		}
		jsonError(w, "Bad Request", "could not read request body", http.StatusBadRequest)
		return false
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		jsonError(w, "Bad Request", "request body must be valid JSON", http.StatusBadRequest)
		return false
	}
	if err := schema.Validate(doc); err != nil {
		jsonError(w, "Bad Request", schemaMessage(err), http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		jsonError(w, "Bad Request", "request body must be valid JSON", http.StatusBadRequest)
		return false
	}
	return true
}
