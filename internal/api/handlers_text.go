package api

import (
	"net/http"

	"github.com/dgallion1/speedread/internal/pipeline"
)

type processTextRequest struct {
	Text           string `json:"text"`
	DetectHeadings *bool  `json:"detect_headings"`
}

// detectHeadings defaults to on when the client does not say.
func detectHeadings(v *bool) bool {
	return v == nil || *v
}

func (s *Server) handleProcessText(w http.ResponseWriter, r *http.Request) {
	var req processTextRequest
	if !s.decodeJSON(w, r, s.schemas.processText, &req) {
		return
	}
	res, err := s.proc.ProcessText(req.Text, detectHeadings(req.DetectHeadings))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type batchRequest struct {
	Texts          []string `json:"texts"`
	DetectHeadings *bool    `json:"detect_headings"`
}

type batchItem struct {
	Index   int              `json:"index"`
	Success bool             `json:"success"`
	Result  *pipeline.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func (s *Server) handleProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.decodeJSON(w, r, s.schemas.batch, &req) {
		return
	}

	items := s.proc.ProcessBatch(r.Context(), req.Texts, detectHeadings(req.DetectHeadings), s.cfg.BatchConcurrency)
	out := make([]batchItem, len(items))
	failed := 0
	for i, it := range items {
		out[i] = batchItem{Index: it.Index, Success: it.Err == nil, Result: it.Result}
		if it.Err != nil {
			failed++
			out[i].Error = pipeline.Message(it.Err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": failed == 0,
		"total":   len(items),
		"failed":  failed,
		"results": out,
	})
}

type calculateORPRequest struct {
	Word string `json:"word"`
}

func (s *Server) handleCalculateORP(w http.ResponseWriter, r *http.Request) {
	var req calculateORPRequest
	if !s.decodeJSON(w, r, s.schemas.calculateORP, &req) {
		return
	}
	res, err := s.proc.CalculateORP(req.Word)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
