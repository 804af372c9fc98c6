package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/speedread/internal/chunker"
	"github.com/dgallion1/speedread/internal/parser"
	"github.com/dgallion1/speedread/internal/pipeline"
	"github.com/dustin/go-humanize"
)

type extractResponse struct {
	Success    bool               `json:"success"`
	Extraction *parser.Extraction `json:"extraction"`
	Result     *pipeline.Result   `json:"result,omitempty"`
	Sessions   []chunker.Chunk    `json:"sessions,omitempty"`
}

type extractURLRequest struct {
	URL            string `json:"url"`
	Process        bool   `json:"process"`
	Sessions       bool   `json:"sessions"`
	DetectHeadings *bool  `json:"detect_headings"`
}

// extractOptions selects what accompanies an extraction in the response.
type extractOptions struct {
	process  bool // run the text through the pipeline
	headings bool
	sessions bool // split into reading sessions
}

func (s *Server) handleExtractURL(w http.ResponseWriter, r *http.Request) {
	var req extractURLRequest
	if !s.decodeJSON(w, r, s.schemas.extractURL, &req) {
		return
	}
	ex, err := s.fetcher.Extract(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidInput) {
			s.writeError(w, r, err)
			return
		}
		s.log.Warn("url extraction failed", "request_id", RequestIDFrom(r.Context()), "url", req.URL, "error", err)
		jsonError(w, "Bad Gateway", "could not fetch the requested url", http.StatusBadGateway)
		return
	}
	s.respondExtraction(w, r, ex, extractOptions{
		process:  req.Process,
		headings: detectHeadings(req.DetectHeadings),
		sessions: req.Sessions,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// extra 1MB for form overhead
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			tooLarge(w, s.cfg.MaxUploadBytes)
			return
		}
		jsonError(w, "Bad Request", "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "Bad Request", `request must include a "file" part`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := SanitizeFilename(header.Filename)
	if _, err := parser.ForFile(strings.TrimSuffix(strings.ToLower(filename), ".xz"), parser.Options{}); err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, "Payload Too Large",
			fmt.Sprintf("file exceeds max size (%s)", humanize.IBytes(uint64(s.cfg.MaxUploadBytes))),
			http.StatusRequestEntityTooLarge)
		return
	}
	if len(data) == 0 {
		jsonError(w, "Invalid input", "uploaded file is empty", http.StatusBadRequest)
		return
	}

	ex, err := parser.Extract(bytes.NewReader(data), filename, parser.Options{
		PDFMaxPages:   s.cfg.PDFMaxPages,
		PDFFallback:   s.cfg.PDFFallbackPdftotext,
		MaxEntryBytes: 4 * s.cfg.MaxUploadBytes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("document extracted",
		"request_id", RequestIDFrom(r.Context()),
		"filename", filename,
		"size", humanize.IBytes(uint64(len(data))),
		"words", ex.Words,
	)

	opts := extractOptions{headings: true}
	opts.process, _ = strconv.ParseBool(r.FormValue("process"))
	opts.sessions, _ = strconv.ParseBool(r.FormValue("sessions"))
	if v, err := strconv.ParseBool(r.FormValue("detect_headings")); err == nil {
		opts.headings = v
	}
	s.respondExtraction(w, r, ex, opts)
}

func (s *Server) respondExtraction(w http.ResponseWriter, r *http.Request, ex *parser.Extraction, opts extractOptions) {
	resp := extractResponse{Success: true, Extraction: ex}
	if opts.sessions && ex.Document != nil {
		resp.Sessions = chunker.Split(ex.Document, chunker.Config{
			TargetWords: s.cfg.SessionWords,
			MinWords:    s.cfg.SessionMinWords,
		})
	}
	if opts.process {
		res, err := s.proc.ProcessText(ex.Text, opts.headings)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Result = res
	}
	writeJSON(w, http.StatusOK, resp)
}

// SanitizeFilename keeps only the base name of an uploaded file and strips
// anything that could act as a path.
func SanitizeFilename(name string) string {
	// Normalise Windows separators so Base strips them too.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "_" {
		name = "unnamed"
	}
	return name
}
