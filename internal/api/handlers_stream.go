package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dgallion1/speedread/internal/pacing"
	"github.com/dgallion1/speedread/internal/pipeline"
	"github.com/dgallion1/speedread/internal/stream"
	"github.com/gorilla/websocket"
)

const (
	streamWriteWait = 10 * time.Second
	streamReadWait  = 60 * time.Second
)

type streamRequest struct {
	Text           string `json:"text"`
	WPM            int    `json:"wpm"`
	Speed          string `json:"speed"`
	DetectHeadings *bool  `json:"detect_headings"`
}

type streamError struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleStream plays one text over a websocket. The client sends a single
// request message; the server answers with one frame per display slot at
// the requested pace and a final "complete" frame. Any message from the
// client after the request stops playback.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "request_id", RequestIDFrom(r.Context()), "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.cfg.MaxRequestBytes)
	log := s.log.With("request_id", RequestIDFrom(r.Context()))

	conn.SetReadDeadline(time.Now().Add(streamReadWait))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		log.Debug("stream closed before request", "error", err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	req, wpm, err := s.parseStreamRequest(msg)
	if err != nil {
		s.sendStreamError(conn, err)
		return
	}
	res, err := s.proc.ProcessText(req.Text, detectHeadings(req.DetectHeadings))
	if err != nil {
		if !errors.Is(err, pipeline.ErrInvalidInput) {
			log.Error("stream processing failed", "error", err)
		}
		s.sendStreamError(conn, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		// any further message or a close ends playback
		conn.ReadMessage()
	}()

	frames := stream.Frames(res)
	err = stream.Play(ctx, len(frames), stream.Interval(wpm), func(i int) error {
		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteJSON(frames[i])
	})
	if err != nil {
		log.Debug("stream stopped", "frames", len(frames), "error", err)
		return
	}
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := conn.WriteJSON(stream.Complete(len(frames))); err != nil {
		return
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "complete"),
		time.Now().Add(streamWriteWait))
}

func (s *Server) parseStreamRequest(msg []byte) (*streamRequest, int, error) {
	var doc any
	if err := json.Unmarshal(msg, &doc); err != nil {
		return nil, 0, pipeline.Invalid("request must be valid JSON")
	}
	if err := s.schemas.stream.Validate(doc); err != nil {
		return nil, 0, pipeline.Invalid("%s", schemaMessage(err))
	}
	var req streamRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		return nil, 0, pipeline.Invalid("request must be valid JSON")
	}

	wpm := req.WPM
	if wpm == 0 && req.Speed != "" {
		preset, ok := pacing.ReadingSpeeds[req.Speed]
		if !ok {
			return nil, 0, pipeline.Invalid("unknown speed %q", req.Speed)
		}
		wpm = preset
	}
	if wpm == 0 {
		wpm = pacing.ReadingSpeeds["average"]
	}
	rng := pacing.WPMRange{Min: s.cfg.StreamMinWPM, Max: s.cfg.StreamMaxWPM}
	if err := rng.Validate(wpm); err != nil {
		return nil, 0, pipeline.Invalid("wpm must be between %d and %d", rng.Min, rng.Max)
	}
	return &req, wpm, nil
}

func (s *Server) sendStreamError(conn *websocket.Conn, err error) {
	title := "Internal Server Error"
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput):
		title = "Invalid input"
	case errors.Is(err, pipeline.ErrNotImplemented):
		title = "Not Implemented"
	}
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	conn.WriteJSON(streamError{Type: "error", Error: title, Message: pipeline.Message(err)})
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, title),
		time.Now().Add(streamWriteWait))
}
