// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"accessible_map/internal/app"
	"accessible_map/internal/chat"
	"accessible_map/internal/domain"
)

type Handlers struct {
	Sessions *app.Sessions
	Chat     *chat.Engine
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", h.openSession)
		r.Get("/{id}", h.getSession)
		r.Post("/{id}/viewport", h.settleViewport)
		r.Delete("/{id}", h.closeSession)
	})
	s.mux.Post("/v1/chat", h.askChat)
	s.mux.Get("/v1/chat/greeting", h.greeting)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeSessionErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrSessionNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "session not found")
	case errors.Is(err, app.ErrTooManySessions):
		writeProblem(w, http.StatusServiceUnavailable, "Too Many Sessions", "session capacity reached, retry later")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// caller went away during the initial fetch; the session is already discarded
		log.Debug().Err(err).Msg("session open abandoned")
		writeProblem(w, http.StatusServiceUnavailable, "Abandoned", "request ended before the initial fetch completed")
	default:
		log.Error().Err(err).Msg("session operation failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "unexpected session error")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal view for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

type boundsBody struct {
	South *float64 `json:"south"`
	West  *float64 `json:"west"`
	North *float64 `json:"north"`
	East  *float64 `json:"east"`
}

// decodeBounds requires all four edges; ordering is the map widget's concern.
func decodeBounds(r io.Reader) (domain.Bounds, bool) {
	var b boundsBody
	if err := json.NewDecoder(io.LimitReader(r, 1<<16)).Decode(&b); err != nil {
		return domain.Bounds{}, false
	}
	if b.South == nil || b.West == nil || b.North == nil || b.East == nil {
		return domain.Bounds{}, false
	}
	return domain.Bounds{South: *b.South, West: *b.West, North: *b.North, East: *b.East}, true
}

func (h *Handlers) openSession(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBounds(r.Body)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid bounds", "body must be {south,west,north,east} numbers")
		return
	}
	v, err := h.Sessions.Open(r.Context(), b)
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+v.ID)
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.Sessions.View(chi.URLParam(r, "id"))
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not encode session")
		return
	}
	// the widget polls this; unchanged marker sets short-circuit
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getSession body")
	}
}

func (h *Handlers) settleViewport(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBounds(r.Body)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid bounds", "body must be {south,west,north,east} numbers")
		return
	}
	if err := h.Sessions.Settle(chi.URLParam(r, "id"), b); err != nil {
		writeSessionErr(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Close(chi.URLParam(r, "id")); err != nil {
		writeSessionErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func (h *Handlers) askChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid message", "body must be {\"message\": string}")
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Answer: h.Chat.Answer(req.Message)})
}

func (h *Handlers) greeting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, chatResponse{Answer: chat.Greeting})
}
