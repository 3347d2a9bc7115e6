// Package watch streams interview turns to live observers, over WebSocket
// for dashboards that talk back (ping/pong) and over Server-Sent Events for
// anything that just wants a feed.
package watch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/shipwise/intake/internal/logging"
	interviewService "github.com/shipwise/intake/internal/service/interview"
	"github.com/shipwise/intake/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Handler serves live transcript feeds.
type Handler struct {
	svc      *interviewService.Service
	log      *logging.Logger
	upgrader websocket.Upgrader
}

// New creates a watch handler.
func New(svc *interviewService.Service, log *logging.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log.Sub("watch"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the live feed routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/interview/{sessionID}/ws", h.handleWebSocket)
	r.Get("/interview/{sessionID}/events", h.handleSSE)
}

// snapshot replays the turns recorded so far, so a late observer sees the
// full transcript before live events take over.
func (h *Handler) snapshot(ctx context.Context, sessionID string) ([]interviewService.Event, error) {
	session, err := h.svc.Responses(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	events := make([]interviewService.Event, 0, len(session.History))
	index := session.QuestionIndex()
	for _, turn := range session.History {
		events = append(events, interviewService.Event{
			SessionID:     sessionID,
			Turn:          turn,
			Status:        session.Status,
			QuestionIndex: index,
		})
	}
	return events, nil
}

func (h *Handler) respondSnapshotError(w http.ResponseWriter, err error) {
	if errors.Is(err, interviewService.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	h.log.Error().Err(err).Msg("loading transcript snapshot failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	replay, err := h.snapshot(r.Context(), sessionID)
	if err != nil {
		h.respondSnapshotError(w, err)
		return
	}

	events, cancel := h.svc.Hub().Subscribe(sessionID)
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	// drain control frames, close the feed when the client goes away
	go func() {
		defer stop()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			conn.SetReadDeadline(time.Now().Add(readTimeout))
		}
	}()

	for _, event := range replay {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	replay, err := h.snapshot(r.Context(), sessionID)
	if err != nil {
		h.respondSnapshotError(w, err)
		return
	}

	events, cancel := h.svc.Hub().Subscribe(sessionID)
	defer cancel()

	utils.SetupSSEHeaders(w)

	for _, event := range replay {
		utils.SendSSEEvent(w, flusher, "turn", event)
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			utils.SendSSEEvent(w, flusher, "turn", event)
		}
	}
}
