// Package interview exposes the interview lifecycle over HTTP. The main
// endpoint is action-dispatched to keep widget clients down to a single URL.
package interview

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shipwise/intake/internal/logging"
	model "github.com/shipwise/intake/internal/model/interview"
	interviewService "github.com/shipwise/intake/internal/service/interview"
	"github.com/shipwise/intake/internal/store"
	"github.com/shipwise/intake/pkg/utils"
)

// Handler serves the interview endpoints.
type Handler struct {
	svc *interviewService.Service
	log *logging.Logger
}

// New creates an interview handler.
func New(svc *interviewService.Service, log *logging.Logger) *Handler {
	return &Handler{svc: svc, log: log.Sub("http")}
}

// RegisterRoutes registers the interview routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/interview", h.handleInterview)
	r.Post("/interview", h.handleInterview)
	r.Get("/check_responses", h.handleCheckResponses)
}

type interviewParams struct {
	Action       string `json:"action"`
	SessionID    string `json:"session_id"`
	UserResponse string `json:"user_response"`
}

// params merges query string and, for POST, JSON body values. Query wins so
// the action can always be routed from the URL.
func params(r *http.Request) interviewParams {
	var p interviewParams
	if r.Method == http.MethodPost && r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&p)
	}
	q := r.URL.Query()
	if v := q.Get("action"); v != "" {
		p.Action = v
	}
	if v := q.Get("session_id"); v != "" {
		p.SessionID = v
	}
	if v := q.Get("user_response"); v != "" {
		p.UserResponse = v
	}
	return p
}

func (h *Handler) handleInterview(w http.ResponseWriter, r *http.Request) {
	p := params(r)

	switch p.Action {
	case "start":
		h.handleStart(w, r, p)
	case "chat":
		h.handleChat(w, r, p)
	default:
		utils.RespondError(w, http.StatusBadRequest, "unknown action, expected start or chat")
	}
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request, p interviewParams) {
	res, err := h.svc.Start(r.Context(), p.SessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":     res.SessionID,
		"question":       res.Question,
		"question_index": res.QuestionIndex,
	})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request, p interviewParams) {
	if p.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	res, err := h.svc.Advance(r.Context(), p.SessionID, p.UserResponse)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	if res.Complete() {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"message":  res.Reply,
			"complete": true,
			"summary":  res.Summary,
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"question":       res.Reply,
		"question_index": res.QuestionIndex,
	})
}

type sessionData struct {
	SessionID     string          `json:"session_id"`
	Status        model.Status    `json:"status"`
	QuestionIndex int             `json:"question_index"`
	Slots         map[string]bool `json:"slots"`
	History       []model.Turn    `json:"history"`
	Summary       string          `json:"summary,omitempty"`
	ArchiveID     string          `json:"archive_id,omitempty"`
}

func (h *Handler) handleCheckResponses(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	session, err := h.svc.Responses(r.Context(), sessionID)
	if errors.Is(err, interviewService.ErrSessionNotFound) {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"status": "No responses yet",
			"data":   nil,
		})
		return
	}
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": sessionData{
			SessionID:     session.ID,
			Status:        session.Status,
			QuestionIndex: session.QuestionIndex(),
			Slots:         session.Slots,
			History:       session.History,
			Summary:       session.Summary,
			ArchiveID:     session.ArchiveID,
		},
	})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interviewService.ErrMissingInput):
		utils.RespondError(w, http.StatusBadRequest, "user_response is required")
	case errors.Is(err, interviewService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, interviewService.ErrSessionExists):
		utils.RespondError(w, http.StatusConflict, "session already exists")
	case errors.Is(err, interviewService.ErrSessionComplete):
		utils.RespondError(w, http.StatusConflict, "interview already complete")
	case errors.Is(err, store.ErrConflict):
		utils.RespondError(w, http.StatusConflict, "concurrent update, retry")
	case errors.Is(err, interviewService.ErrGenerationFailed):
		utils.RespondError(w, http.StatusBadGateway, "completion service unavailable")
	default:
		h.log.Error().Err(err).Msg("interview request failed")
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
