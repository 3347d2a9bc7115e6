package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/shipwise/intake/internal/archive"
	"github.com/shipwise/intake/internal/logging"
	model "github.com/shipwise/intake/internal/model/interview"
	"github.com/shipwise/intake/internal/service/ai"
	interviewService "github.com/shipwise/intake/internal/service/interview"
	"github.com/shipwise/intake/internal/store"
)

type generatorFunc func(history []model.Turn, missing []model.Slot) (ai.Reply, error)

func (f generatorFunc) Generate(_ context.Context, _ model.Definition, history []model.Turn, missing []model.Slot) (ai.Reply, error) {
	return f(history, missing)
}

func setupRouter(t *testing.T, gen generatorFunc) *chi.Mux {
	t.Helper()
	arch, err := archive.NewFSArchiver(t.TempDir(), logging.Nop())
	if err != nil {
		t.Fatalf("archiver: %v", err)
	}
	svc := interviewService.NewService(model.Default(), store.NewMemoryStore(), gen, arch, logging.Nop())
	handler := New(svc, logging.Nop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func askNext(_ []model.Turn, missing []model.Slot) (ai.Reply, error) {
	if len(missing) == 0 {
		return ai.Reply{Text: "All done!", Complete: true}, nil
	}
	return ai.Reply{Text: "Tell me about " + missing[0].Name + "?"}, nil
}

func jsonBody(t *testing.T, payload interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("encoding payload: %v", err)
	}
	return bytes.NewReader(data)
}

func do(t *testing.T, r http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return body
}

func TestStartReturnsOpeningQuestion(t *testing.T) {
	r := setupRouter(t, askNext)

	resp := do(t, r, http.MethodGet, "/interview?action=start&session_id=s1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	body := decode(t, resp)
	if body["session_id"] != "s1" {
		t.Fatalf("expected session_id s1, got %v", body["session_id"])
	}
	if body["question"] != "What can I help you ship?" {
		t.Fatalf("unexpected question %v", body["question"])
	}
	if body["question_index"] != float64(0) {
		t.Fatalf("expected question_index 0, got %v", body["question_index"])
	}
}

func TestStartDuplicateSession(t *testing.T) {
	r := setupRouter(t, askNext)

	do(t, r, http.MethodGet, "/interview?action=start&session_id=s1")
	resp := do(t, r, http.MethodGet, "/interview?action=start&session_id=s1")
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestChatAdvancesInterview(t *testing.T) {
	r := setupRouter(t, askNext)

	do(t, r, http.MethodGet, "/interview?action=start&session_id=s1")
	resp := do(t, r, http.MethodGet, "/interview?action=chat&session_id=s1&user_response=guitars")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	body := decode(t, resp)
	if body["question"] == "" {
		t.Fatal("expected a follow-up question")
	}
	if body["question_index"] != float64(1) {
		t.Fatalf("expected question_index 1, got %v", body["question_index"])
	}
}

func TestChatCompletion(t *testing.T) {
	r := setupRouter(t, func(_ []model.Turn, _ []model.Slot) (ai.Reply, error) {
		return ai.Reply{Text: "Thanks Alice!", Complete: true, Summary: "Alice ships guitars"}, nil
	})

	do(t, r, http.MethodGet, "/interview?action=start&session_id=s1")
	resp := do(t, r, http.MethodGet, "/interview?action=chat&session_id=s1&user_response=everything")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	body := decode(t, resp)
	if body["complete"] != true {
		t.Fatalf("expected complete true, got %v", body["complete"])
	}
	if body["message"] != "Thanks Alice!" {
		t.Fatalf("unexpected message %v", body["message"])
	}
	if body["summary"] != "Alice ships guitars" {
		t.Fatalf("unexpected summary %v", body["summary"])
	}

	// further turns on a finished interview are refused
	resp = do(t, r, http.MethodGet, "/interview?action=chat&session_id=s1&user_response=more")
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestChatUnknownSession(t *testing.T) {
	r := setupRouter(t, askNext)

	resp := do(t, r, http.MethodGet, "/interview?action=chat&session_id=ghost&user_response=hello")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestChatMissingUserResponse(t *testing.T) {
	r := setupRouter(t, askNext)

	do(t, r, http.MethodGet, "/interview?action=start&session_id=s1")
	resp := do(t, r, http.MethodGet, "/interview?action=chat&session_id=s1")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatGenerationFailure(t *testing.T) {
	r := setupRouter(t, func(_ []model.Turn, _ []model.Slot) (ai.Reply, error) {
		return ai.Reply{}, errors.New("upstream timeout")
	})

	do(t, r, http.MethodGet, "/interview?action=start&session_id=s1")
	resp := do(t, r, http.MethodGet, "/interview?action=chat&session_id=s1&user_response=hello")
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}

func TestUnknownAction(t *testing.T) {
	r := setupRouter(t, askNext)

	resp := do(t, r, http.MethodGet, "/interview?action=restart&session_id=s1")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCheckResponsesBeforeAndAfter(t *testing.T) {
	r := setupRouter(t, askNext)

	resp := do(t, r, http.MethodGet, "/check_responses?session_id=s1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := decode(t, resp)
	if body["status"] != "No responses yet" {
		t.Fatalf("unexpected status %v", body["status"])
	}
	if body["data"] != nil {
		t.Fatalf("expected null data, got %v", body["data"])
	}

	do(t, r, http.MethodGet, "/interview?action=start&session_id=s1")
	do(t, r, http.MethodGet, "/interview?action=chat&session_id=s1&user_response=guitars")

	resp = do(t, r, http.MethodGet, "/check_responses?session_id=s1")
	body = decode(t, resp)
	if body["status"] != "success" {
		t.Fatalf("unexpected status %v", body["status"])
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got %v", body["data"])
	}
	history, ok := data["history"].([]interface{})
	if !ok || len(history) != 3 {
		t.Fatalf("expected 3 turns, got %v", data["history"])
	}
}

func TestCheckResponsesMissingSessionID(t *testing.T) {
	r := setupRouter(t, askNext)

	resp := do(t, r, http.MethodGet, "/check_responses")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPostBodyParams(t *testing.T) {
	r := setupRouter(t, askNext)

	req := httptest.NewRequest(http.MethodPost, "/interview",
		jsonBody(t, map[string]string{"action": "start", "session_id": "s1"}))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := decode(t, resp)
	if body["session_id"] != "s1" {
		t.Fatalf("expected session_id s1, got %v", body["session_id"])
	}
}
