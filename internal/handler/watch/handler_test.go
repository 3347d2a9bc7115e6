package watch

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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

func setup(t *testing.T) (*chi.Mux, *interviewService.Service) {
	t.Helper()
	arch, err := archive.NewFSArchiver(t.TempDir(), logging.Nop())
	if err != nil {
		t.Fatalf("archiver: %v", err)
	}
	gen := generatorFunc(func(_ []model.Turn, _ []model.Slot) (ai.Reply, error) {
		return ai.Reply{Text: "And your name?"}, nil
	})
	svc := interviewService.NewService(model.Default(), store.NewMemoryStore(), gen, arch, logging.Nop())
	handler := New(svc, logging.Nop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, svc
}

func TestSSEReplaysTranscript(t *testing.T) {
	r, svc := setup(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "s1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Advance(ctx, "s1", "guitars to Berlin"); err != nil {
		t.Fatalf("advance: %v", err)
	}

	server := httptest.NewServer(r)
	defer server.Close()

	reqCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, server.URL+"/interview/s1/events", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	// the replay arrives before the handler blocks on live events
	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	turns := 0
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if strings.HasPrefix(scanner.Text(), "event: turn") {
			turns++
		}
		if turns == 3 {
			break
		}
	}
	if turns != 3 {
		t.Fatalf("expected 3 replayed turns, got %d in %q", turns, strings.Join(lines, "\n"))
	}
	if !strings.Contains(strings.Join(lines, "\n"), "guitars to Berlin") {
		t.Fatal("user turn missing from replay")
	}
}

func TestSSEUnknownSession(t *testing.T) {
	r, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/interview/ghost/events", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (*model.Session, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Save(context.Context, *model.Session) error {
	return errors.New("disk on fire")
}

func (failingStore) Exists(context.Context, string) (bool, error) {
	return false, errors.New("disk on fire")
}

func TestSSEStorageFailureIsNotNotFound(t *testing.T) {
	arch, err := archive.NewFSArchiver(t.TempDir(), logging.Nop())
	if err != nil {
		t.Fatalf("archiver: %v", err)
	}
	gen := generatorFunc(func(_ []model.Turn, _ []model.Slot) (ai.Reply, error) {
		return ai.Reply{Text: "And your name?"}, nil
	})
	svc := interviewService.NewService(model.Default(), failingStore{}, gen, arch, logging.Nop())
	handler := New(svc, logging.Nop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	for _, target := range []string{"/interview/s1/events", "/interview/s1/ws"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", target, resp.Code)
		}
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	r, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/interview/ghost/ws", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
