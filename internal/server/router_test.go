package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Middleware Order", func(t *testing.T) {
		var calls []string
		trace := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					calls = append(calls, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(trace("first"), trace("second"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if strings.Join(calls, ",") != "first,second,handler" {
			t.Errorf("unexpected call order: %v", calls)
		}
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("post", "/hooks", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hooks", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Path Wildcards", func(t *testing.T) {
		router := NewBasicRouter()
		var got string
		router.Handle(http.MethodPost, "/api/lists/{id}/sync", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.PathValue("id")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/lists/abc/sync", nil))

		if got != "abc" {
			t.Errorf("expected id abc, got %q", got)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("LogRequests", func(t *testing.T) {
		var buf strings.Builder
		handler := LogRequests(log.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/hooks/events", nil))

		if !strings.Contains(buf.String(), "/hooks/events") || !strings.Contains(buf.String(), "418") {
			t.Errorf("expected path and status in log, got %s", buf.String())
		}
	})

	t.Run("Recover", func(t *testing.T) {
		handler := Recover(log.New(io.Discard))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestListenAndServe(t *testing.T) {
	t.Run("Stops On Cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() {
			done <- ListenAndServe(ctx, "127.0.0.1:0", NewBasicRouter(), log.New(io.Discard))
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected clean shutdown, got %v", err)
			}
		case <-time.After(2 * shutdownTimeout):
			t.Fatal("server did not stop")
		}
	})

	t.Run("Bad Address", func(t *testing.T) {
		err := ListenAndServe(context.Background(), "256.0.0.1:-1", NewBasicRouter(), log.New(io.Discard))
		if err == nil {
			t.Error("expected error for invalid address")
		}
	})
}
