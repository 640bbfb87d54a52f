package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	gohttp "net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mylawmanager/lawlibrary/pkg/api"
	"github.com/mylawmanager/lawlibrary/pkg/transport"
)

func startServer(t *testing.T, srv *Server) (addr string, stop func() error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()

	return ln.Addr().String(), func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
			return nil
		}
	}
}

func TestServerStartsAndAcceptsRequests(t *testing.T) {
	login := &mockLogin{resp: &api.LoginResponse{
		User:  api.UserSummary{ID: "user-1", Email: "user@example.com", Role: "user"},
		Token: "tok",
	}}
	srv := NewServer(login, &mockHealth{})

	addr, stop := startServer(t, srv)
	defer stop()

	resp, err := gohttp.Post("http://"+addr+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"user@example.com","password":"secret"}`))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != gohttp.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(transport.RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}

	var got api.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got.Token != "tok" {
		t.Errorf("token = %q, want tok", got.Token)
	}
}

func TestServerGracefulShutdown(t *testing.T) {
	srv := NewServer(&mockLogin{}, nil, WithShutdownTimeout(2*time.Second))

	addr, stop := startServer(t, srv)

	resp, err := gohttp.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	resp.Body.Close()

	if err := stop(); err != nil {
		t.Errorf("shutdown error: %v", err)
	}

	if _, err := gohttp.Get("http://" + addr + "/healthz"); err == nil {
		t.Error("expected connection error after shutdown")
	}
}

func TestServerRecoversFromPanic(t *testing.T) {
	panicky := func(next gohttp.Handler) gohttp.Handler {
		return gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
			if r.URL.Path == "/api/auth/me" {
				panic("boom")
			}
			next.ServeHTTP(w, r)
		})
	}
	srv := NewServer(&mockLogin{}, nil, WithMiddleware(panicky))

	addr, stop := startServer(t, srv)
	defer stop()

	resp, err := gohttp.Get("http://" + addr + "/api/auth/me")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != gohttp.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}

	// The server keeps serving after a panic.
	resp, err = gohttp.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != gohttp.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServerExtraMiddlewareRuns(t *testing.T) {
	var hits atomic.Int32
	counting := func(next gohttp.Handler) gohttp.Handler {
		return gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
			hits.Add(1)
			if transport.RequestIDFromContext(r.Context()) == "" {
				t.Error("request ID not set before extra middleware")
			}
			next.ServeHTTP(w, r)
		})
	}
	srv := NewServer(&mockLogin{}, nil, WithMiddleware(counting))

	rec := doRequest(t, srv.Handler(), "GET", "/healthz", "", "")
	if rec.Code != gohttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if hits.Load() != 1 {
		t.Errorf("middleware hits = %d, want 1", hits.Load())
	}
}

func TestServerReadyzReportsStoreFailure(t *testing.T) {
	srv := NewServer(&mockLogin{}, &mockHealth{err: errors.New("down")}, WithVersion("1.2.3"))

	rec := doRequest(t, srv.Handler(), "GET", "/readyz", "", "")
	if rec.Code != gohttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var got api.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Version != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", got.Version)
	}
}

func TestServerFunctionalOptions(t *testing.T) {
	srv := NewServer(&mockLogin{}, nil,
		WithAddr(":9999"),
		WithMaxBodySize(2048),
		WithTimeouts(5*time.Second, 10*time.Second),
		WithShutdownTimeout(3*time.Second),
		WithMetrics(true, "/internal/metrics"),
	)

	if srv.config.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", srv.config.Addr)
	}
	if srv.config.Adapter.MaxBodySize != 2048 {
		t.Errorf("MaxBodySize = %d, want 2048", srv.config.Adapter.MaxBodySize)
	}
	if srv.httpServer.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", srv.httpServer.ReadTimeout)
	}
	if srv.httpServer.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", srv.httpServer.WriteTimeout)
	}
	if srv.config.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", srv.config.ShutdownTimeout)
	}

	rec := doRequest(t, srv.Handler(), "GET", "/internal/metrics", "", "")
	if rec.Code != gohttp.StatusOK {
		t.Errorf("custom metrics path status = %d, want 200", rec.Code)
	}
}

func TestServerListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	srv := NewServer(&mockLogin{}, nil, WithAddr(ln.Addr().String()))
	if err := srv.ListenAndServeContext(context.Background()); err == nil {
		t.Error("expected error for address in use")
	}
}
