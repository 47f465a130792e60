package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func testClient() *Client {
	c := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.MaxElapsedTime = 5 * time.Second
	return c
}

func TestFetch_HTTP(t *testing.T) {
	const payload = "Year,Region,Forest_Cover_ha\n2000,A,100\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "raw.csv")
	if err := testClient().Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != payload {
		t.Errorf("dest content = %q, want %q", got, payload)
	}
}

func TestFetch_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "raw.csv")
	if err := testClient().Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if calls.Load() < 2 {
		t.Errorf("calls = %d, want a retry after 429", calls.Load())
	}
}

func TestFetch_PermanentOnNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	err := testClient().Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "raw.csv"))
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on permanent failure)", calls.Load())
	}
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	err := testClient().Fetch(context.Background(), "gopher://example.com/data", "dest.csv")
	if err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

func TestFetch_Overwrites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "fresh")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "raw.csv")
	if err := os.WriteFile(dest, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := testClient().Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	got, _ := os.ReadFile(dest)
	if string(got) != "fresh" {
		t.Errorf("dest content = %q, want fresh", got)
	}
}
