package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoBufferedRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-Id") == "" {
			t.Errorf("expected X-Request-Id header to be set by transport")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(WithTimeout(0))
	status, _, body, err := c.DoBuffered(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestDoBufferedQueryEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "hello world" {
			t.Errorf("expected query param q=hello world, got %q", r.URL.RawQuery)
		}
	}))
	defer srv.Close()

	c := New()
	q := make(map[string][]string)
	q["q"] = []string{"hello world"}
	_, _, _, err := c.DoBuffered(context.Background(), Request{
		Method: http.MethodGet,
		URL:    srv.URL,
		Query:  q,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
