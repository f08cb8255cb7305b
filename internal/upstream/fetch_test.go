package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(timeout time.Duration, maxRetries int) *Client {
	c := NewClient(timeout, maxRetries)
	c.backoff = time.Millisecond
	return c
}

func TestFetchJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	var out map[string]bool
	c := newTestClient(time.Second, 2)
	if err := c.FetchJSON(context.Background(), srv.URL, nil, &out); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if !out["ok"] {
		t.Error("payload not decoded")
	}
}

func TestFetchJSONRetries429(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]interface{}
	c := newTestClient(time.Second, 2)
	if err := c.FetchJSON(context.Background(), srv.URL, nil, &out); err != nil {
		t.Fatalf("429 must be retried, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestFetchJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var out map[string]interface{}
	c := newTestClient(time.Second, 3)
	err := c.FetchJSON(context.Background(), srv.URL, nil, &out)
	if err == nil {
		t.Fatal("404 must surface as an error")
	}
	statusErr, ok := err.(*StatusError)
	if !ok || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected StatusError 404, got %v", err)
	}
	if calls != 1 {
		t.Errorf("client errors must not be retried, got %d attempts", calls)
	}
}

func TestFetchJSONExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var out map[string]interface{}
	c := newTestClient(time.Second, 2)
	err := c.FetchJSON(context.Background(), srv.URL, nil, &out)
	if err == nil {
		t.Fatal("expected the last error after exhausted retries")
	}
	if calls != 3 {
		t.Errorf("expected initial attempt + 2 retries = 3, got %d", calls)
	}
}

func TestFetchJSONPerAttemptTimeout(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]interface{}
	c := newTestClient(20*time.Millisecond, 1)
	if err := c.FetchJSON(context.Background(), srv.URL, nil, &out); err == nil {
		t.Fatal("expected timeout error")
	}
	// Each attempt got its own fresh timeout context.
	if calls != 2 {
		t.Errorf("expected 2 timed-out attempts, got %d", calls)
	}
}
