package engine

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestNewBrowserClient(t *testing.T) {
	bc, err := NewBrowserClient(0)
	if err != nil {
		t.Fatalf("NewBrowserClient() error = %v", err)
	}
	if bc == nil {
		t.Fatal("NewBrowserClient() returned nil")
	}
	if bc.client == nil {
		t.Fatal("BrowserClient.client is nil")
	}
}

func TestJSONHeaders(t *testing.T) {
	Init(Config{})
	h := jsonHeaders()

	for _, key := range []string{"accept", "accept-language", "user-agent"} {
		if _, ok := h[key]; !ok {
			t.Errorf("jsonHeaders() missing key %q", key)
		}
	}
	if h["user-agent"] != UserAgentChrome {
		t.Errorf("user-agent = %q, want default Chrome UA", h["user-agent"])
	}
}

func TestBrowserClientCanceled(t *testing.T) {
	bc, err := NewBrowserClient(5)
	if err != nil {
		t.Fatalf("NewBrowserClient() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, status, err := bc.Do(ctx, http.MethodGet, "http://127.0.0.1:1/job/1", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
	if status != 0 {
		t.Errorf("Do() status = %d, want 0", status)
	}
}
