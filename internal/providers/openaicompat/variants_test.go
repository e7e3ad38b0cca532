package openaicompat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/transgate/gatewaycore/internal/secretstore"
	"github.com/transgate/gatewaycore/internal/transport"
)

func TestOllamaRefreshLocalModelsSwitchesWhenMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"llama3"},{"name":"qwen2"}]}`))
	}))
	defer srv.Close()

	o := NewOllama(transport.New(), srv.URL, "missing-model", 0.3)
	if err := o.RefreshLocalModels(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.model != "llama3" {
		t.Fatalf("expected model to switch to first available, got %q", o.model)
	}
}

func TestOllamaRefreshLocalModelsKeepsSelectionWhenPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"llama3"},{"name":"qwen2"}]}`))
	}))
	defer srv.Close()

	o := NewOllama(transport.New(), srv.URL, "qwen2", 0.3)
	if err := o.RefreshLocalModels(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.model != "qwen2" {
		t.Fatalf("expected model selection to remain qwen2, got %q", o.model)
	}
}

func TestNewBuiltinDirectRoutingByModelPrefix(t *testing.T) {
	tr, err := NewBuiltin(transport.New(), "user-key", "glm-4-plus", 0.3, secretstore.Chain{}, "", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.cfg.Endpoint != glmEndpoint {
		t.Fatalf("expected glm endpoint, got %s", tr.cfg.Endpoint)
	}

	tr, err = NewBuiltin(transport.New(), "user-key", "llama-3.1-70b", 0.3, secretstore.Chain{}, "", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.cfg.Endpoint != groqEndpoint {
		t.Fatalf("expected groq endpoint, got %s", tr.cfg.Endpoint)
	}
}

func TestNewBuiltinProxyModeRejectsNonAllowlistedModel(t *testing.T) {
	_, err := NewBuiltin(transport.New(), "", "gpt-4o", 0.3, secretstore.Chain{}, "device-1", "token-1", "https://gateway.example.com")
	if err == nil {
		t.Fatalf("expected an error for a non-allow-listed proxy model")
	}
}

func TestNewBuiltinProxyModeAttachesDeviceHeaders(t *testing.T) {
	tr, err := NewBuiltin(transport.New(), "", "glm-4-flash", 0.3, secretstore.Chain{}, "device-1", "token-1", "https://gateway.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.cfg.ExtraHeaders.Get("X-Device-Id") != "device-1" {
		t.Fatalf("expected device id header to be attached")
	}
}

func TestNewBuiltinProxyModeRequiresConfiguredOrigin(t *testing.T) {
	_, err := NewBuiltin(transport.New(), "", "glm-4-flash", 0.3, secretstore.Chain{}, "device-1", "token-1", "")
	if err == nil {
		t.Fatalf("expected an error when no proxy origin is configured")
	}
}

func TestRegisterDeviceReturnsTokenOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"device_token":"tok-abc123"}`))
	}))
	defer srv.Close()

	token, ok := RegisterDevice(context.Background(), transport.New(), srv.URL, "device-1")
	if !ok || token != "tok-abc123" {
		t.Fatalf("expected (tok-abc123, true), got (%q, %v)", token, ok)
	}
}

func TestRegisterDeviceReturnsAbsentOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	token, ok := RegisterDevice(context.Background(), transport.New(), srv.URL, "device-1")
	if ok || token != "" {
		t.Fatalf("expected absent result on failure, got (%q, %v)", token, ok)
	}
}
