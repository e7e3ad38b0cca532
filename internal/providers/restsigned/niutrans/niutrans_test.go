package niutrans

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

func TestTranslateInternalSignsRequest(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"tgt_text":"你好"}`))
	}))
	defer srv.Close()

	tr := New(transport.New(), "secret-key")
	tr.Endpoint = srv.URL

	res, err := tr.TranslateInternal(context.Background(), translate.Request{
		Text: "hello", FromLanguage: translate.English, ToLanguage: translate.ChineseSimplified,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "你好" {
		t.Fatalf("unexpected translation: %q", res.TranslatedText)
	}
	if !strings.Contains(gotAuth, `algorithm="hmac-sha256"`) {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
}

func TestTranslateInternalInvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tr := New(transport.New(), "bad-key")
	tr.Endpoint = srv.URL

	_, err := tr.TranslateInternal(context.Background(), translate.Request{Text: "hi", ToLanguage: translate.French})
	te, ok := translate.As(err)
	if !ok || te.Kind != translate.ErrInvalidAPIKey {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}
}
