package deepl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

func TestTranslateInternalAPIMode(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"translations":[{"text":"Hallo","detected_source_language":"EN"}]}`))
	}))
	defer srv.Close()

	tr := New(transport.New(), "somekey:fx", false)
	tr.APIEndpoint = srv.URL

	res, err := tr.TranslateInternal(context.Background(), translate.Request{
		Text: "hello", FromLanguage: translate.English, ToLanguage: translate.German,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "Hallo" {
		t.Fatalf("unexpected translation: %q", res.TranslatedText)
	}
	if gotAuth != "DeepL-Auth-Key somekey:fx" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
}

func TestTranslateInternalWebModeNoKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"texts":[{"text":"Hallo"}],"lang":"EN"}}`))
	}))
	defer srv.Close()

	tr := New(transport.New(), "", false)
	tr.WebEndpoint = srv.URL

	res, err := tr.TranslateInternal(context.Background(), translate.Request{
		Text: "hello", FromLanguage: translate.English, ToLanguage: translate.German,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "Hallo" {
		t.Fatalf("unexpected translation: %q", res.TranslatedText)
	}
	if res.ServiceName != "DeepL (Web)" {
		t.Fatalf("unexpected service name: %s", res.ServiceName)
	}
}

func TestTranslateInternalWebFirstFallsBackToAPI(t *testing.T) {
	webSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer webSrv.Close()
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"translations":[{"text":"Hallo"}]}`))
	}))
	defer apiSrv.Close()

	tr := New(transport.New(), "somekey", true)
	tr.WebEndpoint = webSrv.URL
	tr.APIEndpoint = apiSrv.URL

	res, err := tr.TranslateInternal(context.Background(), translate.Request{
		Text: "hello", FromLanguage: translate.English, ToLanguage: translate.German,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ServiceName != "DeepL" {
		t.Fatalf("expected API-mode fallback result, got %s", res.ServiceName)
	}
}

func TestDeepLMethodSpacingAffectsSerializedBody(t *testing.T) {
	spaced, err := buildWebBody(24, webParams{Texts: []webParamsTexts{{Text: "hi"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	unspaced, err := buildWebBody(25, webParams{Texts: []webParamsTexts{{Text: "hi"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(spaced) == string(unspaced) {
		t.Fatalf("expected differing method-field spacing between ids 24 and 25")
	}
	if !strings.Contains(string(spaced), `"method" : "LMT_handle_texts"`) {
		t.Fatalf("expected spaced method field for id 24, got %s", spaced)
	}
	if !strings.Contains(string(unspaced), `"method": "LMT_handle_texts"`) {
		t.Fatalf("expected unspaced method field for id 25, got %s", unspaced)
	}
}
