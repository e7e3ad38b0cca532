package bing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

const translatorPage = `<html><script>var IG:"ABCD1234"; window.IG="ABCD1234";</script>
<div data-iid="translator.5023"></div>
<script>var params_AbusePreventionHelper = [1712345678,"TOKEN_VALUE",3600000];</script>
</html>`

func TestTranslateInternalHappyPath(t *testing.T) {
	var sfx []string
	mux := http.NewServeMux()
	mux.HandleFunc("/translator", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(translatorPage))
	})
	mux.HandleFunc("/ttranslatev3", func(w http.ResponseWriter, r *http.Request) {
		sfx = append(sfx, r.URL.Query().Get("SFX"))
		w.Write([]byte(`[{"translations":[{"text":"你好"}],"detectedLanguage":{"language":"en"}}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr := New(transport.New(), false)
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
	if res.DetectedLanguage != translate.English {
		t.Fatalf("unexpected detected language: %v", res.DetectedLanguage)
	}

	_, err = tr.TranslateInternal(context.Background(), translate.Request{
		Text: "world", FromLanguage: translate.English, ToLanguage: translate.ChineseSimplified,
	})
	if err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}
	if len(sfx) != 2 || sfx[0] == sfx[1] {
		t.Fatalf("expected strictly increasing SFX counters, got %v", sfx)
	}
}

func TestTranslateInternalRetriesOnceAfterRateLimit(t *testing.T) {
	var translatorHits int32
	var translateHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/translator", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&translatorHits, 1)
		w.Write([]byte(translatorPage))
	})
	mux.HandleFunc("/ttranslatev3", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&translateHits, 1)
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"translations":[{"text":"ok"}],"detectedLanguage":{"language":"en"}}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr := New(transport.New(), false)
	tr.Endpoint = srv.URL

	res, err := tr.TranslateInternal(context.Background(), translate.Request{
		Text: "hi", FromLanguage: translate.English, ToLanguage: translate.ChineseSimplified,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "ok" {
		t.Fatalf("unexpected translation: %q", res.TranslatedText)
	}
	if atomic.LoadInt32(&translatorHits) != 2 {
		t.Fatalf("expected 2 credential fetches (initial + refetch), got %d", translatorHits)
	}
	if atomic.LoadInt32(&translateHits) != 2 {
		t.Fatalf("expected 2 translate attempts, got %d", translateHits)
	}
}

func TestTranslateInternalMissingCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/translator", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>nothing useful here</html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr := New(transport.New(), false)
	tr.Endpoint = srv.URL

	_, err := tr.TranslateInternal(context.Background(), translate.Request{Text: "hi", ToLanguage: translate.French})
	te, ok := translate.As(err)
	if !ok || te.Kind != translate.ErrServiceUnavailable {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}
