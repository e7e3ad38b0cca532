package youdao

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

func TestIsWordQuery(t *testing.T) {
	cases := map[string]bool{
		"hello":                    true,
		"don't":                    true,
		"hello world":              true,
		"Hello, world!":            false,
		"what's the weather like?": false,
		"this has\na line break":   false,
	}
	for text, want := range cases {
		if got := IsWordQuery(text); got != want {
			t.Errorf("IsWordQuery(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestDictLookupParsesObjectForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"simple":{"word":{"usphone":"'helo","usspeech":"hello&type=2","ukphone":"h??l?u","ukspeech":"hello&type=1"}},
			"ec":{"word":{"trs":[{"pos":"int.","tran":"你好"}]}}
		}`))
	}))
	defer srv.Close()

	tr := New(transport.New())
	tr.DictEndpoint = srv.URL

	res, err := tr.TranslateInternal(context.Background(), translate.Request{
		Text: "hello", FromLanguage: translate.English, ToLanguage: translate.ChineseSimplified,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "你好" {
		t.Fatalf("unexpected translation: %q", res.TranslatedText)
	}
	if res.WordResult == nil || len(res.WordResult.Phonetics) != 2 {
		t.Fatalf("expected two phonetics, got %+v", res.WordResult)
	}
	if res.WordResult.Phonetics[0].AudioURL == "" {
		t.Fatalf("expected audio url to be derived from usspeech")
	}
}

func TestDictLookupNormalizesArrayForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"simple":{"word":[{"usphone":"'helo"}]},
			"ec":{"word":[{"trs":[{"pos":"int.","tran":"你好"}]}]}
		}`))
	}))
	defer srv.Close()

	tr := New(transport.New())
	tr.DictEndpoint = srv.URL

	res, err := tr.TranslateInternal(context.Background(), translate.Request{
		Text: "hello", FromLanguage: translate.English, ToLanguage: translate.ChineseSimplified,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "你好" {
		t.Fatalf("unexpected translation: %q", res.TranslatedText)
	}
}

func TestFallsBackToWebTranslateForNonWordQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"translateResult":[[{"tgt":"你好，"},{"tgt":"世界！"}]]}`))
	}))
	defer srv.Close()

	tr := New(transport.New())
	tr.TranslateEndpoint = srv.URL

	res, err := tr.TranslateInternal(context.Background(), translate.Request{
		Text: "Hello, world!", FromLanguage: translate.English, ToLanguage: translate.ChineseSimplified,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "你好，世界！" {
		t.Fatalf("unexpected translation: %q", res.TranslatedText)
	}
	if res.ServiceName != "Youdao Translate" {
		t.Fatalf("unexpected service name: %s", res.ServiceName)
	}
}
