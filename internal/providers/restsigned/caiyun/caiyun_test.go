package caiyun

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

func TestTranslateInternalWiresRequestIDAndToken(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"target":["你好"]}`))
	}))
	defer srv.Close()

	tr := New(transport.New(), "secret")
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
	if gotAuth != "token secret" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotBody["trans_type"] != "en2zh" {
		t.Fatalf("unexpected trans_type: %v", gotBody["trans_type"])
	}
	if gotBody["request_id"] == "" || gotBody["request_id"] == nil {
		t.Fatalf("expected a non-empty request_id")
	}
}
