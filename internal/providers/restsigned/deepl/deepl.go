// Package deepl implements both of DeepL's translation surfaces: the
// authenticated v2 REST API and the unauthenticated web JSON-RPC endpoint,
// including the web endpoint's anti-bot-detection quirks (spec §4.4).
package deepl

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/transgate/gatewaycore/internal/obslog"
	"github.com/transgate/gatewaycore/internal/providers/langset"
	"github.com/transgate/gatewaycore/internal/signing"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

const (
	serviceID     = "deepl"
	apiFreeURL    = "https://api-free.deepl.com/v2/translate"
	apiProURL     = "https://api.deepl.com/v2/translate"
	webRPCURL     = "https://www2.deepl.com/jsonrpc"
	webIDMin      = 100_000_000
	webIDMaxSpan  = 189_999_000 - 100_000_000
)

// langCodes overrides ISO codes DeepL spells differently on the wire.
var langCodes = translate.LangCodeTable{
	translate.ChineseTraditional: "ZH-HANT",
	translate.ChineseSimplified:  "ZH",
	translate.Portuguese:         "PT-PT",
	translate.Norwegian:          "NB",
}

var supportedLanguages = langset.Only(
	translate.English, translate.German, translate.French, translate.Spanish, translate.Portuguese,
	translate.Italian, translate.Dutch, translate.Polish, translate.Russian, translate.Japanese,
	translate.ChineseSimplified, translate.ChineseTraditional, translate.Korean, translate.Swedish,
	translate.Danish, translate.Finnish, translate.Greek, translate.Czech, translate.Romanian,
	translate.Hungarian, translate.Bulgarian, translate.Ukrainian, translate.Turkish, translate.Slovak,
	translate.Slovenian, translate.Indonesian, translate.Norwegian, translate.Estonian, translate.Latvian,
	translate.Lithuanian,
)

// Translator implements DeepL API mode (when a key is configured) and web
// mode (no key), with an optional one-shot web-to-API fallback.
type Translator struct {
	client      *transport.Client
	apiKey      string
	useWebFirst bool
	// APIEndpoint/WebEndpoint override the production URLs; tests point
	// them at an httptest server.
	APIEndpoint string
	WebEndpoint string
	now         func() time.Time
	nextID      func() int
}

// New builds a Translator. When apiKey is empty, every call uses web mode
// and useWebFirst is meaningless (there is no API to fall back to).
func New(client *transport.Client, apiKey string, useWebFirst bool) *Translator {
	apiEndpoint := apiProURL
	if strings.HasSuffix(apiKey, ":fx") {
		apiEndpoint = apiFreeURL
	}
	return &Translator{
		client:      client,
		apiKey:      apiKey,
		useWebFirst: useWebFirst,
		APIEndpoint: apiEndpoint,
		WebEndpoint: webRPCURL,
		now:         time.Now,
		nextID:      func() int { return webIDMin + rand.Intn(webIDMaxSpan) },
	}
}

func (t *Translator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          serviceID,
		DisplayName:        "DeepL",
		RequiresAPIKey:     false,
		IsConfigured:       true,
		SupportedLanguages: supportedLanguages,
		IsStreaming:        false,
		MaxTextLength:      5000,
	}
}

func (t *Translator) TranslateInternal(ctx context.Context, req translate.Request) (translate.Result, error) {
	if t.apiKey == "" {
		return t.translateWeb(ctx, req)
	}
	if t.useWebFirst {
		res, err := t.translateWeb(ctx, req)
		if err == nil {
			return res, nil
		}
		return t.translateAPI(ctx, req)
	}
	return t.translateAPI(ctx, req)
}

func (t *Translator) translateAPI(ctx context.Context, req translate.Request) (translate.Result, error) {
	form := url.Values{}
	form.Set("text", req.Text)
	form.Set("target_lang", translate.LangCode(langCodes, req.ToLanguage))
	if req.FromLanguage != translate.Auto {
		form.Set("source_lang", translate.LangCode(langCodes, req.FromLanguage))
	}

	status, _, body, err := t.client.DoBuffered(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    t.APIEndpoint,
		Headers: http.Header{
			"Content-Type":  {"application/x-www-form-urlencoded"},
			"Authorization": {"DeepL-Auth-Key " + t.apiKey},
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		return translate.Result{}, err
	}
	switch status {
	case http.StatusForbidden:
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidAPIKey, "deepl rejected the api key")
	case http.StatusTooManyRequests, 456:
		return translate.Result{}, translate.New(serviceID, translate.ErrRateLimited, "deepl rate limited")
	}
	if status != http.StatusOK {
		return translate.Result{}, translate.New(serviceID, translate.ErrServiceUnavailable, fmt.Sprintf("unexpected status %d", status))
	}

	translated := gjson.GetBytes(body, "translations.0.text").String()
	if translated == "" {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "no translation in response")
	}
	detected := translate.FromDialect(gjson.GetBytes(body, "translations.0.detected_source_language").String())

	obslog.For(serviceID).WithField("to", req.ToLanguage).Debug("translated via api")

	return translate.Result{
		TranslatedText:   translated,
		OriginalText:     req.Text,
		DetectedLanguage: detected,
		TargetLanguage:   req.ToLanguage,
		ServiceName:      "DeepL",
	}, nil
}

type webParamsTexts struct {
	Text                string `json:"text"`
	RequestAlternatives int    `json:"requestAlternatives"`
}

type webParamsLang struct {
	SourceLangUserSelected string `json:"source_lang_user_selected"`
	TargetLang              string `json:"target_lang"`
}

type webParams struct {
	Texts     []webParamsTexts `json:"texts"`
	Splitting string           `json:"splitting"`
	Lang      webParamsLang    `json:"lang"`
	Timestamp int64            `json:"timestamp"`
}

// buildWebBody renders the LMT_handle_texts JSON-RPC body, injecting the
// id-dependent "method" field spacing directly into the serialized JSON
// rather than through encoding/json, since the latter normalizes spacing.
func buildWebBody(id int, p webParams) ([]byte, error) {
	paramsJSON, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	methodField := signing.RenderDeepLMethodField(id, "LMT_handle_texts")
	return []byte(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,%s,"params":%s}`, id, methodField, paramsJSON)), nil
}

func (t *Translator) translateWeb(ctx context.Context, req translate.Request) (translate.Result, error) {
	id := t.nextID()
	timestamp := signing.DeepLTimestamp(t.now().UnixMilli(), req.Text)

	sourceLang := "auto"
	if req.FromLanguage != translate.Auto {
		sourceLang = translate.LangCode(langCodes, req.FromLanguage)
	}

	body, err := buildWebBody(id, webParams{
		Texts:     []webParamsTexts{{Text: req.Text, RequestAlternatives: 3}},
		Splitting: "newlines",
		Lang: webParamsLang{
			SourceLangUserSelected: sourceLang,
			TargetLang:              translate.LangCode(langCodes, req.ToLanguage),
		},
		Timestamp: timestamp,
	})
	if err != nil {
		return translate.Result{}, translate.Wrap(serviceID, translate.ErrUnknown, "encode web request body", err)
	}

	status, _, respBody, err := t.client.DoBuffered(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     t.WebEndpoint,
		Headers: http.Header{"Content-Type": {"application/json"}},
		Body:    body,
	})
	if err != nil {
		return translate.Result{}, err
	}
	if status != http.StatusOK {
		return translate.Result{}, translate.New(serviceID, translate.ErrServiceUnavailable, fmt.Sprintf("unexpected status %d", status))
	}

	translated := gjson.GetBytes(respBody, "result.texts.0.text").String()
	if translated == "" {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "no translation in web response")
	}
	detected := translate.FromDialect(gjson.GetBytes(respBody, "result.lang").String())

	obslog.For(serviceID).WithField("to", req.ToLanguage).Debug("translated via web")

	return translate.Result{
		TranslatedText:   translated,
		OriginalText:     req.Text,
		DetectedLanguage: detected,
		TargetLanguage:   req.ToLanguage,
		ServiceName:      "DeepL (Web)",
	}, nil
}
