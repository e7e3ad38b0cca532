// Package google implements the Google free (GTX) translation endpoint and
// its richer Google Dict variant (spec §4.3).
package google

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/transgate/gatewaycore/internal/obslog"
	"github.com/transgate/gatewaycore/internal/providers/langset"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

const (
	translateServiceID = "google-translate"
	dictServiceID       = "google-dictionary"
	baseURL             = "https://translate.googleapis.com/translate_a/single"
)

// langCodes overrides ISO codes Google's GTX endpoint spells differently.
var langCodes = translate.LangCodeTable{
	translate.ChineseSimplified:  "zh-CN",
	translate.ChineseTraditional: "zh-TW",
}

var supportedLanguages = langset.AllExcept(translate.ChineseClassical)

// Translator implements the Google free GTX endpoint.
type Translator struct {
	client *transport.Client
	// Endpoint overrides baseURL; tests point it at an httptest server.
	Endpoint string
}

// New builds a Translator sharing the given transport client.
func New(client *transport.Client) *Translator { return &Translator{client: client, Endpoint: baseURL} }

func (t *Translator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          translateServiceID,
		DisplayName:        "Google Translate",
		RequiresAPIKey:     false,
		IsConfigured:       true,
		SupportedLanguages: supportedLanguages,
		IsStreaming:        false,
		MaxTextLength:      5000,
	}
}

func (t *Translator) TranslateInternal(ctx context.Context, req translate.Request) (translate.Result, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", translate.LangCode(langCodes, req.FromLanguage))
	q.Set("tl", translate.LangCode(langCodes, req.ToLanguage))
	q.Set("dt", "t")
	q.Add("dt", "bd")
	q.Set("dj", "1")
	q.Set("q", req.Text)

	status, _, body, err := t.client.DoBuffered(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    t.Endpoint,
		Query:  q,
	})
	if err != nil {
		return translate.Result{}, err
	}
	if status == http.StatusTooManyRequests {
		return translate.Result{}, translate.New(translateServiceID, translate.ErrRateLimited, "google translate rate limited")
	}
	if status != http.StatusOK {
		return translate.Result{}, translate.New(translateServiceID, translate.ErrServiceUnavailable, fmt.Sprintf("unexpected status %d", status))
	}
	if !gjson.ValidBytes(body) {
		return translate.Result{}, translate.New(translateServiceID, translate.ErrInvalidResponse, "malformed json response")
	}

	parsed := gjson.ParseBytes(body)
	var sb strings.Builder
	for _, s := range parsed.Get("sentences").Array() {
		sb.WriteString(s.Get("trans").String())
	}
	translated := sb.String()
	if translated == "" {
		return translate.Result{}, translate.New(translateServiceID, translate.ErrInvalidResponse, "no sentences in response")
	}

	detected := translate.FromDialect(parsed.Get("src").String())

	var alternatives []string
	for _, alt := range parsed.Get("alternative_translations").Array() {
		for _, word := range alt.Get("alternative").Array() {
			if v := word.Get("word_postproc").String(); v != "" {
				alternatives = append(alternatives, v)
			}
		}
	}

	obslog.For(translateServiceID).WithField("to", req.ToLanguage).Debug("translated")

	return translate.Result{
		TranslatedText:   translated,
		OriginalText:     req.Text,
		DetectedLanguage: detected,
		TargetLanguage:   req.ToLanguage,
		ServiceName:      "Google Translate",
		Alternatives:     alternatives,
	}, nil
}

var boldTagRegexp = regexp.MustCompile(`</?b>`)

// DictTranslator implements the richer Google Dict positional-array
// variant of the same underlying endpoint (spec §4.3).
type DictTranslator struct {
	client   *transport.Client
	Endpoint string
}

// NewDict builds a DictTranslator sharing the given transport client.
func NewDict(client *transport.Client) *DictTranslator {
	return &DictTranslator{client: client, Endpoint: baseURL}
}

func (t *DictTranslator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          dictServiceID,
		DisplayName:        "Google Dictionary",
		RequiresAPIKey:     false,
		IsConfigured:       true,
		SupportedLanguages: supportedLanguages,
		IsStreaming:        false,
		MaxTextLength:      5000,
	}
}

func (t *DictTranslator) TranslateInternal(ctx context.Context, req translate.Request) (translate.Result, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", translate.LangCode(langCodes, req.FromLanguage))
	q.Set("tl", translate.LangCode(langCodes, req.ToLanguage))
	for _, dt := range []string{"t", "bd", "at", "ex", "ld", "md", "qca", "rw", "rm", "ss"} {
		q.Add("dt", dt)
	}
	q.Set("q", req.Text)

	status, _, body, err := t.client.DoBuffered(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    t.Endpoint,
		Query:  q,
	})
	if err != nil {
		return translate.Result{}, err
	}
	if status == http.StatusTooManyRequests {
		return translate.Result{}, translate.New(dictServiceID, translate.ErrRateLimited, "google dict rate limited")
	}
	if status != http.StatusOK {
		return translate.Result{}, translate.New(dictServiceID, translate.ErrServiceUnavailable, fmt.Sprintf("unexpected status %d", status))
	}
	if !gjson.ValidBytes(body) {
		return translate.Result{}, translate.New(dictServiceID, translate.ErrInvalidResponse, "malformed json response")
	}

	root := gjson.ParseBytes(body)
	arr := root.Array()
	if len(arr) == 0 {
		return translate.Result{}, translate.New(dictServiceID, translate.ErrInvalidResponse, "empty root array")
	}

	var sb strings.Builder
	sentences := arr[0]
	for _, s := range sentences.Array() {
		sb.WriteString(s.Get("0").String())
	}
	translated := sb.String()
	if translated == "" {
		return translate.Result{}, translate.New(dictServiceID, translate.ErrInvalidResponse, "no sentences in response")
	}

	// [2] is the legacy detected-language slot; [8] disambiguates zh-TW/zh-CN
	// and is preferred when present, per spec §4.3.
	detectedCode := ""
	if len(arr) > 8 {
		if code := arr[8].Get("0.0").String(); code != "" {
			detectedCode = code
		}
	}
	if detectedCode == "" && len(arr) > 2 {
		detectedCode = arr[2].String()
	}
	detected := translate.FromDialect(detectedCode)

	word := &translate.WordResult{}

	// [0][last][3] carries source-language romanization.
	if len(sentences.Array()) > 0 {
		last := sentences.Array()[len(sentences.Array())-1]
		if romanization := last.Get("3").String(); romanization != "" {
			word.Phonetics = append(word.Phonetics, translate.Phonetic{Text: romanization, Accent: translate.AccentSource})
		}
	}

	// [1] is the dictionary block: [pos, [meanings...], [[simple_word,[meanings...]],...]]
	if len(arr) > 1 {
		for _, entry := range arr[1].Array() {
			pos := entry.Get("0").String()
			var meanings []string
			for _, m := range entry.Get("1").Array() {
				meanings = append(meanings, m.String())
			}
			if pos != "" || len(meanings) > 0 {
				word.Definitions = append(word.Definitions, translate.Definition{PartOfSpeech: pos, Meanings: meanings})
			}
		}
	}

	// [13][0][*][0] carries examples with embedded <b>...</b> markup.
	if len(arr) > 13 {
		for _, group := range arr[13].Array() {
			for _, ex := range group.Array() {
				raw := ex.Get("0").String()
				if raw == "" {
					continue
				}
				word.Examples = append(word.Examples, boldTagRegexp.ReplaceAllString(raw, ""))
			}
		}
	}

	if len(word.Phonetics) == 0 && len(word.Definitions) == 0 && len(word.Examples) == 0 {
		word = nil
	}

	return translate.Result{
		TranslatedText:   translated,
		OriginalText:     req.Text,
		DetectedLanguage: detected,
		TargetLanguage:   req.ToLanguage,
		ServiceName:      "Google Dictionary",
		WordResult:       word,
	}, nil
}
