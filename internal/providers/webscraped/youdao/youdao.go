// Package youdao implements Youdao's unauthenticated web endpoints: the
// dictionary lookup at dict.youdao.com and the plain web-translate fallback
// at fanyi.youdao.com (spec §4.3).
package youdao

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"

	"github.com/transgate/gatewaycore/internal/obslog"
	"github.com/transgate/gatewaycore/internal/providers/langset"
	"github.com/transgate/gatewaycore/internal/signing"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

const (
	serviceID       = "youdao-web"
	dictBaseURL     = "https://dict.youdao.com/jsonapi_s"
	translateURL    = "https://fanyi.youdao.com/translate_o"
	dictVoiceFormat = "https://dict.youdao.com/dictvoice?audio=%s"
)

// dictForeignLanguages is the set of "foreign" languages the dict endpoint
// accepts; anything else falls back to web-translate even for word-shaped
// queries (spec §4.3).
var dictForeignLanguages = map[translate.Language]bool{
	translate.English:  true,
	translate.Japanese: true,
	translate.French:   true,
	translate.Korean:   true,
}

var supportedLanguages = langset.AllExcept(translate.ChineseClassical)

// IsWordQuery applies the shared word-query heuristic of spec §4.3: after
// trimming, length <= 50, no line breaks or sentence-terminating
// punctuation, and at least 80% of characters are letters, hyphens,
// apostrophes or spaces.
func IsWordQuery(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(trimmed) > 50 {
		return false
	}
	if strings.ContainsAny(trimmed, "\n\r.!?") {
		return false
	}
	total := 0
	wordish := 0
	for _, r := range trimmed {
		total++
		if unicode.IsLetter(r) || r == '-' || r == '\'' || r == ' ' {
			wordish++
		}
	}
	if total == 0 {
		return false
	}
	return float64(wordish)/float64(total) >= 0.8
}

// Translator implements both the dictionary lookup and the web-translate
// fallback behind a single Translator, selecting between them per request
// via the word-query heuristic.
type Translator struct {
	client *transport.Client
	// DictEndpoint/TranslateEndpoint override the production URLs; tests
	// point them at an httptest server.
	DictEndpoint      string
	TranslateEndpoint string
}

// New builds a Translator sharing the given transport client.
func New(client *transport.Client) *Translator {
	return &Translator{client: client, DictEndpoint: dictBaseURL, TranslateEndpoint: translateURL}
}

func (t *Translator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          serviceID,
		DisplayName:        "Youdao (Web)",
		RequiresAPIKey:     false,
		IsConfigured:       true,
		SupportedLanguages: supportedLanguages,
		IsStreaming:        false,
		MaxTextLength:      5000,
	}
}

func (t *Translator) TranslateInternal(ctx context.Context, req translate.Request) (translate.Result, error) {
	if IsWordQuery(req.Text) && dictForeignLanguages[req.FromLanguage] {
		res, err := t.dictLookup(ctx, req)
		if err == nil {
			return res, nil
		}
		te, ok := translate.As(err)
		if !ok || te.Kind != translate.ErrInvalidResponse {
			return translate.Result{}, err
		}
		// Fall through to web-translate when the dict path finds nothing.
	}
	return t.webTranslate(ctx, req)
}

func (t *Translator) dictLookup(ctx context.Context, req translate.Request) (translate.Result, error) {
	sign, salt, timeVal := signing.YoudaoWebDictSign(req.Text)

	form := url.Values{}
	form.Set("q", req.Text)
	form.Set("le", translate.ToISO(req.FromLanguage))
	form.Set("sign", sign)
	form.Set("salt", salt)
	form.Set("time", strconv.Itoa(timeVal))
	form.Set("client", "web")

	status, _, body, err := t.client.DoBuffered(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     t.DictEndpoint,
		Query:   url.Values{"doctype": {"json"}, "jsonversion": {"4"}},
		Headers: http.Header{"Content-Type": {"application/x-www-form-urlencoded"}},
		Body:    []byte(form.Encode()),
	})
	if err != nil {
		return translate.Result{}, err
	}
	if status != http.StatusOK || !gjson.ValidBytes(body) {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "youdao dict: no usable response")
	}

	parsed := gjson.ParseBytes(body)
	simple := normalizeObjectOrArray(parsed.Get("simple.word"))
	ec := normalizeObjectOrArray(parsed.Get("ec.word"))
	if !simple.Exists() && !ec.Exists() {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "youdao dict: word not found")
	}

	word := &translate.WordResult{}
	if usphone := simple.Get("usphone").String(); usphone != "" {
		word.Phonetics = append(word.Phonetics, translate.Phonetic{Text: usphone, Accent: translate.AccentUS, AudioURL: audioURL(simple.Get("usspeech").String())})
	}
	if ukphone := simple.Get("ukphone").String(); ukphone != "" {
		word.Phonetics = append(word.Phonetics, translate.Phonetic{Text: ukphone, Accent: translate.AccentUK, AudioURL: audioURL(simple.Get("ukspeech").String())})
	}

	var translated string
	for _, tr := range ec.Get("trs").Array() {
		pos := tr.Get("pos").String()
		var meanings []string
		if m := tr.Get("tran").String(); m != "" {
			meanings = append(meanings, m)
			if translated == "" {
				translated = m
			}
		}
		if pos != "" || len(meanings) > 0 {
			word.Definitions = append(word.Definitions, translate.Definition{PartOfSpeech: pos, Meanings: meanings})
		}
	}
	if translated == "" {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "youdao dict: no translation in response")
	}

	obslog.For(serviceID).WithField("to", req.ToLanguage).Debug("dict lookup")

	return translate.Result{
		TranslatedText:   translated,
		OriginalText:     req.Text,
		DetectedLanguage: req.FromLanguage,
		TargetLanguage:   req.ToLanguage,
		ServiceName:      "Youdao Dictionary",
		WordResult:       word,
	}, nil
}

func (t *Translator) webTranslate(ctx context.Context, req translate.Request) (translate.Result, error) {
	form := url.Values{}
	form.Set("i", req.Text)
	form.Set("from", translate.ToISO(req.FromLanguage))
	form.Set("to", translate.ToISO(req.ToLanguage))

	status, _, body, err := t.client.DoBuffered(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     t.TranslateEndpoint,
		Headers: http.Header{"Content-Type": {"application/x-www-form-urlencoded"}},
		Body:    []byte(form.Encode()),
	})
	if err != nil {
		return translate.Result{}, err
	}
	if status != http.StatusOK || !gjson.ValidBytes(body) {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "youdao translate: malformed response")
	}

	var sb strings.Builder
	for _, group := range gjson.GetBytes(body, "translateResult").Array() {
		for _, seg := range group.Array() {
			sb.WriteString(seg.Get("tgt").String())
		}
	}
	translated := sb.String()
	if translated == "" {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "youdao translate: empty result")
	}

	obslog.For(serviceID).WithField("to", req.ToLanguage).Debug("translated")

	return translate.Result{
		TranslatedText:   translated,
		OriginalText:     req.Text,
		DetectedLanguage: req.FromLanguage,
		TargetLanguage:   req.ToLanguage,
		ServiceName:      "Youdao Translate",
	}, nil
}

// normalizeObjectOrArray handles simple.word and ec.word arriving either as
// a bare object or a single-element array (spec §4.3).
func normalizeObjectOrArray(v gjson.Result) gjson.Result {
	if v.IsArray() {
		arr := v.Array()
		if len(arr) == 0 {
			return gjson.Result{}
		}
		return arr[0]
	}
	return v
}

func audioURL(speechID string) string {
	if speechID == "" {
		return ""
	}
	return strings.Replace(dictVoiceFormat, "%s", speechID, 1)
}

