// Package linguee implements the Linguee dictionary lookup (spec §4.7),
// restricted to European languages plus Chinese and Japanese.
package linguee

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/transgate/gatewaycore/internal/obslog"
	"github.com/transgate/gatewaycore/internal/providers/langset"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

const (
	serviceID = "linguee"
	baseURL   = "https://linguee-api.fly.dev/api/v2/translations"
)

var supportedLanguages = langset.Only(
	translate.English, translate.German, translate.French, translate.Spanish, translate.Portuguese,
	translate.Italian, translate.Dutch, translate.Polish, translate.Russian, translate.Swedish,
	translate.Danish, translate.Finnish, translate.Greek, translate.Czech, translate.Romanian,
	translate.Hungarian, translate.Bulgarian, translate.Slovak, translate.Slovenian,
	translate.ChineseSimplified, translate.ChineseTraditional, translate.Japanese,
)

// Translator queries the Linguee dictionary API.
type Translator struct {
	client *transport.Client
	// Endpoint overrides the production URL; tests point it at an
	// httptest server.
	Endpoint string
}

// New builds a Translator sharing the given transport client.
func New(client *transport.Client) *Translator {
	return &Translator{client: client, Endpoint: baseURL}
}

func (t *Translator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          serviceID,
		DisplayName:        "Linguee",
		RequiresAPIKey:     false,
		IsConfigured:       true,
		SupportedLanguages: supportedLanguages,
		IsStreaming:        false,
		MaxTextLength:      2000,
	}
}

func (t *Translator) TranslateInternal(ctx context.Context, req translate.Request) (translate.Result, error) {
	q := url.Values{}
	q.Set("query", req.Text)
	q.Set("src", translate.ToISO(req.FromLanguage))
	q.Set("dst", translate.ToISO(req.ToLanguage))

	status, _, body, err := t.client.DoBuffered(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    t.Endpoint,
		Query:  q,
	})
	if err != nil {
		return translate.Result{}, err
	}
	if status == http.StatusTooManyRequests {
		return translate.Result{}, translate.New(serviceID, translate.ErrRateLimited, "linguee rate limited")
	}
	if status != http.StatusOK {
		return translate.Result{}, translate.New(serviceID, translate.ErrServiceUnavailable, fmt.Sprintf("unexpected status %d", status))
	}
	if !gjson.ValidBytes(body) {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "malformed json response")
	}

	entries := gjson.ParseBytes(body).Array()
	if len(entries) == 0 {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "no entries in response")
	}

	translations := entries[0].Get("translations").Array()
	if len(translations) == 0 {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "no translations in first entry")
	}

	var alternatives []string
	for _, alt := range translations[1:] {
		if v := alt.Get("text").String(); v != "" {
			alternatives = append(alternatives, v)
		}
	}

	obslog.For(serviceID).WithField("to", req.ToLanguage).Debug("translated")

	return translate.Result{
		TranslatedText:   translations[0].Get("text").String(),
		OriginalText:     req.Text,
		DetectedLanguage: req.FromLanguage,
		TargetLanguage:   req.ToLanguage,
		ServiceName:      "Linguee",
		Alternatives:     alternatives,
	}, nil
}
