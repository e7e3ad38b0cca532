// Package niutrans implements the NiuTrans machine translation API, signed
// with a plain HMAC-SHA256 Authorization header (spec §4.4).
package niutrans

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/transgate/gatewaycore/internal/obslog"
	"github.com/transgate/gatewaycore/internal/providers/langset"
	"github.com/transgate/gatewaycore/internal/signing"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

const (
	serviceID   = "niutrans"
	host        = "ntrans.xfyun.cn"
	requestPath = "/v1/trans"
	requestLine = "POST /v1/trans HTTP/1.1"
)

var supportedLanguages = langset.AllExcept(translate.ChineseClassical, translate.Burmese, translate.Khmer)

// Translator signs and calls the NiuTrans translate endpoint.
type Translator struct {
	client       *transport.Client
	apiKey       string
	isConfigured bool
	// Endpoint overrides the production URL; tests point it at an httptest
	// server.
	Endpoint string
	now      func() time.Time
}

// New builds a Translator with the given API key.
func New(client *transport.Client, apiKey string) *Translator {
	return &Translator{
		client:       client,
		apiKey:       apiKey,
		isConfigured: apiKey != "",
		Endpoint:     "https://" + host + requestPath,
		now:          time.Now,
	}
}

func (t *Translator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          serviceID,
		DisplayName:        "NiuTrans",
		RequiresAPIKey:     true,
		IsConfigured:       t.isConfigured,
		SupportedLanguages: supportedLanguages,
		IsStreaming:        false,
		MaxTextLength:      5000,
	}
}

type requestBody struct {
	From string `json:"from"`
	To   string `json:"to"`
	Src  string `json:"src_text"`
}

func (t *Translator) TranslateInternal(ctx context.Context, req translate.Request) (translate.Result, error) {
	payload, err := json.Marshal(requestBody{
		From: translate.ToISO(req.FromLanguage),
		To:   translate.ToISO(req.ToLanguage),
		Src:  req.Text,
	})
	if err != nil {
		return translate.Result{}, translate.Wrap(serviceID, translate.ErrUnknown, "encode request body", err)
	}

	date := t.now().UTC().Format(http.TimeFormat)
	canonical := signing.NiuTransCanonical(host, date, requestLine, payload)
	authorization := signing.NiuTransAuthorization(t.apiKey, canonical)

	status, _, body, err := t.client.DoBuffered(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    t.Endpoint,
		Headers: http.Header{
			"Content-Type":  {"application/json"},
			"Date":          {date},
			"Authorization": {authorization},
		},
		Body: payload,
	})
	if err != nil {
		return translate.Result{}, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidAPIKey, "niutrans rejected the api key")
	}
	if status == http.StatusTooManyRequests {
		return translate.Result{}, translate.New(serviceID, translate.ErrRateLimited, "niutrans rate limited")
	}
	if status != http.StatusOK {
		return translate.Result{}, translate.New(serviceID, translate.ErrServiceUnavailable, fmt.Sprintf("unexpected status %d", status))
	}

	translated := gjson.GetBytes(body, "tgt_text").String()
	if translated == "" {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "no translation in response")
	}

	obslog.For(serviceID).WithField("to", req.ToLanguage).Debug("translated")

	return translate.Result{
		TranslatedText:   translated,
		OriginalText:     req.Text,
		DetectedLanguage: req.FromLanguage,
		TargetLanguage:   req.ToLanguage,
		ServiceName:      "NiuTrans",
	}, nil
}
