// Package caiyun implements Caiyun Xiaoyi's machine translation API
// (spec §4.4): a POST carrying the token in the X-Authorization header, with
// a per-request UUID.
package caiyun

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/transgate/gatewaycore/internal/obslog"
	"github.com/transgate/gatewaycore/internal/providers/langset"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

const (
	serviceID = "caiyun"
	baseURL   = "https://api.interpreter.caiyunai.com/v1/translator"
)

// langCodes is Caiyun's short two-letter wire alphabet.
var langCodes = translate.LangCodeTable{
	translate.ChineseSimplified: "zh",
	translate.English:           "en",
	translate.Japanese:          "ja",
}

var supportedLanguages = langset.Only(translate.ChineseSimplified, translate.English, translate.Japanese)

// Translator calls the Caiyun translate endpoint.
type Translator struct {
	client       *transport.Client
	apiKey       string
	isConfigured bool
	// Endpoint overrides the production URL; tests point it at an httptest
	// server.
	Endpoint string
}

// New builds a Translator with the given API key.
func New(client *transport.Client, apiKey string) *Translator {
	return &Translator{client: client, apiKey: apiKey, isConfigured: apiKey != "", Endpoint: baseURL}
}

func (t *Translator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          serviceID,
		DisplayName:        "Caiyun",
		RequiresAPIKey:     true,
		IsConfigured:       t.isConfigured,
		SupportedLanguages: supportedLanguages,
		IsStreaming:        false,
		MaxTextLength:      5000,
	}
}

type requestBody struct {
	Source    []string `json:"source"`
	TransType string   `json:"trans_type"`
	RequestID string   `json:"request_id"`
	Media     string   `json:"media"`
}

func (t *Translator) TranslateInternal(ctx context.Context, req translate.Request) (translate.Result, error) {
	payload, err := json.Marshal(requestBody{
		Source:    []string{req.Text},
		TransType: fmt.Sprintf("%s2%s", translate.LangCode(langCodes, req.FromLanguage), translate.LangCode(langCodes, req.ToLanguage)),
		RequestID: uuid.NewString(),
		Media:     "text",
	})
	if err != nil {
		return translate.Result{}, translate.Wrap(serviceID, translate.ErrUnknown, "encode request body", err)
	}

	status, _, body, err := t.client.DoBuffered(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    t.Endpoint,
		Headers: http.Header{
			"Content-Type":    {"application/json"},
			"X-Authorization": {"token " + t.apiKey},
		},
		Body: payload,
	})
	if err != nil {
		return translate.Result{}, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidAPIKey, "caiyun rejected the api key")
	}
	if status != http.StatusOK {
		return translate.Result{}, translate.New(serviceID, translate.ErrServiceUnavailable, fmt.Sprintf("unexpected status %d", status))
	}

	translated := gjson.GetBytes(body, "target.0").String()
	if translated == "" {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "no translation in response")
	}

	obslog.For(serviceID).WithField("to", req.ToLanguage).Debug("translated")

	return translate.Result{
		TranslatedText:   translated,
		OriginalText:     req.Text,
		DetectedLanguage: req.FromLanguage,
		TargetLanguage:   req.ToLanguage,
		ServiceName:      "Caiyun",
	}, nil
}
