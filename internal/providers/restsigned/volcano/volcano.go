// Package volcano implements ByteDance Volcengine's TranslateText API,
// signed with an AWS SigV4-style scheme (spec §4.4).
package volcano

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
	serviceID = "volcano"
	host      = "translate.volcengineapi.com"
	path      = "/"
	query     = "Action=TranslateText&Version=2020-06-01"
	region    = "cn-north-1"
	service   = "translate"
)

var supportedLanguages = langset.AllExcept(translate.ChineseClassical)

// Translator signs and calls Volcengine's machine translation endpoint.
type Translator struct {
	client          *transport.Client
	accessKeyID     string
	secretAccessKey string
	// Endpoint overrides the production URL; tests point it at an httptest
	// server.
	Endpoint string
	isConfigured bool
	// now is overridable in tests so signature fixtures are reproducible.
	now func() time.Time
}

// New builds a Translator with the given SigV4 credentials.
func New(client *transport.Client, accessKeyID, secretAccessKey string) *Translator {
	return &Translator{
		client:          client,
		accessKeyID:     accessKeyID,
		secretAccessKey: secretAccessKey,
		Endpoint:        "https://" + host + path,
		isConfigured:    accessKeyID != "" && secretAccessKey != "",
		now:             time.Now,
	}
}

func (t *Translator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          serviceID,
		DisplayName:        "Volcano Translate",
		RequiresAPIKey:     true,
		IsConfigured:       t.isConfigured,
		SupportedLanguages: supportedLanguages,
		IsStreaming:        false,
		MaxTextLength:      5000,
	}
}

type translateRequestBody struct {
	SourceLanguage string   `json:"SourceLanguage,omitempty"`
	TargetLanguage string   `json:"TargetLanguage"`
	TextList       []string `json:"TextList"`
}

type errorMetadata struct {
	ResponseMetadata struct {
		Error struct {
			Code    string `json:"Code"`
			Message string `json:"Message"`
		} `json:"Error"`
	} `json:"ResponseMetadata"`
}

func (t *Translator) TranslateInternal(ctx context.Context, req translate.Request) (translate.Result, error) {
	body := translateRequestBody{
		TargetLanguage: translate.ToISO(req.ToLanguage),
		TextList:       []string{req.Text},
	}
	if req.FromLanguage != translate.Auto {
		body.SourceLanguage = translate.ToISO(req.FromLanguage)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return translate.Result{}, translate.Wrap(serviceID, translate.ErrUnknown, "encode request body", err)
	}

	xDate := t.now().UTC().Format("20060102T150405Z")
	signed := signing.SignSigV4(signing.SigV4Request{
		Method:        http.MethodPost,
		Path:          path,
		Query:         query,
		ContentType:   "application/json",
		Host:          host,
		XDate:         xDate,
		Body:          payload,
		AccessKeyID:   t.accessKeyID,
		SecretKey:     t.secretAccessKey,
		Region:        region,
		Service:       service,
		SignedHeaders: "content-type;host;x-date",
	})

	status, _, respBody, err := t.client.DoBuffered(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    t.Endpoint + "?" + query,
		Headers: http.Header{
			"Content-Type":  {"application/json"},
			"X-Date":        {xDate},
			"Authorization": {signed.Authorization},
		},
		Body: payload,
	})
	if err != nil {
		return translate.Result{}, err
	}
	if status != http.StatusOK {
		return translate.Result{}, translate.New(serviceID, translate.ErrServiceUnavailable, fmt.Sprintf("unexpected status %d", status))
	}

	if errMsg := gjson.GetBytes(respBody, "ResponseMetadata.Error.Message"); errMsg.Exists() && errMsg.String() != "" {
		return translate.Result{}, translate.New(serviceID, translate.ErrServiceUnavailable, errMsg.String())
	}

	translated := gjson.GetBytes(respBody, "TranslationList.0.Translation").String()
	if translated == "" {
		return translate.Result{}, translate.New(serviceID, translate.ErrInvalidResponse, "no translation in response")
	}
	detected := translate.FromDialect(gjson.GetBytes(respBody, "TranslationList.0.DetectedSourceLanguage").String())

	obslog.For(serviceID).WithField("to", req.ToLanguage).Debug("translated")

	return translate.Result{
		TranslatedText:   translated,
		OriginalText:     req.Text,
		DetectedLanguage: detected,
		TargetLanguage:   req.ToLanguage,
		ServiceName:      "Volcano Translate",
	}, nil
}
