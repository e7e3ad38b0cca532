// Package doubao implements ByteDance's Doubao/Ark responses API (spec
// §4.6): a named-event SSE stream carrying translation_options alongside
// the input text.
package doubao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/transgate/gatewaycore/internal/obslog"
	"github.com/transgate/gatewaycore/internal/providers/langset"
	"github.com/transgate/gatewaycore/internal/streaming"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

const (
	serviceID = "doubao"
	baseURL   = "https://ark.cn-beijing.volces.com/api/v3/responses"
)

var supportedLanguages = langset.AllExcept(translate.Burmese, translate.Khmer)

// Translator calls the Doubao responses API. It implements
// translate.StreamInternal; wrap it with adapt.Streaming.
type Translator struct {
	client       *transport.Client
	apiKey       string
	model        string
	isConfigured bool
	// Endpoint overrides the production URL; tests point it at an
	// httptest server.
	Endpoint string
}

// New builds a Translator with the given API key and model.
func New(client *transport.Client, apiKey, model string) *Translator {
	return &Translator{client: client, apiKey: apiKey, model: model, isConfigured: apiKey != "", Endpoint: baseURL}
}

func (t *Translator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          serviceID,
		DisplayName:        "Doubao",
		RequiresAPIKey:     true,
		IsConfigured:       t.isConfigured,
		SupportedLanguages: supportedLanguages,
		IsStreaming:        true,
		MaxTextLength:      8000,
	}
}

type translationOptions struct {
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language"`
}

type inputContent struct {
	Type               string              `json:"type"`
	Text               string              `json:"text"`
	TranslationOptions translationOptions `json:"translation_options"`
}

type inputItem struct {
	Role    string         `json:"role"`
	Content []inputContent `json:"content"`
}

type responsesRequest struct {
	Model  string      `json:"model"`
	Stream bool        `json:"stream"`
	Input  []inputItem `json:"input"`
}

func (t *Translator) TranslateStreamInternal(ctx context.Context, req translate.Request) (translate.Stream, error) {
	opts := translationOptions{TargetLanguage: translate.ToISO(req.ToLanguage)}
	if req.FromLanguage != translate.Auto {
		opts.SourceLanguage = translate.ToISO(req.FromLanguage)
	}

	payload, err := json.Marshal(responsesRequest{
		Model:  t.model,
		Stream: true,
		Input: []inputItem{{
			Role: "user",
			Content: []inputContent{{
				Type:               "input_text",
				Text:               req.Text,
				TranslationOptions: opts,
			}},
		}},
	})
	if err != nil {
		return nil, translate.Wrap(serviceID, translate.ErrUnknown, "encode responses request", err)
	}

	resp, err := t.client.Do(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    t.Endpoint,
		Headers: http.Header{
			"Content-Type":  {"application/json"},
			"Authorization": {"Bearer " + t.apiKey},
		},
		Body: payload,
	})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		resp.Body.Close()
		return nil, translate.New(serviceID, translate.ErrInvalidAPIKey, "doubao rejected the api key")
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, translate.New(serviceID, translate.ErrRateLimited, "doubao rate limited")
	case resp.StatusCode >= 500:
		resp.Body.Close()
		return nil, translate.New(serviceID, translate.ErrServiceUnavailable, fmt.Sprintf("upstream error %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		resp.Body.Close()
		return nil, translate.New(serviceID, translate.ErrInvalidResponse, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	obslog.For(serviceID).WithField("to", req.ToLanguage).Debug("streaming translation")

	return &sseStream{decoder: streaming.NewDoubaoDecoder(resp.Body), body: resp.Body}, nil
}

type sseStream struct {
	decoder *streaming.DoubaoDecoder
	body    interface{ Close() error }
}

func (s *sseStream) Next(ctx context.Context) (translate.Chunk, bool) {
	if err := ctx.Err(); err != nil {
		return translate.Chunk{Err: err}, false
	}
	text, ok, err := s.decoder.Next()
	if err != nil {
		return translate.Chunk{Err: err}, false
	}
	if !ok {
		return translate.Chunk{}, false
	}
	return translate.Chunk{Text: text}, true
}

func (s *sseStream) Close() error { return s.body.Close() }
