// Package gemini implements Google's Gemini streamGenerateContent endpoint
// (spec §4.6): a query-param API key and an alt=sse JSON-lines body.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/transgate/gatewaycore/internal/obslog"
	"github.com/transgate/gatewaycore/internal/providers/langset"
	"github.com/transgate/gatewaycore/internal/streaming"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

const serviceID = "gemini"

var supportedLanguages = langset.AllExcept()

// Translator calls Gemini's streamGenerateContent endpoint. It implements
// translate.StreamInternal; wrap it with adapt.Streaming.
type Translator struct {
	client       *transport.Client
	apiKey       string
	model        string
	temperature  float64
	isConfigured bool
	// Endpoint overrides the production base; tests point it at an
	// httptest server.
	Endpoint string
}

// New builds a Translator with the given API key and model.
func New(client *transport.Client, apiKey, model string, temperature float64) *Translator {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Translator{
		client: client, apiKey: apiKey, model: model, temperature: temperature,
		isConfigured: apiKey != "",
		Endpoint:     "https://generativelanguage.googleapis.com",
	}
}

func (t *Translator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          serviceID,
		DisplayName:        "Gemini",
		RequiresAPIKey:     true,
		IsConfigured:       t.isConfigured,
		SupportedLanguages: supportedLanguages,
		IsStreaming:        true,
		MaxTextLength:      8000,
	}
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction content          `json:"systemInstruction"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

const systemPrompt = `You are a translation expert who is proficient in various languages and can accurately understand and translate various texts. Only return the translated text, without including redundant quotes or additional notes.`

func (t *Translator) TranslateStreamInternal(ctx context.Context, req translate.Request) (translate.Stream, error) {
	prompt := fmt.Sprintf(`Translate the following text into %s: """%s"""`, translate.DisplayName(req.ToLanguage), req.Text)

	payload, err := json.Marshal(generateRequest{
		Contents:          []content{{Role: "user", Parts: []contentPart{{Text: prompt}}}},
		SystemInstruction: content{Parts: []contentPart{{Text: systemPrompt}}},
		GenerationConfig:  generationConfig{Temperature: t.temperature},
	})
	if err != nil {
		return nil, translate.Wrap(serviceID, translate.ErrUnknown, "encode generate request", err)
	}

	q := url.Values{}
	q.Set("alt", "sse")
	q.Set("key", t.apiKey)

	resp, err := t.client.Do(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent", t.Endpoint, t.model),
		Query:   q,
		Headers: http.Header{"Content-Type": {"application/json"}},
		Body:    payload,
	})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, translate.New(serviceID, translate.ErrInvalidAPIKey, "gemini rejected the api key")
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, translate.New(serviceID, translate.ErrRateLimited, "gemini rate limited")
	case resp.StatusCode >= 500:
		resp.Body.Close()
		return nil, translate.New(serviceID, translate.ErrServiceUnavailable, fmt.Sprintf("upstream error %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		resp.Body.Close()
		return nil, translate.New(serviceID, translate.ErrInvalidResponse, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	obslog.For(serviceID).WithField("to", req.ToLanguage).Debug("streaming translation")

	return &sseStream{decoder: streaming.NewGeminiDecoder(resp.Body), body: resp.Body}, nil
}

type sseStream struct {
	decoder *streaming.GeminiDecoder
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
