// Package openaicompat implements the shared OpenAI-compatible streaming
// chat-completions contract behind OpenAI, DeepSeek, Groq, Zhipu, GitHub
// Models, Ollama, Custom and Built-in (spec §4.5).
package openaicompat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/transgate/gatewaycore/internal/obslog"
	"github.com/transgate/gatewaycore/internal/streaming"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

const systemPrompt = `You are a translation expert who is proficient in various languages and can accurately understand and translate various texts. Please translate the text enclosed in triple quotes. Only return the translated text, without including redundant quotes or additional notes.`

// Config describes one OpenAI-compatible variant instance. Concrete
// providers (openai, deepseek, groq, ...) build one of these with their own
// defaults and hand it to New.
type Config struct {
	ServiceID          string
	DisplayName        string
	Endpoint           string
	APIKey             string
	Model              string
	Temperature        float64
	RequiresAPIKey     bool
	IsConfigured       bool
	SupportedLanguages map[translate.Language]bool
	// ExtraHeaders is merged into every request (Built-in's device headers).
	ExtraHeaders http.Header
}

// Translator issues a streaming chat-completions request and decodes the
// OpenAI SSE dialect. It implements translate.StreamInternal; wrap it with
// adapt.Streaming to get the full translate.Translator contract.
type Translator struct {
	client *transport.Client
	cfg    Config
}

// New builds a Translator from cfg.
func New(client *transport.Client, cfg Config) *Translator {
	return &Translator{client: client, cfg: cfg}
}

func (t *Translator) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          t.cfg.ServiceID,
		DisplayName:        t.cfg.DisplayName,
		RequiresAPIKey:     t.cfg.RequiresAPIKey,
		IsConfigured:       t.cfg.IsConfigured,
		SupportedLanguages: t.cfg.SupportedLanguages,
		IsStreaming:        true,
		MaxTextLength:      8000,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

func userPrompt(req translate.Request) string {
	sourceName := "the detected language"
	if req.FromLanguage != translate.Auto {
		sourceName = translate.DisplayName(req.FromLanguage)
	}
	return fmt.Sprintf(`Translate the following %s text into %s text: """%s"""`, sourceName, translate.DisplayName(req.ToLanguage), req.Text)
}

func (t *Translator) TranslateStreamInternal(ctx context.Context, req translate.Request) (translate.Stream, error) {
	payload, err := json.Marshal(chatRequest{
		Model: t.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(req)},
		},
		Temperature: t.cfg.Temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, translate.Wrap(t.cfg.ServiceID, translate.ErrUnknown, "encode chat request", err)
	}

	headers := http.Header{"Content-Type": {"application/json"}}
	for k, vs := range t.cfg.ExtraHeaders {
		headers[k] = vs
	}
	if t.cfg.APIKey != "" {
		headers.Set("Authorization", "Bearer "+t.cfg.APIKey)
	}

	resp, err := t.client.Do(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     t.cfg.Endpoint,
		Headers: headers,
		Body:    payload,
	})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		resp.Body.Close()
		return nil, translate.New(t.cfg.ServiceID, translate.ErrInvalidAPIKey, "rejected api key")
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, translate.New(t.cfg.ServiceID, translate.ErrRateLimited, "rate limited")
	case resp.StatusCode >= 500:
		resp.Body.Close()
		return nil, translate.New(t.cfg.ServiceID, translate.ErrServiceUnavailable, fmt.Sprintf("upstream error %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		resp.Body.Close()
		return nil, translate.New(t.cfg.ServiceID, translate.ErrInvalidResponse, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	obslog.For(t.cfg.ServiceID).WithField("to", req.ToLanguage).Debug("streaming translation")

	return &sseStream{decoder: streaming.NewOpenAIDecoder(resp.Body), body: resp.Body}, nil
}

// sseStream adapts an *streaming.OpenAIDecoder to translate.Stream.
type sseStream struct {
	decoder *streaming.OpenAIDecoder
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

// FetchLocalModelNames GETs {base}/api/tags (Ollama's model listing) and
// returns models[*].name, for the refresh_local_models operation.
func FetchLocalModelNames(ctx context.Context, client *transport.Client, base string) ([]string, error) {
	status, _, body, err := client.DoBuffered(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    base + "/api/tags",
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("ollama tags: unexpected status %d", status)
	}
	var names []string
	for _, m := range gjson.GetBytes(body, "models").Array() {
		if name := m.Get("name").String(); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
