package openaicompat

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/transgate/gatewaycore/internal/providers/langset"
	"github.com/transgate/gatewaycore/internal/secretstore"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

var allLanguages = langset.AllExcept()

// NewOpenAI builds the OpenAI chat-completions variant.
func NewOpenAI(client *transport.Client, apiKey, model string, temperature float64) *Translator {
	return New(client, Config{
		ServiceID: "openai", DisplayName: "OpenAI",
		Endpoint: "https://api.openai.com/v1/chat/completions",
		APIKey:   apiKey, Model: model, Temperature: temperature,
		RequiresAPIKey: true, IsConfigured: apiKey != "",
		SupportedLanguages: allLanguages,
	})
}

// NewDeepSeek builds the DeepSeek chat-completions variant.
func NewDeepSeek(client *transport.Client, apiKey, model string, temperature float64) *Translator {
	return New(client, Config{
		ServiceID: "deepseek", DisplayName: "DeepSeek",
		Endpoint: "https://api.deepseek.com/v1/chat/completions",
		APIKey:   apiKey, Model: model, Temperature: temperature,
		RequiresAPIKey: true, IsConfigured: apiKey != "",
		SupportedLanguages: allLanguages,
	})
}

// NewGroq builds the Groq chat-completions variant.
func NewGroq(client *transport.Client, apiKey, model string, temperature float64) *Translator {
	return New(client, Config{
		ServiceID: "groq", DisplayName: "Groq",
		Endpoint: "https://api.groq.com/openai/v1/chat/completions",
		APIKey:   apiKey, Model: model, Temperature: temperature,
		RequiresAPIKey: true, IsConfigured: apiKey != "",
		SupportedLanguages: allLanguages,
	})
}

// NewZhipu builds the Zhipu (BigModel) chat-completions variant.
func NewZhipu(client *transport.Client, apiKey, model string, temperature float64) *Translator {
	return New(client, Config{
		ServiceID: "zhipu", DisplayName: "Zhipu AI",
		Endpoint: "https://open.bigmodel.cn/api/paas/v4/chat/completions",
		APIKey:   apiKey, Model: model, Temperature: temperature,
		RequiresAPIKey: true, IsConfigured: apiKey != "",
		SupportedLanguages: allLanguages,
	})
}

// NewGitHubModels builds the GitHub Models chat-completions variant.
func NewGitHubModels(client *transport.Client, apiKey, model string, temperature float64) *Translator {
	return New(client, Config{
		ServiceID: "github-models", DisplayName: "GitHub Models",
		Endpoint: "https://models.github.ai/inference/chat/completions",
		APIKey:   apiKey, Model: model, Temperature: temperature,
		RequiresAPIKey: true, IsConfigured: apiKey != "",
		SupportedLanguages: allLanguages,
	})
}

// NewCustom builds a user-configured OpenAI-compatible endpoint. The key is
// optional; displayName defaults to "Custom" when empty.
func NewCustom(client *transport.Client, displayName, endpoint, apiKey, model string, temperature float64) *Translator {
	if displayName == "" {
		displayName = "Custom"
	}
	return New(client, Config{
		ServiceID: "custom", DisplayName: displayName,
		Endpoint: endpoint, APIKey: apiKey, Model: model, Temperature: temperature,
		RequiresAPIKey: false, IsConfigured: endpoint != "",
		SupportedLanguages: allLanguages,
	})
}

// Ollama wraps Translator with the refresh_local_models operation (spec
// §4.5): no API key, base defaults to localhost.
type Ollama struct {
	*Translator
	client *transport.Client
	base   string
	model  string
}

// NewOllama builds the Ollama variant. base defaults to the local daemon
// address when empty.
func NewOllama(client *transport.Client, base, model string, temperature float64) *Ollama {
	if base == "" {
		base = "http://localhost:11434"
	}
	o := &Ollama{client: client, base: base, model: model}
	o.Translator = New(client, Config{
		ServiceID: "ollama", DisplayName: "Ollama",
		Endpoint: base + "/v1/chat/completions",
		Model:    model, Temperature: temperature,
		RequiresAPIKey: false, IsConfigured: true,
		SupportedLanguages: allLanguages,
	})
	return o
}

// RefreshLocalModels GETs {base}/api/tags and, if the currently selected
// model is no longer present, switches to the first available model.
func (o *Ollama) RefreshLocalModels(ctx context.Context) error {
	names, err := FetchLocalModelNames(ctx, o.client, o.base)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("ollama: no local models available")
	}
	for _, name := range names {
		if name == o.model {
			return nil
		}
	}
	o.model = names[0]
	o.Translator.cfg.Model = names[0]
	return nil
}

const (
	builtinEmbeddedKey = "embedded-builtin-key"
	glmEndpoint        = "https://open.bigmodel.cn/api/paas/v4/chat/completions"
	groqEndpoint       = "https://api.groq.com/openai/v1/chat/completions"
)

// builtinProxyModelAllowList is the fixed set of models the embedded proxy
// serves when no user key is supplied (spec §4.5).
var builtinProxyModelAllowList = map[string]bool{
	"glm-4-flash":          true,
	"glm-4-flash-250414":   true,
}

// NewBuiltin builds the Built-in AI variant with three-mode routing: a
// user-supplied key routes directly to the model's own provider (GLM for
// glm-*, Groq for llama-*); no key routes through an embedded proxy at
// proxyOrigin, restricted to an allow-listed model set. proxyOrigin is a
// deployer-supplied configuration value (spec §9 open question 2); with no
// user key and an empty proxyOrigin, NewBuiltin returns an error rather
// than guessing a default origin.
func NewBuiltin(client *transport.Client, userKey, model string, temperature float64, secrets secretstore.Store, deviceID, deviceToken, proxyOrigin string) (*Translator, error) {
	if userKey != "" {
		endpoint, err := builtinDirectEndpoint(model)
		if err != nil {
			return nil, err
		}
		return New(client, Config{
			ServiceID: "builtin", DisplayName: "Built-in AI",
			Endpoint: endpoint, APIKey: userKey, Model: model, Temperature: temperature,
			RequiresAPIKey: false, IsConfigured: true,
			SupportedLanguages: allLanguages,
		}), nil
	}

	if proxyOrigin == "" {
		return nil, translate.New("builtin", translate.ErrServiceUnavailable, "embedded proxy origin is not configured")
	}
	if !builtinProxyModelAllowList[model] {
		return nil, translate.New("builtin", translate.ErrInvalidModel, fmt.Sprintf("model %q is not available via the embedded proxy", model))
	}
	embeddedKey, ok := secrets.Lookup(embeddedKeySecretName)
	if !ok {
		embeddedKey = builtinEmbeddedKey
	}
	headers := http.Header{
		"X-Device-Id":    {deviceID},
		"X-Device-Token": {deviceToken},
	}
	return New(client, Config{
		ServiceID: "builtin", DisplayName: "Built-in AI",
		Endpoint: proxyOrigin + "/v1/chat/completions", APIKey: embeddedKey, Model: model, Temperature: temperature,
		RequiresAPIKey: false, IsConfigured: true,
		SupportedLanguages: allLanguages,
		ExtraHeaders:       headers,
	}), nil
}

const embeddedKeySecretName = "builtin_embedded_key"

func builtinDirectEndpoint(model string) (string, error) {
	switch {
	case strings.HasPrefix(model, "glm-"):
		return glmEndpoint, nil
	case strings.HasPrefix(model, "llama-"):
		return groqEndpoint, nil
	default:
		return "", translate.New("builtin", translate.ErrInvalidModel, fmt.Sprintf("model %q has no known direct route", model))
	}
}

// RegisterDevice POSTs to {proxyOrigin}/v1/device/register with the device
// id and the embedded bearer, returning the issued device token. On any
// failure it returns ("", false) without mutating any state. Pass the
// deployer-configured proxy origin (config.Config.Builtin.Endpoint) in
// production; tests pass an httptest server URL.
func RegisterDevice(ctx context.Context, client *transport.Client, proxyOrigin, deviceID string) (string, bool) {
	status, _, body, err := client.DoBuffered(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    proxyOrigin + "/v1/device/register",
		Headers: http.Header{
			"X-Device-Id":   {deviceID},
			"Authorization": {"Bearer " + builtinEmbeddedKey},
		},
	})
	if err != nil || status != http.StatusOK {
		return "", false
	}
	token := gjson.GetBytes(body, "device_token").String()
	if token == "" {
		return "", false
	}
	return token, true
}
