package registry

import (
	"time"

	"github.com/transgate/gatewaycore/internal/config"
	"github.com/transgate/gatewaycore/internal/providers/adapt"
	"github.com/transgate/gatewaycore/internal/providers/bespoke/doubao"
	"github.com/transgate/gatewaycore/internal/providers/bespoke/gemini"
	"github.com/transgate/gatewaycore/internal/providers/dictionary/linguee"
	"github.com/transgate/gatewaycore/internal/providers/openaicompat"
	"github.com/transgate/gatewaycore/internal/providers/restsigned/caiyun"
	"github.com/transgate/gatewaycore/internal/providers/restsigned/deepl"
	"github.com/transgate/gatewaycore/internal/providers/restsigned/niutrans"
	"github.com/transgate/gatewaycore/internal/providers/restsigned/volcano"
	"github.com/transgate/gatewaycore/internal/providers/webscraped/bing"
	"github.com/transgate/gatewaycore/internal/providers/webscraped/google"
	"github.com/transgate/gatewaycore/internal/providers/webscraped/youdao"
	"github.com/transgate/gatewaycore/internal/secretstore"
	"github.com/transgate/gatewaycore/internal/transport"
	"github.com/transgate/gatewaycore/sdk/translate"
)

// defaultDoubaoModel is used when cfg.Doubao carries only an API key, since
// KeyedConfig has no model field of its own.
const defaultDoubaoModel = "doubao-pro-32k"

// Build is the composition root: it constructs every concrete provider from
// cfg, shares three transports across them (a plain 30s one, a 30s
// browser-impersonating one for the web scrapers, and a 60s one for the
// streaming LLM providers), and returns a populated Registry.
//
// A provider whose required configuration is entirely absent is simply
// omitted rather than registered half-configured; Translate would reject it
// at Validate time anyway (RequiresAPIKey && !IsConfigured), but leaving it
// out of the registry keeps List() honest about what is actually usable.
func Build(cfg *config.Config, secrets secretstore.Store) *Registry {
	return New(buildProviders(cfg, secrets)...)
}

// Reload rebuilds every provider from cfg and swaps them into reg, blocking
// until in-flight translations drain (Registry.Reconfigure's handle-count
// invariant). Wire this as a config.Watcher's ReloadFunc to get spec §4.8's
// hot-reload behavior: ReloadFunc(func(cfg *config.Config) { registry.Reload(reg, cfg, secrets) }).
func Reload(reg *Registry, cfg *config.Config, secrets secretstore.Store) {
	next := make(map[string]translate.Translator)
	for _, p := range buildProviders(cfg, secrets) {
		next[p.Capability().ServiceID] = p
	}
	reg.Reconfigure(next)
}

func buildProviders(cfg *config.Config, secrets secretstore.Store) []translate.Translator {
	plain := transport.New(transport.WithTimeout(30 * time.Second))
	scraper := transport.New(transport.WithTimeout(30*time.Second), transport.WithBrowserTLS())
	llm := transport.New(transport.WithTimeout(60 * time.Second))

	var providers []translate.Translator

	providers = append(providers,
		adapt.NonStreaming(google.New(scraper)),
		adapt.NonStreaming(google.NewDict(scraper)),
		adapt.NonStreaming(youdao.New(scraper)),
	)

	useChinaHost := false
	if cfg.Bing != nil {
		useChinaHost = cfg.Bing.UseChinaHost
	}
	providers = append(providers, adapt.NonStreaming(bing.New(scraper, useChinaHost)))

	if cfg.NiuTrans != nil && cfg.NiuTrans.APIKey != "" {
		providers = append(providers, adapt.NonStreaming(niutrans.New(plain, cfg.NiuTrans.APIKey)))
	}
	if cfg.Volcano != nil && cfg.Volcano.AccessKeyID != "" {
		providers = append(providers, adapt.NonStreaming(volcano.New(plain, cfg.Volcano.AccessKeyID, cfg.Volcano.SecretAccessKey)))
	}
	if cfg.Caiyun != nil && cfg.Caiyun.APIKey != "" {
		providers = append(providers, adapt.NonStreaming(caiyun.New(plain, cfg.Caiyun.APIKey)))
	}

	deeplKey, deeplWebFirst := "", false
	if cfg.DeepL != nil {
		deeplKey, deeplWebFirst = cfg.DeepL.APIKey, cfg.DeepL.UseWebFirst
	}
	providers = append(providers, adapt.NonStreaming(deepl.New(plain, deeplKey, deeplWebFirst)))

	providers = append(providers, adapt.NonStreaming(linguee.New(plain)))

	if cfg.OpenAI != nil && cfg.OpenAI.APIKey != "" {
		providers = append(providers, adapt.Streaming(openaicompat.NewOpenAI(llm, cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature)))
	}
	if cfg.DeepSeek != nil && cfg.DeepSeek.APIKey != "" {
		providers = append(providers, adapt.Streaming(openaicompat.NewDeepSeek(llm, cfg.DeepSeek.APIKey, cfg.DeepSeek.Model, cfg.DeepSeek.Temperature)))
	}
	if cfg.Groq != nil && cfg.Groq.APIKey != "" {
		providers = append(providers, adapt.Streaming(openaicompat.NewGroq(llm, cfg.Groq.APIKey, cfg.Groq.Model, cfg.Groq.Temperature)))
	}
	if cfg.Zhipu != nil && cfg.Zhipu.APIKey != "" {
		providers = append(providers, adapt.Streaming(openaicompat.NewZhipu(llm, cfg.Zhipu.APIKey, cfg.Zhipu.Model, cfg.Zhipu.Temperature)))
	}
	if cfg.GitHubModels != nil && cfg.GitHubModels.APIKey != "" {
		providers = append(providers, adapt.Streaming(openaicompat.NewGitHubModels(llm, cfg.GitHubModels.APIKey, cfg.GitHubModels.Model, cfg.GitHubModels.Temperature)))
	}
	if cfg.Ollama != nil {
		providers = append(providers, adapt.Streaming(openaicompat.NewOllama(llm, cfg.Ollama.Endpoint, cfg.Ollama.Model, cfg.Ollama.Temperature)))
	}
	if cfg.Custom != nil && cfg.Custom.Endpoint != "" {
		providers = append(providers, adapt.Streaming(openaicompat.NewCustom(llm, cfg.Custom.DisplayName, cfg.Custom.Endpoint, cfg.Custom.APIKey, cfg.Custom.Model, cfg.Custom.Temperature)))
	}
	if cfg.Builtin != nil {
		if builtin, err := openaicompat.NewBuiltin(llm, cfg.Builtin.APIKey, cfg.Builtin.Model, cfg.Builtin.Temperature, secrets, cfg.Builtin.DeviceID, cfg.Builtin.DeviceToken, cfg.Builtin.Endpoint); err == nil {
			providers = append(providers, adapt.Streaming(builtin))
		}
	}

	if cfg.Gemini != nil && cfg.Gemini.APIKey != "" {
		providers = append(providers, adapt.Streaming(gemini.New(llm, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Temperature)))
	}
	if cfg.Doubao != nil && cfg.Doubao.APIKey != "" {
		providers = append(providers, adapt.Streaming(doubao.New(llm, cfg.Doubao.APIKey, defaultDoubaoModel)))
	}

	return providers
}
