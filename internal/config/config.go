// Package config loads the provider configuration surface of spec §6 from
// YAML and watches it for changes, driving registry reconfiguration without
// the core depending on any particular host application's config system.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OpenAICompatConfig covers OpenAI, DeepSeek, Groq, Zhipu, GitHub Models,
// Ollama, Custom and Built-in — every member of the OpenAI-compatible
// streaming family (spec §4.5, §6).
type OpenAICompatConfig struct {
	APIKey      string  `yaml:"api_key"`
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	// DisplayName is only meaningful for the Custom variant.
	DisplayName string `yaml:"display_name"`
	// DeviceID/DeviceToken are only meaningful for Built-in.
	DeviceID    string `yaml:"device_id"`
	DeviceToken string `yaml:"device_token"`
}

// GeminiConfig is spec §6's Gemini surface.
type GeminiConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// DeepLConfig is spec §6's DeepL surface.
type DeepLConfig struct {
	APIKey      string `yaml:"api_key"`
	UseWebFirst bool   `yaml:"use_web_first"`
}

// BingConfig is spec §6's Bing surface.
type BingConfig struct {
	UseChinaHost bool `yaml:"use_china_host"`
}

// KeyedConfig covers Caiyun, NiuTrans, and Doubao, each a bare api_key.
type KeyedConfig struct {
	APIKey string `yaml:"api_key"`
}

// VolcanoConfig is spec §6's Volcano surface.
type VolcanoConfig struct {
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// YoudaoConfig is spec §6's Youdao surface.
type YoudaoConfig struct {
	AppKey        string `yaml:"app_key"`
	AppSecret     string `yaml:"app_secret"`
	UseOfficialAPI bool  `yaml:"use_official_api"`
}

// Config is the full provider configuration surface, loaded as one YAML
// document. Every field is optional; registry.Build omits a keyed provider
// whose section or key is absent, while the providers that need no
// credentials are always registered.
type Config struct {
	OpenAI       *OpenAICompatConfig `yaml:"openai"`
	DeepSeek     *OpenAICompatConfig `yaml:"deepseek"`
	Groq         *OpenAICompatConfig `yaml:"groq"`
	Zhipu        *OpenAICompatConfig `yaml:"zhipu"`
	GitHubModels *OpenAICompatConfig `yaml:"github_models"`
	Ollama       *OpenAICompatConfig `yaml:"ollama"`
	Custom       *OpenAICompatConfig `yaml:"custom"`
	Builtin      *OpenAICompatConfig `yaml:"builtin"`

	Gemini *GeminiConfig `yaml:"gemini"`
	DeepL  *DeepLConfig  `yaml:"deepl"`
	Bing   *BingConfig   `yaml:"bing"`

	Caiyun   *KeyedConfig `yaml:"caiyun"`
	NiuTrans *KeyedConfig `yaml:"niutrans"`
	Doubao   *KeyedConfig `yaml:"doubao"`

	Volcano *VolcanoConfig `yaml:"volcano"`
	Youdao  *YoudaoConfig  `yaml:"youdao"`
}

// Load parses a YAML document at path into a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
