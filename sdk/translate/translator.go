package translate

import "context"

// Capability describes a provider instance. Providers set every field at
// construction and have no Configure method; a configuration change builds
// new provider instances (registry.Reload) instead of mutating these fields.
type Capability struct {
	ServiceID          string
	DisplayName        string
	RequiresAPIKey     bool
	IsConfigured       bool
	SupportedLanguages map[Language]bool
	IsStreaming        bool
	MaxTextLength      int
}

// Chunk is one element of a translate-stream sequence: either a decoded
// text fragment or a terminal error. Exactly one of Text/Err is meaningful;
// Err, when non-nil, always terminates the stream.
type Chunk struct {
	Text string
	Err  error
}

// Stream is a lazy, finite, non-restartable sequence of Chunks. Next
// returns false once the stream is exhausted or has failed; callers must
// stop calling Next after that. Close releases any held transport resource
// (response body, connection) and is safe to call multiple times.
type Stream interface {
	Next(ctx context.Context) (Chunk, bool)
	Close() error
}

// Translator is the polymorphic contract every concrete provider implements.
// Providers that are not streaming-capable still satisfy this interface;
// TranslateStream on such a provider returns a one-shot Stream built from
// the collapsed non-streaming result (see the adapt package's NonStreaming).
type Translator interface {
	Capability() Capability
	Validate(req Request) error
	Translate(ctx context.Context, req Request) (Result, error)
	TranslateStream(ctx context.Context, req Request) (Stream, error)
}

// Internal is the narrower contract a concrete provider implements; Base
// wraps it to produce the full Translator, per spec §4.2 ("Translate:
// wraps the provider-specific translate_internal").
type Internal interface {
	Capability() Capability
	TranslateInternal(ctx context.Context, req Request) (Result, error)
}

// StreamInternal is the narrower contract a streaming-capable provider
// implements instead of Internal; its TranslateInternal is synthesized by
// collapsing the stream (see CollapseStream).
type StreamInternal interface {
	Capability() Capability
	TranslateStreamInternal(ctx context.Context, req Request) (Stream, error)
}
