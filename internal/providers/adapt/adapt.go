// Package adapt turns a provider's narrow Internal implementation into the
// full translate.Translator contract, so concrete providers only ever write
// Capability plus TranslateInternal (or, for streaming providers,
// TranslateStreamInternal) (spec §4.2's "Base wraps Internal").
package adapt

import (
	"context"

	"github.com/transgate/gatewaycore/sdk/translate"
)

// NonStreaming wraps a non-streaming Internal provider into a full
// Translator. TranslateStream returns a one-shot stream built from the
// already-collapsed Translate result, per spec §4.2.
func NonStreaming(impl translate.Internal) translate.Translator {
	return &nonStreamingTranslator{Base: translate.NewBase(impl)}
}

type nonStreamingTranslator struct {
	*translate.Base
}

func (t *nonStreamingTranslator) TranslateStream(ctx context.Context, req translate.Request) (translate.Stream, error) {
	res, err := t.Translate(ctx, req)
	if err != nil {
		return nil, err
	}
	return &oneShotStream{text: res.TranslatedText}, nil
}

// oneShotStream yields exactly one chunk then terminates, the shape every
// non-streaming provider's TranslateStream produces.
type oneShotStream struct {
	text string
	sent bool
}

func (s *oneShotStream) Next(ctx context.Context) (translate.Chunk, bool) {
	if s.sent {
		return translate.Chunk{}, false
	}
	s.sent = true
	return translate.Chunk{Text: s.text}, false
}

func (s *oneShotStream) Close() error { return nil }

// Streaming wraps a StreamInternal provider into a full Translator, with
// TranslateInternal implemented via stream collapse (spec §4.2
// "Non-streaming collapse").
func Streaming(impl translate.StreamInternal) translate.Translator {
	return &streamingTranslator{impl: impl, Base: translate.NewBase(&collapsingInternal{impl: impl})}
}

type streamingTranslator struct {
	impl translate.StreamInternal
	*translate.Base
}

func (t *streamingTranslator) TranslateStream(ctx context.Context, req translate.Request) (translate.Stream, error) {
	return translate.TranslateStream(ctx, t.impl, req)
}

// collapsingInternal lets a StreamInternal provider satisfy Internal (for
// Base.Translate) by running its stream to completion and collapsing it.
type collapsingInternal struct {
	impl translate.StreamInternal
}

func (c *collapsingInternal) Capability() translate.Capability { return c.impl.Capability() }

func (c *collapsingInternal) TranslateInternal(ctx context.Context, req translate.Request) (translate.Result, error) {
	s, err := c.impl.TranslateStreamInternal(ctx, req)
	if err != nil {
		return translate.Result{}, err
	}
	text, err := translate.CollapseStream(ctx, s)
	if err != nil {
		return translate.Result{}, err
	}
	return translate.Result{TranslatedText: text, OriginalText: req.Text, TargetLanguage: req.ToLanguage}, nil
}
