package adapt

import (
	"context"
	"testing"

	"github.com/transgate/gatewaycore/sdk/translate"
)

type fakeInternal struct{ text string }

func (f *fakeInternal) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          "fake",
		IsConfigured:       true,
		SupportedLanguages: map[translate.Language]bool{translate.French: true},
	}
}

func (f *fakeInternal) TranslateInternal(ctx context.Context, req translate.Request) (translate.Result, error) {
	return translate.Result{TranslatedText: f.text}, nil
}

func TestNonStreamingTranslateStreamYieldsOneChunk(t *testing.T) {
	tr := NonStreaming(&fakeInternal{text: "bonjour"})

	s, err := tr.TranslateStream(context.Background(), translate.Request{Text: "hi", ToLanguage: translate.French})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	chunk, more := s.Next(context.Background())
	if chunk.Err != nil || chunk.Text != "bonjour" {
		t.Fatalf("unexpected first chunk: %+v", chunk)
	}
	if more {
		t.Fatalf("expected stream to terminate after one chunk")
	}
}

type fakeStreamInternal struct{ chunks []string }

func (f *fakeStreamInternal) Capability() translate.Capability {
	return translate.Capability{
		ServiceID:          "fake-stream",
		IsConfigured:       true,
		IsStreaming:        true,
		SupportedLanguages: map[translate.Language]bool{translate.French: true},
	}
}

func (f *fakeStreamInternal) TranslateStreamInternal(ctx context.Context, req translate.Request) (translate.Stream, error) {
	return &sliceStream{chunks: f.chunks}, nil
}

type sliceStream struct {
	chunks []string
	idx    int
}

func (s *sliceStream) Next(ctx context.Context) (translate.Chunk, bool) {
	if s.idx >= len(s.chunks) {
		return translate.Chunk{}, false
	}
	text := s.chunks[s.idx]
	s.idx++
	return translate.Chunk{Text: text}, s.idx < len(s.chunks)
}

func (s *sliceStream) Close() error { return nil }

func TestStreamingCollapsesForTranslate(t *testing.T) {
	tr := Streaming(&fakeStreamInternal{chunks: []string{"bon", "jour"}})

	res, err := tr.Translate(context.Background(), translate.Request{Text: "hi", ToLanguage: translate.French})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "bonjour" {
		t.Fatalf("unexpected collapsed translation: %q", res.TranslatedText)
	}
}
