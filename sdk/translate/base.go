package translate

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// Base wraps an Internal implementation with the common behavior spec §4.2
// assigns to every provider: validation, timing and exception mapping.
// Concrete providers do not embed it themselves; the adapt package's
// wrappers embed a *Base around each one. Stream collapse for streaming
// providers is CollapseStream.
type Base struct {
	Internal Internal
}

// NewBase constructs a Base around impl.
func NewBase(impl Internal) *Base { return &Base{Internal: impl} }

// Capability delegates to the wrapped Internal, so embedding *Base alone is
// enough to satisfy the Capability method of Translator.
func (b *Base) Capability() Capability { return b.Internal.Capability() }

// Validate implements the common validation rules of spec §4.2.
func (b *Base) Validate(req Request) error {
	return validate(b.Internal.Capability(), req)
}

func validate(cap Capability, req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return New(cap.ServiceID, ErrUnknown, "text must not be empty")
	}
	if cap.RequiresAPIKey && !cap.IsConfigured {
		return New(cap.ServiceID, ErrInvalidAPIKey, "provider is not configured with required credentials")
	}
	if req.ToLanguage == Auto {
		return New(cap.ServiceID, ErrUnsupportedLanguage, "target language must not be Auto")
	}
	if cap.SupportedLanguages != nil {
		if req.FromLanguage != Auto && !cap.SupportedLanguages[req.FromLanguage] {
			return New(cap.ServiceID, ErrUnsupportedLanguage, "source language not supported by this provider")
		}
		if !cap.SupportedLanguages[req.ToLanguage] {
			return New(cap.ServiceID, ErrUnsupportedLanguage, "target language not supported by this provider")
		}
	}
	if cap.MaxTextLength > 0 && len([]rune(req.Text)) > cap.MaxTextLength {
		return New(cap.ServiceID, ErrTextTooLong, "text exceeds provider maximum length")
	}
	return nil
}

// Translate implements the common Translate wrapper of spec §4.2: stopwatch,
// failure mapping, pass-through of already-tagged errors.
func (b *Base) Translate(ctx context.Context, req Request) (Result, error) {
	if err := b.Validate(req); err != nil {
		return Result{}, err
	}

	start := time.Now()
	res, err := b.Internal.TranslateInternal(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		return Result{}, mapFailure(b.Internal.Capability().ServiceID, err)
	}
	res.TimingMS = elapsed.Milliseconds()
	if res.TimingMS < 0 {
		res.TimingMS = 0
	}
	if strings.TrimSpace(res.TranslatedText) == "" {
		return Result{}, New(b.Internal.Capability().ServiceID, ErrInvalidResponse, "provider returned an empty translation")
	}
	return res, nil
}

// TranslateStream implements the streaming wrapper for providers that embed
// a StreamInternal. It is a free function rather than a Base method because
// Go cannot express "Base, but only when Internal is also StreamInternal"
// as a method receiver; callers invoke it from their own TranslateStream
// method.
func TranslateStream(ctx context.Context, impl StreamInternal, req Request) (Stream, error) {
	if err := validate(impl.Capability(), req); err != nil {
		return nil, err
	}
	s, err := impl.TranslateStreamInternal(ctx, req)
	if err != nil {
		return nil, mapFailure(impl.Capability().ServiceID, err)
	}
	return &mappingStream{serviceID: impl.Capability().ServiceID, inner: s}, nil
}

// mappingStream applies the same failure-mapping policy to errors surfaced
// mid-stream that Translate applies to a single failed call.
type mappingStream struct {
	serviceID string
	inner     Stream
}

func (s *mappingStream) Next(ctx context.Context) (Chunk, bool) {
	c, ok := s.inner.Next(ctx)
	if c.Err != nil {
		c.Err = mapFailure(s.serviceID, c.Err)
	}
	return c, ok
}

func (s *mappingStream) Close() error { return s.inner.Close() }

// CollapseStream consumes a Stream to completion, concatenates the chunks,
// and applies the final-value-only post-processing of spec §4.2 ("Non-streaming
// collapse"). It is the shared helper streaming providers call from their
// TranslateInternal implementation.
func CollapseStream(ctx context.Context, s Stream) (string, error) {
	var sb strings.Builder
	defer s.Close()
	for {
		chunk, ok := s.Next(ctx)
		if chunk.Err != nil {
			return "", chunk.Err
		}
		sb.WriteString(chunk.Text)
		if !ok {
			break
		}
	}
	return TrimCollapsed(sb.String()), nil
}

// mapFailure implements spec §4.2's Translate error-mapping rule: pass
// through an already-tagged *Error, map network/timeout errors to their
// kind, and wrap everything else as Unknown while preserving the message.
func mapFailure(serviceID string, err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(serviceID, ErrTimeout, "request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		// Caller-initiated cancellation surfaces as the neutral cancellation
		// failure of the host concurrency model, not a tagged TranslationError.
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(serviceID, ErrTimeout, "network operation timed out", err)
		}
		return Wrap(serviceID, ErrNetwork, "network transport error", err)
	}
	return Wrap(serviceID, ErrUnknown, err.Error(), err)
}
