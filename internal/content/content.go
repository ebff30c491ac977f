// Package content supplies scenario items, generated or from a fallback pack.
package content

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

// Provider returns scenario items. It never fails: when generation is not
// possible the fallback pack is returned and fromFallback is true.
type Provider interface {
	Documents(ctx context.Context) (items []model.DocumentItem, fromFallback bool)
	Emails(ctx context.Context) (items []model.EmailItem, fromFallback bool)
}

// Source is the Provider backed by an optional Generator.
type Source struct {
	gen     Generator
	pack    Pack
	timeout time.Duration
	logger  *zap.Logger
}

var _ Provider = (*Source)(nil)

// NewSource returns a provider. A nil gen always serves the fallback pack.
func NewSource(gen Generator, pack Pack, timeout time.Duration, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{gen: gen, pack: pack, timeout: timeout, logger: logger}
}

// Documents returns a document batch.
func (s *Source) Documents(ctx context.Context) ([]model.DocumentItem, bool) {
	raw, ok := s.generate(ctx, "documents", documentPrompt, documentSchema)
	if ok {
		docs, err := ParseDocuments(raw)
		if err == nil {
			return docs, false
		}
		s.logger.Warn("generated documents rejected, using fallback", zap.Error(err))
	}
	return cloneSlice(s.pack.Documents), true
}

// Emails returns an email batch.
func (s *Source) Emails(ctx context.Context) ([]model.EmailItem, bool) {
	raw, ok := s.generate(ctx, "emails", emailPrompt, emailSchema)
	if ok {
		emails, err := ParseEmails(raw)
		if err == nil {
			return emails, false
		}
		s.logger.Warn("generated emails rejected, using fallback", zap.Error(err))
	}
	return cloneSlice(s.pack.Emails), true
}

func (s *Source) generate(ctx context.Context, kind, prompt string, schema func() *genai.Schema) (string, bool) {
	if s.gen == nil {
		s.logger.Debug("no content generator configured, using fallback", zap.String("kind", kind))
		return "", false
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	started := time.Now()
	raw, err := s.gen.GenerateJSON(ctx, prompt, schema())
	if err != nil {
		s.logger.Warn("content generation failed, using fallback",
			zap.String("kind", kind),
			zap.String("generator", s.gen.Name()),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return "", false
	}
	s.logger.Debug("content generated", zap.String("kind", kind), zap.Duration("elapsed", time.Since(started)))
	return raw, true
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
