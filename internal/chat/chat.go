// Package chat keeps the question/answer transcript of one user session and
// routes every chat question through the configured LLM provider.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"doc-assistant/internal/llm"
)

// SystemPrompt is the persona sent with every chat question.
const SystemPrompt = "You are a helpful and professional medical assistant."

// ErrBusy is returned when a question is submitted while another is still in flight.
var ErrBusy = errors.New("a question is already being answered")

// Exchange is one successful round trip. Seq orders exchanges within a transcript.
type Exchange struct {
	Seq      int       `json:"seq"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	At       time.Time `json:"at"`
}

// IsZero reports whether e is the empty value returned for blank submissions.
func (e Exchange) IsZero() bool {
	return e.Seq == 0
}

// Session mediates chat questions for a single user. The transcript is append-only
// and lives only as long as the Session value.
type Session struct {
	provider llm.Provider
	log      *slog.Logger
	now      func() time.Time

	inflight sync.Mutex

	mu         sync.RWMutex
	transcript []Exchange
	pending    string
	conv       llm.Conversation
}

// Option customizes a Session.
type Option func(*Session)

// WithClock overrides the time source used to stamp exchanges.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger used to report provider failures. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// NewSession creates an empty session bound to provider.
func NewSession(provider llm.Provider, opts ...Option) *Session {
	s := &Session{
		provider: provider,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stateful reports whether the provider keeps conversation memory on its side.
func (s *Session) Stateful() bool {
	_, ok := s.provider.(llm.Conversational)
	return ok
}

// Submit sends question to the provider and appends the exchange on success.
//
// A blank question is ignored: no provider call, no error, zero Exchange.
// On failure the transcript is left as it was. Previous exchanges are never
// replayed to a stateless provider; a stateful provider keeps its own history.
func (s *Session) Submit(ctx context.Context, question string) (Exchange, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Exchange{}, nil
	}
	if !s.inflight.TryLock() {
		return Exchange{}, ErrBusy
	}
	defer s.inflight.Unlock()

	s.setPending(question)
	defer s.setPending("")

	answer, err := s.ask(ctx, question)
	if err != nil {
		s.log.Warn("chat question failed", "provider", s.provider.Name(), "err", err)
		return Exchange{}, llm.AsProviderError(s.provider.Name(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ex := Exchange{
		Seq:      len(s.transcript) + 1,
		Question: question,
		Answer:   answer,
		At:       s.now(),
	}
	s.transcript = append(s.transcript, ex)
	return ex, nil
}

func (s *Session) ask(ctx context.Context, question string) (string, error) {
	conversational, ok := s.provider.(llm.Conversational)
	if !ok {
		return s.provider.Complete(ctx, SystemPrompt, question)
	}
	// Only Submit touches conv, and Submit holds inflight.
	if s.conv == nil {
		conv, err := conversational.NewConversation(ctx, SystemPrompt)
		if err != nil {
			return "", err
		}
		s.conv = conv
	}
	return s.conv.Send(ctx, question)
}

func (s *Session) setPending(q string) {
	s.mu.Lock()
	s.pending = q
	s.mu.Unlock()
}

// Pending returns the question currently being answered, or "" when idle.
func (s *Session) Pending() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// Transcript returns a copy of all exchanges in submission order.
func (s *Session) Transcript() []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Exchange, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Len returns the number of exchanges.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcript)
}
