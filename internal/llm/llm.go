package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider is the stateless one-shot capability every vendor adapter offers.
type Provider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Conversational is implemented by providers that keep multi-turn state on their side.
type Conversational interface {
	Provider
	NewConversation(ctx context.Context, systemPrompt string) (Conversation, error)
}

// Conversation is a provider-side chat handle, created once and reused across turns.
type Conversation interface {
	Send(ctx context.Context, message string) (string, error)
}

// Options are the generation settings shared by all adapters.
type Options struct {
	Model           string
	MaxOutputTokens int
	Temperature     *float64
	Timeout         time.Duration
}

const defaultTimeout = 60 * time.Second

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultTimeout
	}
	return o.Timeout
}

// ProviderError wraps any failure coming back from a vendor: network, auth, quota
// or a response without usable text. Message is the vendor-supplied text.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AsProviderError returns err unchanged when it already is a *ProviderError and
// wraps it otherwise, so callers only ever see one failure type from a provider.
func AsProviderError(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{Provider: provider, Message: err.Error(), Err: err}
}
