// Package advisor builds one-shot prompts for lab report interpretation and
// disease symptom lookup. Nothing is remembered between calls.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"doc-assistant/internal/llm"
)

const (
	reportSystemPrompt   = "You are a medical assistant who explains laboratory results to patients in plain language. Point out values outside typical reference ranges and suggest when to consult a doctor."
	symptomsSystemPrompt = "You are a helpful and professional medical assistant."

	defaultMaxWords = 3000
)

var (
	// ErrEmptyDocument is returned when there is no report text to interpret.
	ErrEmptyDocument = errors.New("document has no extractable text")
	// ErrUnknownDisease is returned for names outside the supported list.
	ErrUnknownDisease = errors.New("unknown disease")
)

// Disease is one entry of the fixed symptom-lookup list.
type Disease string

const (
	Malaria      Disease = "Malaria"
	Asthma       Disease = "Asthma"
	Typhoid      Disease = "Typhoid"
	Tuberculosis Disease = "Tuberculosis"
	Covid19      Disease = "COVID-19"
)

var diseases = []Disease{Malaria, Asthma, Typhoid, Tuberculosis, Covid19}

// Diseases returns the supported names in display order.
func Diseases() []Disease {
	out := make([]Disease, len(diseases))
	copy(out, diseases)
	return out
}

// ParseDisease matches name exactly against the supported list.
func ParseDisease(name string) (Disease, error) {
	for _, d := range diseases {
		if string(d) == name {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDisease, name)
}

// Advisor turns user-supplied context into a single provider call.
type Advisor struct {
	provider llm.Provider
	log      *slog.Logger
	maxWords int
}

// New returns an Advisor. maxWords caps how much report text is sent; zero or
// less means the default of 3000 words.
func New(provider llm.Provider, log *slog.Logger, maxWords int) *Advisor {
	if maxWords <= 0 {
		maxWords = defaultMaxWords
	}
	if log == nil {
		log = slog.Default()
	}
	return &Advisor{provider: provider, log: log, maxWords: maxWords}
}

// InterpretReport asks the model to explain extracted lab report text. The reply
// is returned verbatim.
func (a *Advisor) InterpretReport(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}
	body, clipped := clipWords(text, a.maxWords)
	if clipped {
		a.log.Info("report text clipped", "max_words", a.maxWords)
	}
	prompt := fmt.Sprintf("Explain these lab results in simple terms:\n\n%s", body)
	reply, err := a.provider.Complete(ctx, reportSystemPrompt, prompt)
	if err != nil {
		a.log.Warn("report interpretation failed", "provider", a.provider.Name(), "err", err)
		return "", llm.AsProviderError(a.provider.Name(), err)
	}
	return reply, nil
}

// Symptoms asks for the symptoms of, and general advice for, a supported disease.
// Unsupported names are rejected before any provider call.
func (a *Advisor) Symptoms(ctx context.Context, name string) (string, error) {
	disease, err := ParseDisease(name)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf("List the common symptoms of %s, how it is usually diagnosed, and general advice for someone who suspects they have it.", disease)
	reply, err := a.provider.Complete(ctx, symptomsSystemPrompt, prompt)
	if err != nil {
		a.log.Warn("symptom lookup failed", "provider", a.provider.Name(), "disease", disease, "err", err)
		return "", llm.AsProviderError(a.provider.Name(), err)
	}
	return reply, nil
}

// clipWords keeps the original text when it fits and otherwise returns the first
// max whitespace-delimited words joined by single spaces.
func clipWords(text string, max int) (string, bool) {
	words := strings.Fields(text)
	if len(words) <= max {
		return text, false
	}
	return strings.Join(words[:max], " "), true
}
