package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient calls the Gemini API. Besides one-shot completions it can open
// chat sessions whose history is kept by the SDK's Chat object.
type GeminiClient struct {
	model  string
	opts   Options
	client *genai.Client
}

// NewGeminiClient builds a client for the Gemini developer API. baseURL is optional.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string, opts Options) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if opts.Model == "" {
		opts.Model = defaultGeminiModel
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{model: opts.Model, opts: opts, client: cli}, nil
}

func (c *GeminiClient) Name() string { return "gemini" }

func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", &ProviderError{Provider: "gemini", Message: "client not initialized"}
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.timeout())
	defer cancel()

	resp, err := c.client.Models.GenerateContent(reqCtx, c.model, genai.Text(userPrompt), c.generateConfig(systemPrompt))
	if err != nil {
		return "", wrapGeminiError(err)
	}
	return replyText(resp)
}

// NewConversation opens a chat whose previous turns are resent by the SDK on every Send.
func (c *GeminiClient) NewConversation(ctx context.Context, systemPrompt string) (Conversation, error) {
	if c == nil || c.client == nil {
		return nil, &ProviderError{Provider: "gemini", Message: "client not initialized"}
	}
	chat, err := c.client.Chats.Create(ctx, c.model, c.generateConfig(systemPrompt), nil)
	if err != nil {
		return nil, wrapGeminiError(err)
	}
	return &geminiConversation{chat: chat, opts: c.opts}, nil
}

func (c *GeminiClient) generateConfig(systemPrompt string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if c.opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(c.opts.MaxOutputTokens)
	}
	if c.opts.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*c.opts.Temperature))
	}
	return cfg
}

type geminiConversation struct {
	chat *genai.Chat
	opts Options
}

func (g *geminiConversation) Send(ctx context.Context, message string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, g.opts.timeout())
	defer cancel()

	resp, err := g.chat.SendMessage(reqCtx, genai.Part{Text: message})
	if err != nil {
		return "", wrapGeminiError(err)
	}
	return replyText(resp)
}

func replyText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", &ProviderError{Provider: "gemini", Message: "empty response"}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &ProviderError{Provider: "gemini", Message: "no text in response"}
	}
	return text, nil
}

func wrapGeminiError(err error) *ProviderError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &ProviderError{Provider: "gemini", Message: apiErr.Message, Err: err}
	}
	return &ProviderError{Provider: "gemini", Message: err.Error(), Err: err}
}
