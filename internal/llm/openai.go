package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenAIModel = "gpt-3.5-turbo"

// OpenAIClient calls the Chat Completions API of OpenAI or any compatible endpoint.
// It is stateless: every call carries only the prompts it is given.
type OpenAIClient struct {
	model  openai.ChatModel
	opts   Options
	client *openai.Client
}

// NewOpenAIClient builds a client against api.openai.com, or baseURL when set.
func NewOpenAIClient(apiKey, baseURL string, opts Options) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if opts.Model == "" {
		opts.Model = defaultOpenAIModel
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Failures surface to the user as-is; nothing is retried.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	cli := openai.NewClient(reqOpts...)
	return &OpenAIClient{
		model:  openai.ChatModel(opts.Model),
		opts:   opts,
		client: &cli,
	}, nil
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", &ProviderError{Provider: "openai", Message: "client not initialized"}
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.timeout())
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: buildMessages(systemPrompt, userPrompt),
	}
	if c.opts.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.opts.MaxOutputTokens))
	}
	if c.opts.Temperature != nil {
		params.Temperature = openai.Float(*c.opts.Temperature)
	}
	resp, err := c.client.Chat.Completions.New(reqCtx, params)
	if err != nil {
		return "", c.wrapError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &ProviderError{Provider: "openai", Message: "no choices returned"}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) wrapError(err error) *ProviderError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &ProviderError{Provider: "openai", Message: apiErr.Message, Err: err}
	}
	return &ProviderError{Provider: "openai", Message: err.Error(), Err: err}
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		})
	}
	return append(messages, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(user),
			},
		},
	})
}
