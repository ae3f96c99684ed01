package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"server/internal/domain"
)

// OpenAICompleter implements Completer using the official openai-go SDK.
type OpenAICompleter struct {
	client openai.Client
	model  string
}

// OpenAIOptions configures an OpenAICompleter.
type OpenAIOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// NewOpenAICompleter validates options and builds the client.
func NewOpenAICompleter(opts OpenAIOptions) (*OpenAICompleter, error) {
	if opts.APIKey == "" {
		return nil, errors.New("chat: openai api key is required")
	}
	if opts.Model == "" {
		return nil, errors.New("chat: openai model is required")
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	return &OpenAICompleter{client: openai.NewClient(reqOpts...), model: opts.Model}, nil
}

// Complete sends the instruction set plus history as one chat completion.
func (c *OpenAICompleter) Complete(ctx context.Context, instructions string, history []Message) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if instructions != "" {
		msgs = append(msgs, openai.SystemMessage(instructions))
	}
	for _, m := range history {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: msgs,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat: empty choices: %w", domain.ErrUnavailable)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", fmt.Errorf("chat: completion blocked by content filter: %w", domain.ErrSafetyRefused)
	}
	return choice.Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("chat: %v: %w", err, domain.ErrRateLimited)
		case apiErr.StatusCode >= 500:
			return fmt.Errorf("chat: %v: %w", err, domain.ErrUnavailable)
		case apiErr.StatusCode == http.StatusBadRequest && apiErr.Code == "content_policy_violation":
			return fmt.Errorf("chat: %v: %w", err, domain.ErrSafetyRefused)
		}
		return fmt.Errorf("chat: %w", err)
	}
	return fmt.Errorf("chat: %v: %w", err, domain.ErrUnavailable)
}

var _ Completer = (*OpenAICompleter)(nil)
