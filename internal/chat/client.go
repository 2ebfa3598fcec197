package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	temperature = 0.8
	maxTokens   = 500
)

// Completer sends an assembled prompt to a chat-completion API.
type Completer interface {
	Complete(ctx context.Context, messages []PromptMessage) (*Completion, error)
}

type OpenAICompleter struct {
	client *openai.Client
	model  string
}

func NewOpenAICompleter(baseURL, apiKey, model string) *OpenAICompleter {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	options := []option.RequestOption{
		option.WithBaseURL(baseURL),
		// A failed call is reported once; nothing is retried.
		option.WithMaxRetries(0),
	}

	if apiKey == "" {
		slog.Warn("OPENAI_API_KEY is not set, will try unauthenticated access")
	} else {
		options = append(options, option.WithAPIKey(apiKey))
	}

	client := openai.NewClient(options...)
	return &OpenAICompleter{client: &client, model: model}
}

func (o *OpenAICompleter) Complete(ctx context.Context, messages []PromptMessage) (*Completion, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    params,
		Model:       o.model,
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return nil, err
	}

	completion := &Completion{Choices: make([]string, 0, len(resp.Choices))}
	for _, choice := range resp.Choices {
		completion.Choices = append(completion.Choices, choice.Message.Content)
	}
	return completion, nil
}
