package llm

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// openaiProvider asks an OpenAI chat model for schedule JSON. JSON object
// mode is on, so replies arrive without prose or code fences.
type openaiProvider struct {
	client openai.Client
	model  string
}

func newOpenAIProvider(model string) (Provider, error) {
	key, err := apiKey("openai")
	if err != nil {
		return nil, err
	}
	return &openaiProvider{
		client: openai.NewClient(option.WithAPIKey(key)),
		model:  modelOr(model, DefaultOpenAIModel),
	}, nil
}

func (p *openaiProvider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
	temperature float64,
) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.model),
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat.completions.new: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w (no choices)", ErrEmptyResponse)
	}
	choice := resp.Choices[0]
	if choice.Message.Content == "" {
		return "", fmt.Errorf("openai: %w (finish reason %q)", ErrEmptyResponse, choice.FinishReason)
	}
	return choice.Message.Content, nil
}
