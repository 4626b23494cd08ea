// Package llm is the boundary to the external schedule-generating agent.
// It handles provider communication, prompt construction, and the single
// repair attempt; everything the agent returns passes through the
// normalizer and the validation engine before it is used.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Provider is the interface for LLM backends.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// NewProvider is the factory for creating LLM providers. It is a package-level
// variable so tests can replace it with a mock without modifying the call site.
// Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider func(providerName, model string) (Provider, error) = defaultNewProvider

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm: provider returned no text")

// Default models, used when no model is configured.
const (
	DefaultAnthropicModel = "claude-sonnet-4-5"
	DefaultOpenAIModel    = "gpt-4o"
	DefaultGoogleModel    = "gemini-1.5-pro"
)

func modelOr(model, fallback string) string {
	if strings.TrimSpace(model) == "" {
		return fallback
	}
	return model
}

// ── Provider dispatch ─────────────────────────────────────────────────────────

// defaultNewProvider dispatches to the appropriate provider implementation.
func defaultNewProvider(providerName, model string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case "anthropic", "":
		return newAnthropicProvider(model)
	case "openai":
		return newOpenAIProvider(model)
	case "google":
		return newGoogleProvider(model)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", providerName)
	}
}

// APIKeyEnv returns the environment variable that holds the API key for
// providerName.
func APIKeyEnv(providerName string) (string, error) {
	switch strings.ToLower(providerName) {
	case "anthropic", "":
		return "ANTHROPIC_API_KEY", nil
	case "openai":
		return "OPENAI_API_KEY", nil
	case "google":
		return "GOOGLE_API_KEY", nil
	default:
		return "", fmt.Errorf("llm: unknown provider %q", providerName)
	}
}

// apiKey reads the provider's key from the environment.
func apiKey(providerName string) (string, error) {
	env, err := APIKeyEnv(providerName)
	if err != nil {
		return "", err
	}
	key := os.Getenv(env)
	if key == "" {
		return "", fmt.Errorf("llm: %s environment variable not set", env)
	}
	return key, nil
}

// ── Anthropic provider ───────────────────────────────────────────────────────

// anthropicProvider asks Claude for schedule JSON.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(model string) (Provider, error) {
	key, err := apiKey("anthropic")
	if err != nil {
		return nil, err
	}
	client := anthropic.NewClient(option.WithAPIKey(key))
	return &anthropicProvider{client: client, model: modelOr(model, DefaultAnthropicModel)}, nil
}

func (p *anthropicProvider) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
	temperature float64,
) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: messages.new: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("anthropic: %w (stop reason %q)", ErrEmptyResponse, msg.StopReason)
	}
	return strings.Join(parts, ""), nil
}
