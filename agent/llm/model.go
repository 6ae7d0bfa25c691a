// Package llm adapts the OpenAI SDK to the LanguageModel contract. Every
// completion is cached under the language-model namespace, and a client that
// never got configured surfaces ErrModelUnconfigured instead of panicking.
package llm

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	cachex "github.com/alessalabs/concierge/agent/cache"
	contractx "github.com/alessalabs/concierge/agent/contract"
)

// Model is one purpose-bound language model handle.
type Model struct {
	client      *openaisdk.Client
	cache       *cachex.Cache
	modelName   string
	temperature float64
	maxTokens   int64
	timeout     contextTimeout
}

type contextTimeout = func(ctx context.Context) (context.Context, context.CancelFunc)

// NewModel binds client to the settings configured for purpose. A nil client
// is allowed; completions then fail with ErrModelUnconfigured.
func NewModel(client *openaisdk.Client, cfg Config, purpose Purpose, cache *cachex.Cache) *Model {
	modelName, temperature := cfg.settingsFor(purpose)

	timeout := cfg.Timeout
	return &Model{
		client:      client,
		cache:       cache,
		modelName:   modelName,
		temperature: temperature,
		maxTokens:   cfg.MaxCompletionToken,
		timeout: func(ctx context.Context) (context.Context, context.CancelFunc) {
			if timeout <= 0 {
				return ctx, func() {}
			}
			return context.WithTimeout(ctx, timeout)
		},
	}
}

var _ contractx.LanguageModel = (*Model)(nil)

// Complete sends one system+user exchange and returns the assistant text.
func (m *Model) Complete(ctx context.Context, system, user string) (string, error) {
	if m == nil || m.client == nil {
		return "", contractx.ErrModelUnconfigured
	}

	if m.cache != nil {
		if cached, ok := m.cache.Get(cachex.NamespaceLanguageModel, m.modelName, system, user); ok {
			if text, ok := cached.(string); ok {
				return text, nil
			}
		}
	}

	ctx, cancel := m.timeout(ctx)
	defer cancel()

	resp, err := m.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(m.modelName),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(system),
			openaisdk.UserMessage(user),
		},
		Temperature:         openaisdk.Float(m.temperature),
		MaxCompletionTokens: openaisdk.Int(m.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", contractx.ErrModelInvoke)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: completion returned empty content", contractx.ErrModelInvoke)
	}

	if m.cache != nil {
		m.cache.Set(cachex.NamespaceLanguageModel, text, m.modelName, system, user)
	}
	return text, nil
}
