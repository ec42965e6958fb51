// Package llm turns assembled prompts into natural-language answers via the
// OpenAI chat completions API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

// DefaultTemperature keeps answers grounded in the supplied context.
const DefaultTemperature = 0.2

// Generator produces completions for fully assembled prompts. Generation
// failures are returned as errors; the caller decides how to degrade.
type Generator struct {
	client      *openai.Client
	model       openai.ChatModel
	temperature float64
}

// NewGenerator creates a generator sharing the given OpenAI client. An empty
// model selects GPT-4o; a non-positive temperature selects the default.
func NewGenerator(client *openai.Client, model string, temperature float64) *Generator {
	if model == "" {
		model = openai.ChatModelGPT4o
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Generator{
		client:      client,
		model:       model,
		temperature: temperature,
	}
}

// Generate runs a single-turn completion for the prompt, retrying rate-limit
// errors with exponential backoff.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	var answer string

	operation := func() error {
		resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model:       g.model,
			Temperature: openai.Float(g.temperature),
		})
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("completion returned no choices"))
		}
		answer = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	return answer, nil
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
