package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// GPTGenerator optionally rewrites a template-rendered candidate with an LLM.
// Every generated text still goes through the validator and the length gate,
// so a misbehaving model can only ever cost a retry.
type GPTGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewGPTGenerator(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) *GPTGenerator {
	return &GPTGenerator{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Rewrite asks the model for a tweet about topic in the category's voice.
// On any failure the original template text is returned unchanged, mirroring
// a template-only setup.
func (g *GPTGenerator) Rewrite(ctx context.Context, category, topic, templateText string) string {
	prompt := fmt.Sprintf(`Write a single tweet (max 240 characters, no hashtags) about %q for a %s-themed account. Keep the tone of this draft but improve the wording: %s`,
		topic, category, templateText)

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   g.maxTokens,
			Temperature: float32(g.temperature),
		},
	)
	if err != nil {
		g.logger.Warn("GPT rewrite failed, keeping template text", zap.Error(err))
		return templateText
	}
	if len(resp.Choices) == 0 {
		return templateText
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	text = strings.Trim(text, `"`)
	if text == "" {
		return templateText
	}
	return text
}
