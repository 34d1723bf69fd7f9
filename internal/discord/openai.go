package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/hunterjsb/octanecore/internal/tracker"
	"github.com/sashabaranov/go-openai"
)

func NewOpenAIClient(apiKey string, maxTokens int, temperature float64) *OpenAIClient {
	client := openai.NewClient(apiKey)
	return &OpenAIClient{
		client:      client,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
	}
}

func (o *OpenAIClient) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT3Dot5Turbo,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a friendly Rocket League coach. Answer in one short sentence.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   o.maxTokens,
			Temperature: o.temperature,
		},
	)

	if err != nil {
		return "", fmt.Errorf("ChatCompletion error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// StatsComment asks the model for a one-line remark on a player's stats
func (o *OpenAIClient) StatsComment(ctx context.Context, snap *tracker.Snapshot) (string, error) {
	return o.GenerateResponse(ctx, statsPrompt(snap))
}

func statsPrompt(snap *tracker.Snapshot) string {
	ratio := 0.0
	if snap.Wins > 0 {
		ratio = float64(snap.Goals) / float64(snap.Wins)
	}
	return fmt.Sprintf(
		"Player %s on %s is ranked %s with %.0f MMR, %d wins and %d goals (%.2f goals per win). Give them an encouraging tip.",
		snap.Username, snap.Platform.Display(), snap.Rank, snap.MMR, snap.Wins, snap.Goals, ratio,
	)
}
