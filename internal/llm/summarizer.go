package llm

import (
	"context"
	"strings"

	"github.com/ritmolabs/ritmo/internal/schema"
)

const summarizerSystem = "Condense the conversation below into a 3-5 sentence synopsis. " +
	"Keep the user's emotional tone, any concerns they raised, and any commitments made. " +
	"Write in the conversation's own language. Output only the synopsis."

// ChatSummarizer implements schema.Summarizer on top of the completion
// client. Memory compression uses it to fold old conversation turns into a
// short synopsis.
type ChatSummarizer struct {
	client *Client
}

func NewChatSummarizer(client *Client) *ChatSummarizer {
	return &ChatSummarizer{client: client}
}

func (s *ChatSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	out, err := s.client.Complete(ctx, summarizerSystem, []schema.ChatMessage{
		{Role: "user", Content: text},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
