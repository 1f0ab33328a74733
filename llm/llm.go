package llm

import (
	"context"
	"time"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type Result struct {
	Text     string
	Usage    Usage
	Duration time.Duration
}

type Request struct {
	Model    string
	Messages []Message
}

type ImageRequest struct {
	Model    string
	MIMEType string
	Data     []byte
	Prompt   string
}

// Client is the generative backend contract. Chat answers a text prompt;
// DescribeImage produces a caption for raw image bytes.
type Client interface {
	Chat(ctx context.Context, req Request) (Result, error)
	DescribeImage(ctx context.Context, req ImageRequest) (Result, error)
}
