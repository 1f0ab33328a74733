package telegram

import "context"

// Sender adapts the API client to the bot core's delivery contract.
type Sender struct {
	api *API
}

func NewSender(api *API) *Sender {
	return &Sender{api: api}
}

func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	return s.api.SendMessage(ctx, chatID, text, nil)
}

func (s *Sender) SendTextChunked(ctx context.Context, chatID int64, text string) error {
	return s.api.SendMessageChunked(ctx, chatID, text)
}

func (s *Sender) SendContactPrompt(ctx context.Context, chatID int64, text, buttonLabel string) error {
	return s.api.SendMessage(ctx, chatID, text, ContactKeyboard(buttonLabel))
}
