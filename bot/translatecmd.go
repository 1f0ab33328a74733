package bot

import (
	"context"
	"strings"

	"github.com/mirelhq/babelbot/llm"
)

// handleTranslate asks the model to translate the captured text into the
// base language. The direction is fixed regardless of the input language.
func (b *Bot) handleTranslate(ctx context.Context, chatID int64, text string) error {
	captured := strings.TrimSpace(strings.TrimPrefix(text, translatePrefix))

	translation := msgTranslateUnavailable
	res, err := b.llm.Chat(ctx, llm.Request{
		Model:    b.model,
		Messages: []llm.Message{{Role: "user", Content: "Translate this to English: " + captured}},
	})
	if err != nil {
		b.logger.Warn("translate_command_error", "chat_id", chatID, "error", err.Error())
	} else if out := strings.TrimSpace(res.Text); out != "" {
		translation = out
	}

	return b.sender.SendTextChunked(ctx, chatID, "Translation: "+translation)
}
