package bot

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mirelhq/babelbot/llm"
	"github.com/mirelhq/babelbot/store"
)

// handleConversation runs the main pipeline: detect language, normalize to
// the base language, persist a pending turn, ask the model, localize the
// reply, attach it to the turn, respond and arm the follow-up timer.
// Translation errors abort the event; model errors degrade to the fallback
// text and leave the turn pending.
func (b *Bot) handleConversation(ctx context.Context, chatID int64, text string) error {
	detected, err := b.translator.Detect(ctx, text)
	if err != nil {
		return err
	}

	input := text
	if detected != b.baseLang {
		input, err = b.translator.Translate(ctx, text, detected, b.baseLang)
		if err != nil {
			return err
		}
	}

	turn := &store.Turn{
		TurnID:    uuid.NewString(),
		ChatID:    chatID,
		UserInput: input,
		CreatedAt: b.nowFn().UTC(),
	}
	if err := b.turns.Insert(ctx, turn); err != nil {
		return err
	}

	res, err := b.llm.Chat(ctx, llm.Request{
		Model:    b.model,
		Messages: []llm.Message{{Role: "user", Content: input}},
	})
	if err != nil {
		// No retry: the turn stays pending and the user gets the fallback.
		b.logger.Warn("llm_error", "chat_id", chatID, "error", err.Error())
		return b.sender.SendText(ctx, chatID, msgAIFallback)
	}

	reply := strings.TrimSpace(res.Text)
	if reply == "" {
		reply = msgAIFallback
	}

	if detected != b.baseLang {
		reply, err = b.translator.Translate(ctx, reply, b.baseLang, detected)
		if err != nil {
			return err
		}
	}

	if err := b.turns.AttachResponse(ctx, turn.TurnID, reply); err != nil {
		return err
	}
	if err := b.sender.SendTextChunked(ctx, chatID, reply); err != nil {
		return err
	}

	b.followUps.Arm(chatID)
	return nil
}
