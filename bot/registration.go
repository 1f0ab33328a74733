package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/mirelhq/babelbot/store"
)

// handleStart registers the sender on first contact. The store's unique
// chat_id index makes creation at-most-once even when duplicate /start
// events race; a duplicate insert routes to the welcome-back branch.
func (b *Bot) handleStart(ctx context.Context, ev Event) error {
	_, err := b.users.Create(ctx, ev.ChatID, ev.FirstName, ev.Username)
	switch {
	case err == nil:
		b.logger.Info("user_registered", "chat_id", ev.ChatID, "username", ev.Username)
		return b.sender.SendContactPrompt(ctx, ev.ChatID, msgWelcome, contactButtonLabel)
	case errors.Is(err, store.ErrUserExists):
		return b.sender.SendText(ctx, ev.ChatID, msgWelcomeBack)
	default:
		return err
	}
}

// handleContact captures a shared phone number. A contact share from a chat
// with no profile is a soft no-op: nothing is created and no reply is sent.
func (b *Bot) handleContact(ctx context.Context, ev Event) error {
	phone := strings.TrimSpace(ev.Contact.PhoneNumber)
	if phone == "" {
		return nil
	}
	err := b.users.SetPhone(ctx, ev.ChatID, phone)
	if errors.Is(err, store.ErrUserNotFound) {
		b.logger.Warn("contact_without_profile", "chat_id", ev.ChatID)
		return nil
	}
	if err != nil {
		return err
	}
	b.logger.Info("phone_saved", "chat_id", ev.ChatID)
	return b.sender.SendText(ctx, ev.ChatID, msgPhoneSaved)
}
