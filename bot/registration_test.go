package bot

import (
	"context"
	"testing"
)

func TestStartRegistersOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	if err := env.bot.HandleEvent(ctx, Event{ChatID: 7, Text: "/start", FirstName: "Ada", Username: "ada"}); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if env.users.count() != 1 {
		t.Fatalf("expected 1 profile, got %d", env.users.count())
	}
	sent := env.sender.messages()
	if len(sent) != 1 || !sent[0].ContactPrompt || sent[0].Text != msgWelcome {
		t.Fatalf("expected contact prompt %q, got %#v", msgWelcome, sent)
	}

	u, err := env.users.GetByChatID(ctx, 7)
	if err != nil {
		t.Fatalf("GetByChatID() error = %v", err)
	}
	if u.Phone != "" {
		t.Fatalf("new profile must have phone unset, got %q", u.Phone)
	}

	// Second /start: no new profile, generic welcome back.
	if err := env.bot.HandleEvent(ctx, Event{ChatID: 7, Text: "/start"}); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if env.users.count() != 1 {
		t.Fatalf("duplicate /start created a profile: %d", env.users.count())
	}
	sent = env.sender.messages()
	if len(sent) != 2 || sent[1].Text != msgWelcomeBack || sent[1].ContactPrompt {
		t.Fatalf("expected welcome back, got %#v", sent[1])
	}
}

func TestContactShareCapturesPhone(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	if err := env.bot.HandleEvent(ctx, Event{ChatID: 7, Text: "/start"}); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if err := env.bot.HandleEvent(ctx, Event{ChatID: 7, Contact: &Contact{PhoneNumber: "+15551234"}}); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	u, err := env.users.GetByChatID(ctx, 7)
	if err != nil {
		t.Fatalf("GetByChatID() error = %v", err)
	}
	if u.Phone != "+15551234" {
		t.Fatalf("phone mismatch: got %q", u.Phone)
	}
	sent := env.sender.messages()
	if sent[len(sent)-1].Text != msgPhoneSaved {
		t.Fatalf("expected %q, got %q", msgPhoneSaved, sent[len(sent)-1].Text)
	}

	// Re-sharing the same number is a state no-op and must not insert.
	if err := env.bot.HandleEvent(ctx, Event{ChatID: 7, Contact: &Contact{PhoneNumber: "+15551234"}}); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if env.users.count() != 1 {
		t.Fatalf("re-share created a profile: %d", env.users.count())
	}

	// A different number updates the single profile in place.
	if err := env.bot.HandleEvent(ctx, Event{ChatID: 7, Contact: &Contact{PhoneNumber: "+15559999"}}); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if env.users.count() != 1 {
		t.Fatalf("expected 1 profile after update, got %d", env.users.count())
	}
	u, _ = env.users.GetByChatID(ctx, 7)
	if u.Phone != "+15559999" {
		t.Fatalf("phone not updated: got %q", u.Phone)
	}
}

func TestContactShareUnknownUserIsSoftNoop(t *testing.T) {
	env := newTestEnv(t, nil)

	if err := env.bot.HandleEvent(context.Background(), Event{ChatID: 42, Contact: &Contact{PhoneNumber: "+1"}}); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if env.users.count() != 0 {
		t.Fatalf("contact share must not auto-register, got %d profiles", env.users.count())
	}
	if sent := env.sender.messages(); len(sent) != 0 {
		t.Fatalf("expected no reply, got %#v", sent)
	}
}
