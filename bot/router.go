// Package bot implements the message-handling core: event routing,
// registration, the conversational pipeline and the follow-up scheduler.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mirelhq/babelbot/llm"
	"github.com/mirelhq/babelbot/search"
	"github.com/mirelhq/babelbot/translate"
)

const defaultFollowUpDelay = 5 * time.Minute

type Options struct {
	Logger     *slog.Logger
	Users      UserStore
	Turns      TurnStore
	LLM        llm.Client
	Translator translate.Translator
	Search     search.Provider
	Sender     Sender
	Media      MediaDownloader

	Model       string
	VisionModel string
	// BaseLanguage is the canonical language all input is normalized to
	// before reaching the model. Defaults to "en".
	BaseLanguage  string
	FollowUpDelay time.Duration
	Now           func() time.Time
}

type Bot struct {
	logger     *slog.Logger
	users      UserStore
	turns      TurnStore
	llm        llm.Client
	translator translate.Translator
	search     search.Provider
	sender     Sender
	media      MediaDownloader

	model       string
	visionModel string
	baseLang    string
	nowFn       func() time.Time

	followUps *followUpScheduler
}

func New(opts Options) (*Bot, error) {
	if opts.Users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if opts.Turns == nil {
		return nil, fmt.Errorf("turn store is required")
	}
	if opts.LLM == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if opts.Translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	if opts.Search == nil {
		return nil, fmt.Errorf("search provider is required")
	}
	if opts.Sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	if opts.Media == nil {
		return nil, fmt.Errorf("media downloader is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseLang := strings.TrimSpace(opts.BaseLanguage)
	if baseLang == "" {
		baseLang = "en"
	}
	delay := opts.FollowUpDelay
	if delay <= 0 {
		delay = defaultFollowUpDelay
	}
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	b := &Bot{
		logger:      logger,
		users:       opts.Users,
		turns:       opts.Turns,
		llm:         opts.LLM,
		translator:  opts.Translator,
		search:      opts.Search,
		sender:      opts.Sender,
		media:       opts.Media,
		model:       opts.Model,
		visionModel: opts.VisionModel,
		baseLang:    baseLang,
		nowFn:       nowFn,
	}
	b.followUps = newFollowUpScheduler(logger, b.turns, b.sender, delay)
	return b, nil
}

// Close stops any armed follow-up timers.
func (b *Bot) Close() {
	b.followUps.Stop()
}

// HandleEvent classifies the event and runs exactly one handling path.
// Routes are checked in order and the first match wins; an event produces
// at most one reply.
func (b *Bot) HandleEvent(ctx context.Context, ev Event) error {
	if ctx == nil {
		return fmt.Errorf("context is required")
	}
	if ev.ChatID == 0 {
		return fmt.Errorf("chat_id is required")
	}

	text := strings.TrimSpace(ev.Text)
	cmdWord, _ := splitCommand(text)

	switch {
	case normalizeSlashCommand(cmdWord) == "/start":
		return b.handleStart(ctx, ev)
	case ev.Contact != nil:
		return b.handleContact(ctx, ev)
	case ev.Photo != nil:
		return b.handleImage(ctx, ev)
	case strings.HasPrefix(text, searchPrefix):
		return b.handleSearch(ctx, ev.ChatID, text)
	case strings.HasPrefix(text, translatePrefix) && strings.TrimSpace(strings.TrimPrefix(text, translatePrefix)) != "":
		return b.handleTranslate(ctx, ev.ChatID, text)
	case strings.HasPrefix(text, "/"):
		// Unrecognized command: no reply.
		b.logger.Debug("event_ignored", "chat_id", ev.ChatID, "command", cmdWord)
		return nil
	case text != "":
		return b.handleConversation(ctx, ev.ChatID, text)
	default:
		return nil
	}
}
