package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mirelhq/babelbot/bot"
)

type pollJob struct {
	Event bot.Event
}

type chatWorker struct {
	Jobs chan pollJob
}

type PollerOptions struct {
	API     *API
	Logger  *slog.Logger
	Handler func(ctx context.Context, ev bot.Event) error

	PollTimeout    time.Duration
	TaskTimeout    time.Duration
	MaxConcurrency int
}

// Poller long-polls getUpdates and dispatches events to per-chat serial
// workers: one chat's events run in order, distinct chats run in parallel
// up to MaxConcurrency.
type Poller struct {
	api         *API
	logger      *slog.Logger
	handler     func(ctx context.Context, ev bot.Event) error
	pollTimeout time.Duration
	taskTimeout time.Duration
	sem         chan struct{}

	mu      sync.Mutex
	workers map[int64]*chatWorker
}

func NewPoller(opts PollerOptions) (*Poller, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("telegram api is required")
	}
	if opts.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pollTimeout := opts.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 30 * time.Second
	}
	taskTimeout := opts.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = 2 * time.Minute
	}
	maxConc := opts.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 3
	}
	return &Poller{
		api:         opts.API,
		logger:      logger,
		handler:     opts.Handler,
		pollTimeout: pollTimeout,
		taskTimeout: taskTimeout,
		sem:         make(chan struct{}, maxConc),
		workers:     make(map[int64]*chatWorker),
	}, nil
}

// Run polls until ctx is canceled. Transport errors back off for a second
// and the loop continues.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		updates, nextOffset, err := p.api.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("get_updates_error", "error", err.Error())
			time.Sleep(1 * time.Second)
			continue
		}
		offset = nextOffset

		for _, u := range updates {
			msg := u.Message
			if msg == nil || msg.Chat == nil {
				continue
			}
			if msg.From != nil && msg.From.IsBot {
				continue
			}
			ev, ok := eventFromMessage(msg)
			if !ok {
				continue
			}
			p.enqueue(ev)
		}
	}
}

func (p *Poller) enqueue(ev bot.Event) {
	p.mu.Lock()
	w := p.workers[ev.ChatID]
	if w == nil {
		w = &chatWorker{Jobs: make(chan pollJob, 16)}
		p.workers[ev.ChatID] = w
		go p.runWorker(ev.ChatID, w)
	}
	p.mu.Unlock()

	p.logger.Info("event_enqueued", "chat_id", ev.ChatID, "text_len", len(ev.Text))
	w.Jobs <- pollJob{Event: ev}
}

func (p *Poller) runWorker(chatID int64, w *chatWorker) {
	for job := range w.Jobs {
		p.sem <- struct{}{}
		func() {
			defer func() { <-p.sem }()

			ctx, cancel := context.WithTimeout(context.Background(), p.taskTimeout)
			defer cancel()
			if err := p.handler(ctx, job.Event); err != nil {
				// A failed event aborts only itself; the worker keeps serving.
				p.logger.Warn("event_failed", "chat_id", chatID, "error", err.Error())
			}
		}()
	}
}

// eventFromMessage maps a transport message to a core event. Messages with
// no text, contact or photo payload are dropped.
func eventFromMessage(msg *Message) (bot.Event, bool) {
	ev := bot.Event{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
	}
	if msg.From != nil {
		ev.FirstName = msg.From.FirstName
		ev.Username = msg.From.Username
	}
	if msg.Contact != nil {
		ev.Contact = &bot.Contact{PhoneNumber: msg.Contact.PhoneNumber}
	}
	if len(msg.Photo) > 0 {
		// Sizes arrive smallest first; take the largest rendition.
		ev.Photo = &bot.Photo{FileID: msg.Photo[len(msg.Photo)-1].FileID}
	}
	if ev.Text == "" && ev.Contact == nil && ev.Photo == nil {
		return bot.Event{}, false
	}
	return ev, true
}
