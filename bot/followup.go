package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mirelhq/babelbot/store"
)

const followUpFireTimeout = 30 * time.Second

// followUpScheduler arms one deferred nudge per chat. Arming again before
// the previous timer fires supersedes it, so overlapping completed turns
// produce a single nudge. Timers live only in process memory.
type followUpScheduler struct {
	logger *slog.Logger
	turns  TurnStore
	sender Sender
	delay  time.Duration

	mu      sync.Mutex
	timers  map[int64]*time.Timer
	stopped bool
}

func newFollowUpScheduler(logger *slog.Logger, turns TurnStore, sender Sender, delay time.Duration) *followUpScheduler {
	return &followUpScheduler{
		logger: logger,
		turns:  turns,
		sender: sender,
		delay:  delay,
		timers: make(map[int64]*time.Timer),
	}
}

// Arm schedules the nudge for chatID, replacing any timer already pending.
func (s *followUpScheduler) Arm(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if prev, ok := s.timers[chatID]; ok {
		prev.Stop()
	}
	s.timers[chatID] = time.AfterFunc(s.delay, func() {
		s.fire(chatID)
	})
}

// fire sends the nudge if the chat's latest turn is still an answered one.
// A pending latest turn means the user is mid-exchange; no nudge then.
func (s *followUpScheduler) fire(chatID int64) {
	s.mu.Lock()
	delete(s.timers, chatID)
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), followUpFireTimeout)
	defer cancel()

	turn, err := s.turns.Latest(ctx, chatID)
	if err != nil {
		if !errors.Is(err, store.ErrTurnNotFound) {
			s.logger.Warn("followup_lookup_failed", "chat_id", chatID, "error", err.Error())
		}
		return
	}
	if !turn.Answered() {
		return
	}

	if err := s.sender.SendText(ctx, chatID, msgNudge); err != nil {
		s.logger.Warn("followup_send_failed", "chat_id", chatID, "error", err.Error())
		return
	}
	s.logger.Info("followup_sent", "chat_id", chatID)
}

// Stop halts all pending timers. Used on shutdown.
func (s *followUpScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for chatID, t := range s.timers {
		t.Stop()
		delete(s.timers, chatID)
	}
}
