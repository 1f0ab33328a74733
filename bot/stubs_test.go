package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mirelhq/babelbot/llm"
	"github.com/mirelhq/babelbot/search"
	"github.com/mirelhq/babelbot/store"
)

type stubUsers struct {
	mu    sync.Mutex
	users map[int64]*store.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{users: make(map[int64]*store.User)}
}

func (s *stubUsers) Create(ctx context.Context, chatID int64, firstName, username string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[chatID]; ok {
		return nil, store.ErrUserExists
	}
	u := &store.User{ChatID: chatID, FirstName: firstName, Username: username, CreatedAt: time.Now()}
	s.users[chatID] = u
	return u, nil
}

func (s *stubUsers) GetByChatID(ctx context.Context, chatID int64) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[chatID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUsers) SetPhone(ctx context.Context, chatID int64, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[chatID]
	if !ok {
		return store.ErrUserNotFound
	}
	u.Phone = phone
	return nil
}

func (s *stubUsers) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type stubTurns struct {
	mu    sync.Mutex
	turns []*store.Turn
}

func newStubTurns() *stubTurns {
	return &stubTurns{}
}

func (s *stubTurns) Insert(ctx context.Context, turn *store.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *turn
	s.turns = append(s.turns, &cp)
	return nil
}

func (s *stubTurns) AttachResponse(ctx context.Context, turnID, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.turns {
		if t.TurnID == turnID {
			t.BotResponse = response
			return nil
		}
	}
	return store.ErrTurnNotFound
}

func (s *stubTurns) Latest(ctx context.Context, chatID int64) (*store.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *store.Turn
	for _, t := range s.turns {
		if t.ChatID != chatID {
			continue
		}
		if latest == nil || !t.CreatedAt.Before(latest.CreatedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, store.ErrTurnNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *stubTurns) all() []*store.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Turn, 0, len(s.turns))
	for _, t := range s.turns {
		cp := *t
		out = append(out, &cp)
	}
	return out
}

type sentMessage struct {
	ChatID        int64
	Text          string
	ContactPrompt bool
}

type stubSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (s *stubSender) SendText(ctx context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (s *stubSender) SendTextChunked(ctx context.Context, chatID int64, text string) error {
	return s.SendText(ctx, chatID, text)
}

func (s *stubSender) SendContactPrompt(ctx context.Context, chatID int64, text, buttonLabel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{ChatID: chatID, Text: text, ContactPrompt: true})
	return nil
}

func (s *stubSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type stubLLM struct {
	chatReply    string
	chatErr      error
	visionReply  string
	visionErr    error
	chatCalls    int
	visionCalls  int
	lastPrompt   string
	lastImageLen int
}

func (s *stubLLM) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	s.chatCalls++
	if len(req.Messages) > 0 {
		s.lastPrompt = req.Messages[len(req.Messages)-1].Content
	}
	if s.chatErr != nil {
		return llm.Result{}, s.chatErr
	}
	return llm.Result{Text: s.chatReply}, nil
}

func (s *stubLLM) DescribeImage(ctx context.Context, req llm.ImageRequest) (llm.Result, error) {
	s.visionCalls++
	s.lastImageLen = len(req.Data)
	if s.visionErr != nil {
		return llm.Result{}, s.visionErr
	}
	return llm.Result{Text: s.visionReply}, nil
}

// stubTranslator detects a fixed language and translates by wrapping the
// text with direction markers, so a round trip is its own inverse.
type stubTranslator struct {
	detectLang string
	detectErr  error
	err        error
}

func (s *stubTranslator) Detect(ctx context.Context, text string) (string, error) {
	if s.detectErr != nil {
		return "", s.detectErr
	}
	if s.detectLang == "" {
		return "en", nil
	}
	return s.detectLang, nil
}

func (s *stubTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	prefix := fmt.Sprintf("[%s>%s]", source, target)
	inverse := fmt.Sprintf("[%s>%s]", target, source)
	if len(text) >= len(inverse) && text[:len(inverse)] == inverse {
		return text[len(inverse):], nil
	}
	return prefix + text, nil
}

type stubSearch struct {
	results   []search.Result
	err       error
	lastQuery string
}

func (s *stubSearch) Search(ctx context.Context, query string) ([]search.Result, error) {
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type stubMedia struct {
	data  []byte
	err   error
	calls int
}

func (s *stubMedia) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

type testEnv struct {
	bot        *Bot
	users      *stubUsers
	turns      *stubTurns
	sender     *stubSender
	llm        *stubLLM
	translator *stubTranslator
	search     *stubSearch
	media      *stubMedia
}

func newTestEnv(t *testing.T, mutate func(*Options)) *testEnv {
	t.Helper()
	env := &testEnv{
		users:      newStubUsers(),
		turns:      newStubTurns(),
		sender:     &stubSender{},
		llm:        &stubLLM{chatReply: "ok"},
		translator: &stubTranslator{},
		search:     &stubSearch{},
		media:      &stubMedia{data: []byte{1, 2, 3}},
	}
	opts := Options{
		Logger:        slog.Default(),
		Users:         env.users,
		Turns:         env.turns,
		LLM:           env.llm,
		Translator:    env.translator,
		Search:        env.search,
		Sender:        env.sender,
		Media:         env.media,
		Model:         "test-model",
		VisionModel:   "test-vision",
		FollowUpDelay: time.Hour,
	}
	if mutate != nil {
		mutate(&opts)
	}
	b, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(b.Close)
	env.bot = b
	return env
}
