package bot

import (
	"context"

	"github.com/mirelhq/babelbot/store"
)

// UserStore persists registration profiles.
type UserStore interface {
	Create(ctx context.Context, chatID int64, firstName, username string) (*store.User, error)
	SetPhone(ctx context.Context, chatID int64, phone string) error
}

// TurnStore persists chat turns.
type TurnStore interface {
	Insert(ctx context.Context, turn *store.Turn) error
	AttachResponse(ctx context.Context, turnID, response string) error
	Latest(ctx context.Context, chatID int64) (*store.Turn, error)
}

// Sender delivers replies to the chat transport.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendTextChunked(ctx context.Context, chatID int64, text string) error
	// SendContactPrompt sends text together with a reply keyboard asking the
	// user to share their phone number.
	SendContactPrompt(ctx context.Context, chatID int64, text, buttonLabel string) error
}

// MediaDownloader fetches media payload bytes from the transport.
type MediaDownloader interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}
