package store

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is one registered chat identity. Phone stays empty until the user
// shares a contact and never reverts once set.
type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	ChatID    int64         `bson:"chat_id"`
	FirstName string        `bson:"first_name"`
	Username  string        `bson:"username"`
	Phone     string        `bson:"phone"`
	CreatedAt time.Time     `bson:"created_at"`
}

// Turn is one user-message/bot-response exchange. A turn with an empty
// BotResponse is pending; the response is attached exactly once, by TurnID.
type Turn struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	TurnID      string        `bson:"turn_id"`
	ChatID      int64         `bson:"chat_id"`
	UserInput   string        `bson:"user_input"`
	BotResponse string        `bson:"bot_response"`
	CreatedAt   time.Time     `bson:"created_at"`
}

// Answered reports whether the bot response has been attached.
func (t *Turn) Answered() bool {
	return t != nil && t.BotResponse != ""
}
