// Package store persists user profiles and chat turns in MongoDB.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrTurnNotFound = errors.New("turn not found")
)

// Client wraps the MongoDB connection and exposes the two stores.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	c := &Client{client: client, db: client.Database(database)}
	if err := c.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// ensureIndexes creates the unique chat_id index that makes profile creation
// at-most-once under concurrent duplicate /start events, plus the lookup
// indexes the turn queries sort on.
func (c *Client) ensureIndexes(ctx context.Context) error {
	_, err := c.UsersCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chat_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	_, err = c.TurnsCollection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "turn_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("turns index: %w", err)
	}
	return nil
}

func (c *Client) UsersCollection() *mongo.Collection {
	return c.db.Collection("users")
}

func (c *Client) TurnsCollection() *mongo.Collection {
	return c.db.Collection("chat_history")
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Users performs profile operations against the users collection.
type Users struct {
	coll *mongo.Collection
}

func NewUsers(coll *mongo.Collection) *Users {
	return &Users{coll: coll}
}

// Create inserts a new profile with phone unset. Returns ErrUserExists when
// a profile for the chat id is already present.
func (u *Users) Create(ctx context.Context, chatID int64, firstName, username string) (*User, error) {
	user := &User{
		ChatID:    chatID,
		FirstName: firstName,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	result, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	user.ID = result.InsertedID.(bson.ObjectID)
	return user, nil
}

func (u *Users) GetByChatID(ctx context.Context, chatID int64) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetPhone records the shared phone number. Returns ErrUserNotFound when no
// profile exists for the chat id.
func (u *Users) SetPhone(ctx context.Context, chatID int64, phone string) error {
	result, err := u.coll.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{"$set": bson.M{"phone": phone}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Turns performs chat-history operations against the chat_history collection.
type Turns struct {
	coll *mongo.Collection
}

func NewTurns(coll *mongo.Collection) *Turns {
	return &Turns{coll: coll}
}

// Insert persists a pending turn (bot response not yet attached).
func (t *Turns) Insert(ctx context.Context, turn *Turn) error {
	result, err := t.coll.InsertOne(ctx, turn)
	if err != nil {
		return err
	}
	turn.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// AttachResponse sets the bot response on the turn created with turnID.
func (t *Turns) AttachResponse(ctx context.Context, turnID, response string) error {
	result, err := t.coll.UpdateOne(ctx,
		bson.M{"turn_id": turnID},
		bson.M{"$set": bson.M{"bot_response": response}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrTurnNotFound
	}
	return nil
}

// Latest returns the most recent turn for the chat, or ErrTurnNotFound when
// the chat has no history.
func (t *Turns) Latest(ctx context.Context, chatID int64) (*Turn, error) {
	opts := options.FindOne().SetSort(bson.M{"created_at": -1})
	var turn Turn
	err := t.coll.FindOne(ctx, bson.M{"chat_id": chatID}, opts).Decode(&turn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTurnNotFound
		}
		return nil, err
	}
	return &turn, nil
}
