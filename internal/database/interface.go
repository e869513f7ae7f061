package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrNotFound is returned when a document doesn't exist.
var ErrNotFound = errors.New("database: not found")

// DB defines the interface for database operations.
type DB interface {
	// User lifecycle
	GetVerifiedUserByEmailOrUsername(ctx context.Context, email, username string) (*User, error)
	SaveUnverifiedUser(ctx context.Context, user *User) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id bson.ObjectID) (*User, error)
	GetVerifiedUserByUsername(ctx context.Context, username string) (*User, error)
	MarkUserVerified(ctx context.Context, id bson.ObjectID) error
	SetAcceptingMessages(ctx context.Context, id bson.ObjectID, accepting bool) error
	ListUsers(ctx context.Context) ([]User, error)

	// Message inbox
	AppendMessage(ctx context.Context, userID bson.ObjectID, msg Message) error
	DeleteMessage(ctx context.Context, userID, msgID bson.ObjectID) error
	ListMessages(ctx context.Context, userID bson.ObjectID) ([]Message, error)

	// Maintenance
	PurgeStaleUnverifiedUsers(ctx context.Context, expiredBefore time.Time) (int64, error)

	Close(ctx context.Context) error
}
