package database

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a user document.
// Messages are embedded rather than stored as an independent collection, so
// every inbox mutation is a single-document update.
type User struct {
	ID                         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email                      string        `bson:"email" json:"email"`
	Username                   string        `bson:"userName" json:"userName"`
	Password                   string        `bson:"password" json:"-"`
	VerificationCode           string        `bson:"verificationCode" json:"-"`
	VerificationCodeExpiration time.Time     `bson:"verificationCodeExpiration" json:"-"`
	IsVerified                 bool          `bson:"isVerified" json:"isVerified"`
	IsAcceptingMessage         bool          `bson:"isAcceptingMessage" json:"isAcceptingMessage"`
	Messages                   []Message     `bson:"messages" json:"messages,omitempty"`
	CreatedAt                  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt                  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Message represents a feedback entry embedded in its owning user document.
type Message struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string        `bson:"content" json:"content"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}
