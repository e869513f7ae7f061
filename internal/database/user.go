package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// GetVerifiedUserByEmailOrUsername returns a verified user matching the email
// or the username. Used to reject signups that collide with a claimed identity.
func (c *Client) GetVerifiedUserByEmailOrUsername(ctx context.Context, email, username string) (*User, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	filter := bson.D{
		{Key: "$and", Value: bson.A{
			bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "email", Value: email}},
				bson.D{{Key: "userName", Value: username}},
			}}},
			bson.D{{Key: "isVerified", Value: true}},
		}},
	}

	var user User
	if err := c.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		log.Error("failed to get verified user by email or username", "error", err)
		return nil, err
	}
	return &user, nil
}

// SaveUnverifiedUser writes the signup record. An unverified user matching the
// same email or username is overwritten with the fresh credentials and code,
// otherwise a new document is inserted.
func (c *Client) SaveUnverifiedUser(ctx context.Context, user *User) (*User, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	now := time.Now()
	filter := bson.D{
		{Key: "$and", Value: bson.A{
			bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "email", Value: user.Email}},
				bson.D{{Key: "userName", Value: user.Username}},
			}}},
			bson.D{{Key: "isVerified", Value: false}},
		}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "email", Value: user.Email},
		{Key: "userName", Value: user.Username},
		{Key: "password", Value: user.Password},
		{Key: "verificationCode", Value: user.VerificationCode},
		{Key: "verificationCodeExpiration", Value: user.VerificationCodeExpiration},
		{Key: "updatedAt", Value: now},
	}}}

	var updated User
	err := c.users.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		log.Error("failed to overwrite unverified user", "error", err)
		return nil, err
	}

	user.ID = bson.NewObjectID()
	user.IsVerified = false
	user.IsAcceptingMessage = true
	user.Messages = []Message{}
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := c.users.InsertOne(ctx, user); err != nil {
		log.Error("failed to insert user", "error", err)
		return nil, err
	}
	return user, nil
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return c.findOne(ctx, bson.D{{Key: "userName", Value: username}})
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return c.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (c *Client) GetUserByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	return c.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

// GetVerifiedUserByUsername returns the user only if it is verified. Unverified
// users are not addressable on their public profile.
func (c *Client) GetVerifiedUserByUsername(ctx context.Context, username string) (*User, error) {
	return c.findOne(ctx, bson.D{
		{Key: "userName", Value: username},
		{Key: "isVerified", Value: true},
	})
}

func (c *Client) findOne(ctx context.Context, filter bson.D) (*User, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	var user User
	if err := c.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		log.Error("failed to get user", "error", err)
		return nil, err
	}
	return &user, nil
}

// MarkUserVerified flips the verification flag after a successful OTP check.
func (c *Client) MarkUserVerified(ctx context.Context, id bson.ObjectID) error {
	return c.updateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "isVerified", Value: true},
		{Key: "updatedAt", Value: time.Now()},
	}}})
}

// SetAcceptingMessages toggles whether the user accepts inbound messages.
func (c *Client) SetAcceptingMessages(ctx context.Context, id bson.ObjectID, accepting bool) error {
	return c.updateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "isAcceptingMessage", Value: accepting},
		{Key: "updatedAt", Value: time.Now()},
	}}})
}

// AppendMessage pushes a message onto the user's embedded inbox.
func (c *Client) AppendMessage(ctx context.Context, userID bson.ObjectID, msg Message) error {
	return c.updateByID(ctx, userID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "messages", Value: msg}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now()}}},
	})
}

// DeleteMessage pulls the message with the given id from the user's inbox.
// Scoping the update to the owning user id is the authorization check.
func (c *Client) DeleteMessage(ctx context.Context, userID, msgID bson.ObjectID) error {
	return c.updateByID(ctx, userID, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "messages", Value: bson.D{{Key: "_id", Value: msgID}}}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now()}}},
	})
}

func (c *Client) updateByID(ctx context.Context, id bson.ObjectID, update bson.D) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	res, err := c.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		log.Error("failed to update user", "error", err, "id", id.Hex())
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMessages returns the user's messages ordered newest first. The embedded
// array is unwound, sorted and regrouped server-side.
func (c *Client) ListMessages(ctx context.Context, userID bson.ObjectID) ([]Message, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: userID}}}},
		bson.D{{Key: "$unwind", Value: "$messages"}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "messages.createdAt", Value: -1}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$_id"},
			{Key: "messages", Value: bson.D{{Key: "$push", Value: "$messages"}}},
		}}},
	}

	cursor, err := c.users.Aggregate(ctx, pipeline)
	if err != nil {
		log.Error("failed to aggregate messages", "error", err, "id", userID.Hex())
		return nil, err
	}
	defer cursor.Close(ctx) //nolint:errcheck

	var results []struct {
		ID       bson.ObjectID `bson:"_id"`
		Messages []Message     `bson:"messages"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	// A user without messages produces no group at all.
	if len(results) == 0 {
		return []Message{}, nil
	}
	return results[0].Messages, nil
}

// ListUsers returns all users. Used by the public directory endpoint, callers
// must not leak the sensitive fields.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	cursor, err := c.users.Find(ctx, bson.D{})
	if err != nil {
		log.Error("failed to list users", "error", err)
		return nil, err
	}
	defer cursor.Close(ctx) //nolint:errcheck

	var users []User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// PurgeStaleUnverifiedUsers removes unverified users whose verification code
// expired before the given instant.
func (c *Client) PurgeStaleUnverifiedUsers(ctx context.Context, expiredBefore time.Time) (int64, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	res, err := c.users.DeleteMany(ctx, bson.D{
		{Key: "isVerified", Value: false},
		{Key: "verificationCodeExpiration", Value: bson.D{{Key: "$lt", Value: expiredBefore}}},
	})
	if err != nil {
		log.Error("failed to purge stale unverified users", "error", err)
		return 0, err
	}
	return res.DeletedCount, nil
}
