package database

import (
	"context"
	"fmt"

	"github.com/jon4hz/whispr/internal/config"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

var _ DB = (*Client)(nil) // Ensure Client implements DB

// Client wraps the mongo client and holds the collection handles.
type Client struct {
	client *mongo.Client
	users  *mongo.Collection
	cfg    *config.DatabaseConfig
}

// Connect creates a new database connection and ensures the indexes exist.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c := &Client{
		client: client,
		users:  client.Database(cfg.Name).Collection("users"),
		cfg:    cfg,
	}

	if err := c.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return c, nil
}

// ensureIndexes creates the unique indexes on email and username.
func (c *Client) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	_, err := c.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userName", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

// Close disconnects the underlying mongo client.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// opCtx derives a context with the configured per-operation timeout.
func (c *Client) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.Timeout)
}
