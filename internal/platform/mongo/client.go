package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"stationlog/internal/platform/config"
)

// Client wraps the mongo driver client with health checking capabilities.
type Client struct {
	*mongo.Client
	database string
}

// New connects to MongoDB from the provided configuration and verifies
// connectivity with a primary ping.
func New(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo URI is not configured")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return &Client{Client: client, database: cfg.Database}, nil
}

// Database returns the configured database handle.
func (c *Client) Database() *mongo.Database {
	return c.Client.Database(c.database)
}

// Health checks if the Mongo connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client.
func (c *Client) Close(ctx context.Context) error {
	return c.Client.Disconnect(ctx)
}
