package mongodb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoClient wraps the MongoDB client and the service database handle
type MongoClient struct {
	client   *mongo.Client
	database *mongo.Database
}

// validateMongoURI rejects URIs that are not MongoDB connection strings
func validateMongoURI(uri string) error {
	if uri == "" {
		return fmt.Errorf("mongodb URI is empty")
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid mongodb URI: %w", err)
	}

	if parsed.Scheme != "mongodb" && parsed.Scheme != "mongodb+srv" {
		return fmt.Errorf("unsupported URI scheme %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("mongodb URI is missing a host")
	}

	return nil
}

// validateDatabaseName rejects names MongoDB itself would refuse
func validateDatabaseName(name string) error {
	if name == "" {
		return fmt.Errorf("database name is empty")
	}
	if strings.ContainsAny(name, `/\. "$*<>:|?`) {
		return fmt.Errorf("database name %q contains invalid characters", name)
	}
	return nil
}

// NewMongoClient connects to MongoDB and verifies the connection
func NewMongoClient(uri, database string) (*MongoClient, error) {
	if err := validateMongoURI(uri); err != nil {
		return nil, err
	}
	if err := validateDatabaseName(database); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}

	return &MongoClient{
		client:   client,
		database: client.Database(database),
	}, nil
}

// Collection returns a collection handle
func (c *MongoClient) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Ping verifies the connection is still alive
func (c *MongoClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Disconnect closes the MongoDB connection
func (c *MongoClient) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
