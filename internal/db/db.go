package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection  = "users"
	videosCollection = "videos"
	defaultDBName    = "streamgate"
)

// Database is a thin adapter over the MongoDB client exposing the collections
// the service works with.
type Database struct {
	client *mongo.Client
	Users  *mongo.Collection
	Videos *mongo.Collection
}

// Connect initialises a MongoDB client for the provided URI, verifies the
// connection and ensures the indexes the service relies on.
func Connect(ctx context.Context, uri string) (*Database, error) {
	if uri == "" {
		return nil, fmt.Errorf("db: empty mongo uri")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	database := client.Database(databaseFromURI(uri))

	d := &Database{
		client: client,
		Users:  database.Collection(usersCollection),
		Videos: database.Collection(videosCollection),
	}

	if err := d.ensureIndexes(ctx); err != nil {
		_ = d.Close(context.Background())
		return nil, err
	}

	return d, nil
}

// Close disconnects the underlying client.
func (d *Database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// ensureIndexes creates the indexes required by the service:
//   - unique index on users.email, so concurrent signups with the same email
//     cannot both succeed
//   - index on videos.is_active backing the catalog listing
func (d *Database) ensureIndexes(ctx context.Context) error {
	_, err := d.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("unique_email").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure users index: %w", err)
	}

	_, err = d.Videos.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "is_active", Value: 1}},
		Options: options.Index().SetName("is_active"),
	})
	if err != nil {
		return fmt.Errorf("ensure videos index: %w", err)
	}

	return nil
}

// databaseFromURI extracts the database name from a mongodb URI path, falling
// back to a sensible default when absent.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
