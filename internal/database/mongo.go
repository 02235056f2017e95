// Package database holds the MongoDB-backed stores: user credentials and the
// product catalog.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

const (
	usersCollection      = "users"
	categoriesCollection = "categories"
	productsCollection   = "products"
)

// Connect establishes a connection to MongoDB and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique indexes the stores rely on to report
// duplicates. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(coll, field string) error {
		_, err := db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("create unique index %s.%s: %w", coll, field, err)
		}
		return nil
	}

	if err := unique(usersCollection, "email"); err != nil {
		return err
	}
	if err := unique(usersCollection, "username"); err != nil {
		return err
	}
	return unique(categoriesCollection, "name")
}
