// Package mongo implements the persistence layer on MongoDB: category
// taxonomies, saved expenses and the categorization history.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	categoriesCollection = "categories"
	expensesCollection   = "expenses"
	historyCollection    = "expensesHistory"
)

// DB wraps one database handle and hands out the typed repositories.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect establishes and verifies a MongoDB connection.
func Connect(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	return &DB{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects the underlying client.
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the write paths rely on: one
// taxonomy entry per (userId, category), one history document per
// (userId, statementRecord).
func (d *DB) EnsureIndexes(ctx context.Context) error {
	_, err := d.db.Collection(categoriesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "category", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create categories index: %w", err)
	}

	_, err = d.db.Collection(historyCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "statementRecord", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create history index: %w", err)
	}

	return nil
}

// Categories returns the category taxonomy repository.
func (d *DB) Categories() *CategoryRepository {
	return &CategoryRepository{coll: d.db.Collection(categoriesCollection)}
}

// Expenses returns the saved-expense repository.
func (d *DB) Expenses() *ExpenseRepository {
	return &ExpenseRepository{coll: d.db.Collection(expensesCollection)}
}

// History returns the categorization-history repository.
func (d *DB) History() *HistoryRepository {
	return &HistoryRepository{coll: d.db.Collection(historyCollection)}
}
