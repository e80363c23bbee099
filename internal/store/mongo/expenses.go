package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"expensetracker/backend/internal/domain"
)

// ExpenseRepository persists saved expense rows.
type ExpenseRepository struct {
	coll *mongo.Collection
}

// DeleteRange removes the user's expenses with date in [from, to].
func (r *ExpenseRepository) DeleteRange(ctx context.Context, userID string, from, to time.Time) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{
		"userId": userID,
		"date":   bson.M{"$gte": from, "$lte": to},
	})
	if err != nil {
		return fmt.Errorf("delete expenses: %w", err)
	}
	return nil
}

// Insert stores the given expense rows.
func (r *ExpenseRepository) Insert(ctx context.Context, expenses []domain.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(expenses))
	for _, e := range expenses {
		docs = append(docs, e)
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert expenses: %w", err)
	}
	return nil
}

// FindRange returns the user's expenses with date in [from, to], sorted by
// date ascending.
func (r *ExpenseRepository) FindRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Expense, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{
			"userId": userID,
			"date":   bson.M{"$gte": from, "$lte": to},
		},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}

	var expenses []domain.Expense
	if err := cursor.All(ctx, &expenses); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	return expenses, nil
}
