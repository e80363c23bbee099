package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"expensetracker/backend/internal/domain"
)

// HistoryRepository persists how statement records were categorized in the
// past so later statements can reuse the mapping.
type HistoryRepository struct {
	coll *mongo.Collection
}

// FindByRecord returns the history entries for one statement record.
func (r *HistoryRepository) FindByRecord(ctx context.Context, userID, statementRecord string) ([]domain.ExpenseHistory, error) {
	cursor, err := r.coll.Find(ctx, bson.M{
		"userId":          userID,
		"statementRecord": statementRecord,
	})
	if err != nil {
		return nil, fmt.Errorf("find history: %w", err)
	}

	var entries []domain.ExpenseHistory
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return entries, nil
}

// List returns all history entries for the user, sorted by statement record.
func (r *HistoryRepository) List(ctx context.Context, userID string) ([]domain.ExpenseHistory, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "statementRecord", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	var entries []domain.ExpenseHistory
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return entries, nil
}

// Upsert records one categorization. The category set grows via $addToSet so
// recategorizing never loses earlier labels; the statement type is fixed at
// first insert.
func (r *HistoryRepository) Upsert(ctx context.Context, entry domain.ExpenseHistory) error {
	filter := bson.M{
		"userId":          entry.UserID,
		"statementRecord": entry.StatementRecord,
	}
	update := bson.M{
		"$addToSet":    bson.M{"category": bson.M{"$each": entry.Category}},
		"$setOnInsert": bson.M{"statementType": entry.StatementType},
	}

	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert history: %w", err)
	}
	return nil
}
