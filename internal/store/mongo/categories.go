package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"expensetracker/backend/internal/domain"
)

// CategoryRepository persists the per-user category taxonomy.
type CategoryRepository struct {
	coll *mongo.Collection
}

// FindCategories returns the user's taxonomy sorted by category name.
func (r *CategoryRepository) FindCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "category", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}

	var categories []domain.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

// ReplaceCategories swaps the user's whole taxonomy for the given one.
func (r *CategoryRepository) ReplaceCategories(ctx context.Context, userID string, categories []domain.Category) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	if len(categories) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(categories))
	for _, c := range categories {
		c.UserID = userID
		docs = append(docs, c)
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert categories: %w", err)
	}
	return nil
}
