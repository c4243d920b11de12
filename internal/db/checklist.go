package db

import (
	"context"

	"github.com/ukydev/fm-control/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoChecklistJournal implements ChecklistJournal. The check key is the
// document id, so recording the same key twice keeps one entry.
type MongoChecklistJournal struct {
	Collection *mongo.Collection
}

// RecordPending stores or replaces a pending check.
func (c *MongoChecklistJournal) RecordPending(ctx context.Context, check models.PendingCheck) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": check.Key}, check, options.Replace().SetUpsert(true))
	return err
}

// FindPending lists pending checks, oldest first.
func (c *MongoChecklistJournal) FindPending(ctx context.Context) ([]models.PendingCheck, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	cursor, err := c.Collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var checks []models.PendingCheck
	if err := cursor.All(ctx, &checks); err != nil {
		return nil, err
	}
	return checks, nil
}

// DeletePending removes a pending check.
func (c *MongoChecklistJournal) DeletePending(ctx context.Context, key string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
