package db

import (
	"context"
	"time"

	"github.com/ukydev/fm-control/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTechnicianCollection implements TechnicianCollection. Documents are
// keyed by technician name.
type MongoTechnicianCollection struct {
	Collection *mongo.Collection
}

// FindTechnicians returns every stored technician state.
func (c *MongoTechnicianCollection) FindTechnicians(ctx context.Context) ([]models.Technician, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var techs []models.Technician
	if err := cursor.All(ctx, &techs); err != nil {
		return nil, err
	}
	return techs, nil
}

// SaveTechnician upserts attendance, zone and bonus points.
func (c *MongoTechnicianCollection) SaveTechnician(ctx context.Context, tech models.Technician) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"name": tech.Name},
		bson.M{"$set": bson.M{
			"is_present":   tech.IsPresent,
			"zone":         tech.Zone,
			"bonus_points": tech.BonusPoints,
			"updated_at":   time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// MongoInventoryCollection implements InventoryCollection. Documents are
// keyed by gas name.
type MongoInventoryCollection struct {
	Collection *mongo.Collection
}

// FindItems returns the stored stock lines.
func (c *MongoInventoryCollection) FindItems(ctx context.Context) ([]models.InventoryItem, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.InventoryItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveItem upserts a stock line.
func (c *MongoInventoryCollection) SaveItem(ctx context.Context, item models.InventoryItem) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"name": item.Name},
		bson.M{"$set": bson.M{"kg": item.Kg, "type": item.Type, "updated_at": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}
