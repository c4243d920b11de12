package db

import (
	"context"
	"time"

	"github.com/ukydev/fm-control/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStaffCollection implements StaffCollection for MongoDB
type MongoStaffCollection struct {
	Collection *mongo.Collection
}

// InsertStaff inserts a new staff account
func (c *MongoStaffCollection) InsertStaff(ctx context.Context, staff models.Staff) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now()
	staff.CreatedAt = now
	staff.UpdatedAt = now
	staff.IsActive = true

	_, err := c.Collection.InsertOne(ctx, staff)
	return err
}

// FindStaffByID finds a staff account by its ID
func (c *MongoStaffCollection) FindStaffByID(ctx context.Context, id string) (*models.Staff, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	return c.findOne(ctx, bson.M{"_id": objectID})
}

// FindStaffByUsername finds a staff account by username
func (c *MongoStaffCollection) FindStaffByUsername(ctx context.Context, username string) (*models.Staff, error) {
	return c.findOne(ctx, bson.M{"username": username})
}

// FindStaffByEmail finds a staff account by email
func (c *MongoStaffCollection) FindStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	return c.findOne(ctx, bson.M{"email": email})
}

// UpdateLastLogin updates the last login time of a staff account
func (c *MongoStaffCollection) UpdateLastLogin(ctx context.Context, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}},
	)
	return err
}

func (c *MongoStaffCollection) findOne(ctx context.Context, filter bson.M) (*models.Staff, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var staff models.Staff
	if err := c.Collection.FindOne(ctx, filter).Decode(&staff); err != nil {
		return nil, wrapNotFound(err)
	}
	return &staff, nil
}
