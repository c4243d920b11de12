package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	StaffCollectionName      = "staff"
	TechnicianCollectionName = "technicians"
	InventoryCollectionName  = "inventory"
	ChecklistJournalName     = "checklist_pending"
)

var errNilCollection = errors.New("mongo collection is nil")

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Stores groups the collections of one database.
type Stores struct {
	Staff       *MongoStaffCollection
	Technicians *MongoTechnicianCollection
	Inventory   *MongoInventoryCollection
	Checklists  *MongoChecklistJournal
}

// NewStores binds every collection of database name.
func NewStores(client *mongo.Client, name string) *Stores {
	database := client.Database(name)
	return &Stores{
		Staff:       &MongoStaffCollection{Collection: database.Collection(StaffCollectionName)},
		Technicians: &MongoTechnicianCollection{Collection: database.Collection(TechnicianCollectionName)},
		Inventory:   &MongoInventoryCollection{Collection: database.Collection(InventoryCollectionName)},
		Checklists:  &MongoChecklistJournal{Collection: database.Collection(ChecklistJournalName)},
	}
}

func wrapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
