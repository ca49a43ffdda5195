package importitems

import (
	"context"
	"time"

	mg "dgii_fiscal/internal/config/connections/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ImportRecordItemsCollection = "import_record_items"

const ModelTypeTaxpayers = "taxpayers"

// Item records a failed batch so an operator can see which source range
// did not make it into the store.
type Item struct {
	ImportRecordID string    `bson:"import_record_id" json:"import_record_id"`
	ModelType      string    `bson:"model_type" json:"model_type"`
	SourceOffset   int64     `bson:"source_offset" json:"source_offset"`
	BatchSize      int       `bson:"batch_size" json:"batch_size"`
	Status         string    `bson:"status" json:"status"`
	Errors         string    `bson:"errors" json:"errors"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

func InsertItem(ctx context.Context, m *mg.Mongo, item Item) (*mongo.InsertOneResult, error) {
	if m == nil || m.Client == nil || m.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	return m.Database.Collection(ImportRecordItemsCollection).InsertOne(ctx, item, options.InsertOne())
}

func ListItems(ctx context.Context, m *mg.Mongo, recordID string) ([]Item, error) {
	if m == nil || m.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}
	cur, err := m.Database.Collection(ImportRecordItemsCollection).Find(ctx,
		bson.M{"import_record_id": recordID},
		options.Find().SetSort(bson.D{{Key: "source_offset", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]Item, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
