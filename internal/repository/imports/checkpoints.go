package importitems

import (
	"context"
	"errors"
	"fmt"
	"time"

	mg "dgii_fiscal/internal/config/connections/mongo"
	"dgii_fiscal/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CheckpointsCollection = "import_checkpoints"

type checkpointDoc struct {
	Key            string    `bson:"_id"`
	SourceOffset   int64     `bson:"source_offset"`
	LastIdentifier string    `bson:"last_identifier"`
	RunID          string    `bson:"run_id"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func LoadCheckpoint(ctx context.Context, m *mg.Mongo, key string) (ports.Checkpoint, bool, error) {
	if m == nil || m.Database == nil {
		return ports.Checkpoint{}, false, mongo.ErrClientDisconnected
	}
	var doc checkpointDoc
	err := m.Database.Collection(CheckpointsCollection).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ports.Checkpoint{}, false, nil
	}
	if err != nil {
		return ports.Checkpoint{}, false, fmt.Errorf("load checkpoint %s: %w", key, err)
	}
	return ports.Checkpoint{
		Key:            doc.Key,
		SourceOffset:   doc.SourceOffset,
		LastIdentifier: doc.LastIdentifier,
		RunID:          doc.RunID,
		UpdatedAt:      doc.UpdatedAt,
	}, true, nil
}

func SaveCheckpoint(ctx context.Context, m *mg.Mongo, cp ports.Checkpoint) error {
	if m == nil || m.Database == nil {
		return mongo.ErrClientDisconnected
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}
	update := bson.M{"$set": bson.M{
		"source_offset":   cp.SourceOffset,
		"last_identifier": cp.LastIdentifier,
		"run_id":          cp.RunID,
		"updated_at":      cp.UpdatedAt,
	}}
	_, err := m.Database.Collection(CheckpointsCollection).UpdateOne(ctx,
		bson.M{"_id": cp.Key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.Key, err)
	}
	return nil
}
