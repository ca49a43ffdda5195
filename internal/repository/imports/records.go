package importitems

import (
	"context"
	"fmt"
	"time"

	mg "dgii_fiscal/internal/config/connections/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ImportRecordsCollection = "import_records"

const (
	StatusUploaded = "uploaded"
	StatusRunning  = "running"
	StatusDone     = "done"
	StatusPartial  = "partial"
	StatusFailed   = "failed"
)

// Record is one importer session, keyed by its run id.
type Record struct {
	ID            string     `bson:"_id" json:"id"`
	Type          string     `bson:"type" json:"type"`
	Path          string     `bson:"path" json:"path"`
	Operator      string     `bson:"operator,omitempty" json:"operator,omitempty"`
	Status        string     `bson:"status" json:"status"`
	Count         int        `bson:"count" json:"count"`
	Inserted      int        `bson:"inserted" json:"inserted"`
	Duplicates    int        `bson:"duplicates" json:"duplicates"`
	Malformed     int        `bson:"malformed" json:"malformed"`
	FailedBatches int        `bson:"failed_batches" json:"failed_batches"`
	StartOffset   int64      `bson:"start_offset" json:"start_offset"`
	EndOffset     int64      `bson:"end_offset" json:"end_offset"`
	StoreTotal    int64      `bson:"store_total" json:"store_total"`
	Errors        []string   `bson:"errors,omitempty" json:"errors,omitempty"`
	Bucket        *string    `bson:"bucket,omitempty" json:"bucket,omitempty"`
	Key           *string    `bson:"key,omitempty" json:"key,omitempty"`
	SizeBytes     *int64     `bson:"size_bytes,omitempty" json:"size_bytes,omitempty"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
	FinishedAt    *time.Time `bson:"finished_at,omitempty" json:"finished_at,omitempty"`
}

func InsertImportRecord(ctx context.Context, m *mg.Mongo, rec Record) (*mongo.InsertOneResult, error) {
	if m == nil || m.Client == nil || m.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("empty import record id")
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = StatusRunning
	}

	return m.Database.Collection(ImportRecordsCollection).InsertOne(ctx, rec, options.InsertOne())
}

// MarkRunning starts a session on a record, creating it when the run was not
// preceded by an upload.
func MarkRunning(ctx context.Context, m *mg.Mongo, id, importType, path string) error {
	if m == nil || m.Database == nil {
		return mongo.ErrClientDisconnected
	}
	now := nowUTC()
	_, err := m.Database.Collection(ImportRecordsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{
				"type":       importType,
				"path":       path,
				"status":     StatusRunning,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func FindImportRecordByID(ctx context.Context, m *mg.Mongo, id string) (Record, error) {
	var out Record
	if m == nil || m.Database == nil {
		return out, mongo.ErrClientDisconnected
	}
	err := m.Database.Collection(ImportRecordsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if err != nil {
		return out, fmt.Errorf("import record %s: %w", id, err)
	}
	return out, nil
}

func ListImportRecords(ctx context.Context, m *mg.Mongo, filter bson.M, limit, skip int64) ([]Record, int64, error) {
	if m == nil || m.Database == nil {
		return nil, 0, mongo.ErrClientDisconnected
	}
	coll := m.Database.Collection(ImportRecordsCollection)
	if filter == nil {
		filter = bson.M{}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	recs := make([]Record, 0)
	for cur.Next(ctx) {
		var r Record
		if err := cur.Decode(&r); err != nil {
			continue
		}
		recs = append(recs, r)
	}
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		total = int64(len(recs))
	}
	return recs, total, nil
}

func UpdateImportRecord(ctx context.Context, m *mg.Mongo, id string, set bson.M) error {
	if m == nil || m.Database == nil {
		return mongo.ErrClientDisconnected
	}
	if id == "" {
		return fmt.Errorf("empty importRecordID")
	}
	set["updated_at"] = time.Now().UTC()

	res, err := m.Database.Collection(ImportRecordsCollection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no import_record found with id %s", id)
	}
	return nil
}

func nowUTC() time.Time { return time.Now().UTC() }
