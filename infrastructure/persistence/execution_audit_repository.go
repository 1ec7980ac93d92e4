package persistence

import (
	"context"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ExecutionAuditRepository archives execution attempts in MongoDB. The
// archive is best-effort; a nil database disables it and every method becomes
// a no-op.
type ExecutionAuditRepository struct {
	coll *mongo.Collection
}

func NewExecutionAuditRepository(db *mongo.Database) repository.IExecutionAudit {
	r := &ExecutionAuditRepository{}
	if db != nil {
		r.coll = db.Collection("execution_audit")
	}
	return r
}

type auditDoc struct {
	PostID     int64     `bson:"post_id"`
	Platform   string    `bson:"platform"`
	Status     string    `bson:"status"`
	Message    string    `bson:"message"`
	Timestamp  time.Time `bson:"timestamp"`
	RetryCount int       `bson:"retry_count"`
}

func (r *ExecutionAuditRepository) InsertEntries(ctx context.Context, entries []*model.ExecutionLogEntry) error {
	if r.coll == nil || len(entries) == 0 {
		return nil
	}
	docs := make([]any, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, auditDoc{
			PostID:     e.PostID,
			Platform:   string(e.Platform),
			Status:     string(e.Status),
			Message:    e.Message,
			Timestamp:  e.Timestamp,
			RetryCount: e.RetryCount,
		})
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

func (r *ExecutionAuditRepository) Recent(ctx context.Context, limit int) ([]*model.ExecutionLogEntry, error) {
	if r.coll == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.ExecutionLogEntry
	for cur.Next(ctx) {
		var doc auditDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, &model.ExecutionLogEntry{
			PostID:     doc.PostID,
			Platform:   model.Platform(doc.Platform),
			Status:     model.AttemptStatus(doc.Status),
			Message:    doc.Message,
			Timestamp:  doc.Timestamp,
			RetryCount: doc.RetryCount,
		})
	}
	return out, cur.Err()
}
