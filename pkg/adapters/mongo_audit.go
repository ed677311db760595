package adapters

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gokaycavdar/riskguard/pkg/model"
)

// auditDocument is the persisted shape of one scoring result, flattened
// from model.Result for straightforward BSON marshaling and querying by
// userID/timestamp.
type auditDocument struct {
	RequestID        string `bson:"requestId"`
	UserID           string `bson:"userId"`
	TimestampMs      int64  `bson:"timestampMs"`
	ProcessingTimeMs int64  `bson:"processingTimeMs"`
	ModelsVersion    string `bson:"modelsVersion"`
	CacheHit         bool   `bson:"cacheHit"`

	IP          int `bson:"ip"`
	DateTime    int `bson:"dateTime"`
	UserAgent   int `bson:"userAgent"`
	Geolocation int `bson:"geolocation"`
	Overall     int `bson:"overall"`
}

// MongoAuditSink persists scoring results to a MongoDB collection, one
// document per request, for offline review and model-retraining feedback
// loops (spec.md §9 supplemented feature).
type MongoAuditSink struct {
	collection *mongo.Collection
}

// NewMongoAuditSink wraps an already-configured collection handle.
func NewMongoAuditSink(collection *mongo.Collection) *MongoAuditSink {
	return &MongoAuditSink{collection: collection}
}

// Record inserts one audit document for result.
func (m *MongoAuditSink) Record(ctx context.Context, result model.Result) error {
	doc := auditDocument{
		RequestID:        result.Meta.RequestID,
		UserID:           result.Meta.UserID,
		TimestampMs:      result.Meta.TimestampMs,
		ProcessingTimeMs: result.Meta.ProcessingTimeMs,
		ModelsVersion:    result.Meta.ModelsVersion,
		CacheHit:         result.Meta.CacheHit,
		IP:               result.Scores.IP,
		DateTime:         result.Scores.DateTime,
		UserAgent:        result.Scores.UserAgent,
		Geolocation:      result.Scores.Geolocation,
		Overall:          result.Scores.Overall,
	}
	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(err, "insert audit document")
	}
	return nil
}

// EnsureIndexes creates the indexes the feedback-review and retention
// queries rely on: a userID+timestamp compound index for per-user
// history scans, and a TTL index on timestampMs for automatic expiry.
func EnsureIndexes(ctx context.Context, collection *mongo.Collection, retentionDays int32) error {
	expireAfterSeconds := retentionDays * 24 * 3600
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestampMs", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "timestampMs", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(expireAfterSeconds),
		},
	})
	if err != nil {
		return errors.Wrap(err, "create audit indexes")
	}
	return nil
}
