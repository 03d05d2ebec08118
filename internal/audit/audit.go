// Package audit writes lifecycle occurrences to the append-only analytics
// store. Writes are best-effort: they never block the caller and a failed
// write never fails the transaction that triggered it. The lifecycle
// engine only writes here, reporting reads the store directly.
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type ScanEntry struct {
	RecyclingEventID uint64    `bson:"recycling_event_id"`
	EventCode        string    `bson:"event_code"`
	UserUID          string    `bson:"user_uid"`
	PurchaseID       uint64    `bson:"purchase_id"`
	BranchID         uint64    `bson:"branch_id"`
	Action           string    `bson:"action"`
	ItemsCount       int       `bson:"items_count"`
	Timestamp        time.Time `bson:"timestamp"`
}

type ValidationEntry struct {
	ValidationID           string    `bson:"validation_id"`
	RecyclingEventID       uint64    `bson:"recycling_event_id"`
	UserUID                string    `bson:"user_uid"`
	AccuracyScore          float64   `bson:"accuracy_score"`
	PointsEarned           int       `bson:"points_earned"`
	AIConfidence           float64   `bson:"ai_confidence"`
	ItemsValidated         int       `bson:"items_validated"`
	CorrectClassifications int       `bson:"correct_classifications"`
	ProcessingTimeSec      float64   `bson:"processing_time"`
	Timestamp              time.Time `bson:"timestamp"`
}

type Logger interface {
	RecordScan(entry ScanEntry)
	RecordValidation(entry ValidationEntry)
}

type mongoLogger struct {
	scans       *mongo.Collection
	validations *mongo.Collection
	logger      *zap.Logger
}

// NewMongoLogger connects to the log store. uri is a full mongodb:// URI.
func NewMongoLogger(ctx context.Context, uri, dbName string, logger *zap.Logger) (Logger, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := client.Database(dbName)
	return &mongoLogger{
		scans:       db.Collection("recycling_events"),
		validations: db.Collection("ai_validations"),
		logger:      logger,
	}, nil
}

func (l *mongoLogger) RecordScan(entry ScanEntry) {
	entry.Action = "qr_scanned"
	l.insert(l.scans, entry)
}

func (l *mongoLogger) RecordValidation(entry ValidationEntry) {
	l.insert(l.validations, entry)
}

// insert runs detached from the request so a slow or down log store
// cannot stall the primary flow.
func (l *mongoLogger) insert(coll *mongo.Collection, doc interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			l.logger.Warn("audit write failed",
				zap.String("collection", coll.Name()),
				zap.Error(err),
			)
		}
	}()
}

type noopLogger struct{}

// NewNoopLogger is used when no log store is configured.
func NewNoopLogger() Logger {
	return noopLogger{}
}

func (noopLogger) RecordScan(ScanEntry)             {}
func (noopLogger) RecordValidation(ValidationEntry) {}
