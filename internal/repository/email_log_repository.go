package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/proteq/go-email-service/internal/domain"
	"github.com/proteq/go-email-service/internal/shared/mongodb"
)

const emailLogsCollection = "email_logs"

// SendCounts aggregates delivery outcomes for the statistics endpoint
type SendCounts struct {
	Sent   int64 `json:"sent"`
	Failed int64 `json:"failed"`
}

// EmailLogRepository persists delivery attempts
type EmailLogRepository struct {
	client *mongodb.MongoClient
}

// NewEmailLogRepository creates a new email log repository
func NewEmailLogRepository(client *mongodb.MongoClient) *EmailLogRepository {
	return &EmailLogRepository{client: client}
}

// Create records one delivery attempt
func (r *EmailLogRepository) Create(ctx context.Context, log *domain.EmailLog) error {
	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now()

	_, err := r.client.Collection(emailLogsCollection).InsertOne(ctx, log)
	return err
}

// CountsSince aggregates sent and failed deliveries created after the
// given instant. A zero time counts everything.
func (r *EmailLogRepository) CountsSince(ctx context.Context, since time.Time) (SendCounts, error) {
	filter := bson.M{}
	if !since.IsZero() {
		filter["created_at"] = bson.M{"$gte": since}
	}

	pipeline := []bson.M{
		{"$match": filter},
		{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := r.client.Collection(emailLogsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return SendCounts{}, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status domain.SendStatus `bson:"_id"`
		Count  int64             `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return SendCounts{}, err
	}

	var counts SendCounts
	for _, row := range rows {
		switch row.Status {
		case domain.SendStatusSent:
			counts.Sent = row.Count
		case domain.SendStatusFailed:
			counts.Failed = row.Count
		}
	}
	return counts, nil
}

// Recent returns the latest delivery attempts, newest first
func (r *EmailLogRepository) Recent(ctx context.Context, limit int) ([]*domain.EmailLog, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.M{"created_at": -1})

	cursor, err := r.client.Collection(emailLogsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*domain.EmailLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
