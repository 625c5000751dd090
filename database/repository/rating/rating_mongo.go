package ratingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusrun/config"
	"campusrun/database"
	"campusrun/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when a rating for the same (fromUserId, taskId)
// pair already exists.
var ErrDuplicate = errors.New("rating already exists for this task")

// MongoRatingRepo implements RatingRepository using MongoDB.
type MongoRatingRepo struct {
	coll *mongo.Collection
}

// NewMongoRatingRepo creates a new instance of RatingRepository using MongoDB.
func NewMongoRatingRepo() RatingRepository {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection("ratings")
	repo := &MongoRatingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries. The
// unique compound index is what makes duplicate ratings impossible under
// concurrent submission.
func (r *MongoRatingRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "fromUserId", Value: 1}, {Key: "taskId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "toUserId", Value: 1}, {Key: "score", Value: -1}}},
		{Keys: bson.D{{Key: "taskId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a rating document.
func (r *MongoRatingRepo) Create(rating *models.Rating) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now()
	}

	if _, err := r.coll.InsertOne(ctx, rating); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

// ListByUser returns one page of ratings received by a user, newest first.
func (r *MongoRatingRepo) ListByUser(toUserID string, page, limit int) ([]models.Rating, int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	filter := bson.M{"toUserId": toUserID}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var ratings []models.Rating
	if err := cursor.All(ctx, &ratings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode ratings: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ratings: %w", err)
	}
	return ratings, total, nil
}

// Distribution returns the per-score histogram of ratings received by a user.
func (r *MongoRatingRepo) Distribution(toUserID string) ([]models.ScoreBucket, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"toUserId": toUserID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$score",
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": -1}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate rating distribution: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []models.ScoreBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode rating distribution: %w", err)
	}
	return buckets, nil
}

// AggregateStats recomputes the mean score and count over every rating ever
// received by a user. A full re-scan keeps the aggregate correct under
// retried or out-of-order writes.
func (r *MongoRatingRepo) AggregateStats(toUserID string) (models.RatingStats, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"toUserId": toUserID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$score"},
			"count":   bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingStats{}, fmt.Errorf("failed to aggregate rating stats: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.RatingStats
	if err := cursor.All(ctx, &results); err != nil {
		return models.RatingStats{}, fmt.Errorf("failed to decode rating stats: %w", err)
	}
	if len(results) == 0 {
		return models.RatingStats{}, nil
	}
	return results[0], nil
}
