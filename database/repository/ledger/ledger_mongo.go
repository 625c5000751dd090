package ledgerRepo

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

var (
	// ErrInsufficientFunds is returned when a debit would drive the payer's
	// balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrTaskStateChanged is returned when the settled task left
	// pending-review before the commit.
	ErrTaskStateChanged = errors.New("task state changed before settlement")
	// ErrDuplicateRef is returned when an external confirmation id was already
	// recorded for the user.
	ErrDuplicateRef = errors.New("external ref already recorded")
)

// MongoLedgerRepo implements LedgerRepository using MongoDB. It holds the
// users and tasks collections as well because settlement spans all three.
type MongoLedgerRepo struct {
	txColl   *mongo.Collection
	userColl *mongo.Collection
	taskColl *mongo.Collection
}

// NewMongoLedgerRepo creates a new instance of LedgerRepository using MongoDB.
func NewMongoLedgerRepo() LedgerRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	repo := &MongoLedgerRepo{
		txColl:   db.Collection("transactions"),
		userColl: db.Collection("users"),
		taskColl: db.Collection("tasks"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoLedgerRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "taskId", Value: 1}}},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "externalRef", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"externalRef": bson.M{"$type": "string"}},
			),
		},
	}

	_, err := r.txColl.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Append inserts one ledger entry.
func (r *MongoLedgerRepo) Append(tx *models.Transaction) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	if _, err := r.txColl.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// ListByUser returns one page of a user's ledger entries, newest first.
func (r *MongoLedgerRepo) ListByUser(userID string, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}

	query := bson.M{"userId": userID}
	if filter.Type != "" {
		query["type"] = filter.Type
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.txColl.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode ledger entries: %w", err)
	}

	total, err := r.txColl.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return txs, total, nil
}

// FindByExternalRef returns the entry recorded for an external confirmation id.
func (r *MongoLedgerRepo) FindByExternalRef(userID, externalRef string) (*models.Transaction, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var tx models.Transaction
	err := r.txColl.FindOne(ctx, bson.M{"userId": userID, "externalRef": externalRef}).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up external ref %s: %w", externalRef, err)
	}
	return &tx, nil
}
