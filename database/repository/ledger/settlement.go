package ledgerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusrun/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordExternal commits a deposit or withdrawal inside a Mongo session
// transaction. The ledger insert runs first so the unique (userId,
// externalRef) index rejects a replayed confirmation before the balance
// moves; the balance update carries the sufficiency filter for debits.
func (r *MongoLedgerRepo) RecordExternal(ctx context.Context, tx *models.Transaction, delta decimal.Decimal, requireSufficient bool) (*models.User, error) {
	client := r.txColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	var updated models.User
	txnFn := func(sc mongo.SessionContext) error {
		if _, err := r.txColl.InsertOne(sc, tx); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicateRef
			}
			return fmt.Errorf("ledger entry failed: %w", err)
		}

		filter := bson.M{"id": tx.UserID}
		if requireSufficient && delta.IsNegative() {
			filter["walletBalance"] = bson.M{"$gte": delta.Neg()}
		}
		update := bson.M{
			"$inc": bson.M{"walletBalance": delta},
			"$set": bson.M{"updatedAt": time.Now()},
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if err := r.userColl.FindOneAndUpdate(sc, filter, update, opts).Decode(&updated); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrInsufficientFunds
			}
			return fmt.Errorf("balance update failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return nil, err
	}

	return &updated, nil
}

// SettleTask commits the approval settlement inside a Mongo session
// transaction: five writes across three collections, all or nothing.
//
// The vendor debit carries a balance-sufficiency filter and the task update
// carries a status filter, so a concurrent withdrawal or a duplicate review
// aborts the transaction instead of half-applying it.
func (r *MongoLedgerRepo) SettleTask(ctx context.Context, task *models.Task, vendorTx, studentTx *models.Transaction) error {
	client := r.txColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	now := time.Now()
	vendorTx.CreatedAt = now
	studentTx.CreatedAt = now

	txnFn := func(sc mongo.SessionContext) error {
		// Debit the vendor; matches only while the balance covers the reward.
		debitFilter := bson.M{
			"id":            task.CreatedBy,
			"walletBalance": bson.M{"$gte": task.RewardAmount},
		}
		debitUpdate := bson.M{
			"$inc": bson.M{"walletBalance": task.RewardAmount.Neg()},
			"$set": bson.M{"updatedAt": now},
		}
		res, err := r.userColl.UpdateOne(sc, debitFilter, debitUpdate)
		if err != nil {
			return fmt.Errorf("vendor debit failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrInsufficientFunds
		}

		// Credit the student.
		creditUpdate := bson.M{
			"$inc": bson.M{"walletBalance": task.RewardAmount},
			"$set": bson.M{"updatedAt": now},
		}
		res, err = r.userColl.UpdateOne(sc, bson.M{"id": task.AssignedTo}, creditUpdate)
		if err != nil {
			return fmt.Errorf("student credit failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("assignee %s not found", task.AssignedTo)
		}

		// Append both sides of the payment to the ledger.
		if _, err := r.txColl.InsertOne(sc, vendorTx); err != nil {
			return fmt.Errorf("vendor ledger entry failed: %w", err)
		}
		if _, err := r.txColl.InsertOne(sc, studentTx); err != nil {
			return fmt.Errorf("student ledger entry failed: %w", err)
		}

		// Close the task; matches only while it is still pending review.
		taskFilter := bson.M{
			"id":     task.ID,
			"status": models.TaskPendingReview,
		}
		taskUpdate := bson.M{"$set": bson.M{
			"status":      models.TaskCompleted,
			"reviewNotes": task.ReviewNotes,
			"updatedAt":   now,
		}}
		res, err = r.taskColl.UpdateOne(sc, taskFilter, taskUpdate)
		if err != nil {
			return fmt.Errorf("task completion failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrTaskStateChanged
		}

		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}

	return nil
}
