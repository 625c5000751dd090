package taskRepo

import (
	"errors"
	"fmt"
	"time"

	"campusrun/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AssignIfAvailable claims an available task for a student. The filter keys on
// the current status, so when two students race on the same task only one
// update matches; the loser gets ErrConditionFailed.
func (r *MongoTaskRepo) AssignIfAvailable(taskID, studentID string) (*models.Task, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id":     taskID,
		"status": models.TaskAvailable,
	}
	update := bson.M{"$set": bson.M{
		"assignedTo": studentID,
		"status":     models.TaskInProgress,
		"updatedAt":  time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task models.Task
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to assign task %s: %w", taskID, err)
	}
	return &task, nil
}

// UpdateStatusIf applies set plus the status change only while the task is in
// the expected from status.
func (r *MongoTaskRepo) UpdateStatusIf(taskID string, from, to models.TaskStatus, set bson.M) (*models.Task, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if set == nil {
		set = bson.M{}
	}
	set["status"] = to
	set["updatedAt"] = time.Now()

	filter := bson.M{
		"id":     taskID,
		"status": from,
	}
	update := bson.M{"$set": set}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task models.Task
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to update status of task %s: %w", taskID, err)
	}
	return &task, nil
}

// CancelIfOpen marks the task cancelled unless it already reached a terminal
// status. The assignee is released so only in-progress, pending-review and
// completed tasks ever carry one.
func (r *MongoTaskRepo) CancelIfOpen(taskID string) (*models.Task, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id": taskID,
		"status": bson.M{"$in": []models.TaskStatus{
			models.TaskAvailable, models.TaskInProgress, models.TaskPendingReview,
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    models.TaskCancelled,
			"updatedAt": time.Now(),
		},
		"$unset": bson.M{"assignedTo": ""},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task models.Task
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to cancel task %s: %w", taskID, err)
	}
	return &task, nil
}
