package taskRepo

import (
	"campusrun/models"

	"go.mongodb.org/mongo-driver/bson"
)

// TaskRepository defines persistence operations for tasks.
//
// All status transitions go through conditional updates keyed on the current
// status; callers learn about lost races via ErrConditionFailed instead of
// overwriting each other's writes.
type TaskRepository interface {
	Create(task *models.Task) error

	// GetByID returns (nil, nil) when the task does not exist.
	GetByID(id string) (*models.Task, error)

	// List returns one page of tasks matching the filter plus the total count.
	List(filter bson.M, sort bson.D, page, limit int) ([]models.Task, int64, error)

	// AssignIfAvailable sets assignedTo and moves the task to in-progress only
	// if its current status is still available. Exactly one of several
	// concurrent calls succeeds; the rest get ErrConditionFailed.
	AssignIfAvailable(taskID, studentID string) (*models.Task, error)

	// UpdateStatusIf applies set (plus the status change to "to") only if the
	// task's current status equals from.
	UpdateStatusIf(taskID string, from, to models.TaskStatus, set bson.M) (*models.Task, error)

	// CancelIfOpen marks the task cancelled and releases its assignee, unless
	// the task already reached a terminal status.
	CancelIfOpen(taskID string) (*models.Task, error)
}
