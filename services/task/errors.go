package task

import "errors"

var (
	// ErrTaskNotFound is returned when the referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound is returned when the acting user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotAuthorized is returned when the actor lacks the role or ownership
	// the transition requires.
	ErrNotAuthorized = errors.New("not authorized for this task")
	// ErrInsufficientBalance is returned when the creator's wallet does not
	// cover the reward.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	// ErrTaskNotAvailable is returned when an assignment races or targets a
	// task that already left the available state.
	ErrTaskNotAvailable = errors.New("task is not available for assignment")
	// ErrCannotAssignOwnTask is returned when a creator tries to claim their
	// own task.
	ErrCannotAssignOwnTask = errors.New("cannot assign your own task")
	// ErrTaskNotAssigned is returned when a student submits proof for a task
	// assigned to someone else.
	ErrTaskNotAssigned = errors.New("task not assigned to you")
	// ErrTaskNotInProgress is returned when proof is submitted outside the
	// in-progress state.
	ErrTaskNotInProgress = errors.New("task is not in progress")
	// ErrNoProofFiles is returned when a proof submission carries no files.
	ErrNoProofFiles = errors.New("at least one proof file is required")
	// ErrTaskNotPendingReview is returned when a review targets a task outside
	// the pending-review state, including reviews that lost a race.
	ErrTaskNotPendingReview = errors.New("task is not pending review")
	// ErrTaskNotCancellable is returned when cancellation targets a task that
	// already reached a terminal state.
	ErrTaskNotCancellable = errors.New("task can no longer be cancelled")
	// ErrInvalidInput is returned for malformed task fields.
	ErrInvalidInput = errors.New("invalid task input")
	// ErrAccessDenied is returned when a viewer may not see the task.
	ErrAccessDenied = errors.New("access denied")
)
