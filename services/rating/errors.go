package rating

import "errors"

var (
	// ErrInvalidScore is returned when the score is outside 1..5.
	ErrInvalidScore = errors.New("rating score must be between 1 and 5")
	// ErrCommentTooLong is returned when the comment exceeds 500 characters.
	ErrCommentTooLong = errors.New("comment cannot exceed 500 characters")
	// ErrSelfRating is returned when a user tries to rate themselves.
	ErrSelfRating = errors.New("cannot rate yourself")
	// ErrTaskNotFound is returned when the referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound is returned when the rated user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrTaskNotCompleted is returned when rating a task that has not closed.
	ErrTaskNotCompleted = errors.New("can only rate completed tasks")
	// ErrNotAuthorized is returned when the rater was not a party to the task.
	ErrNotAuthorized = errors.New("only task participants can rate")
	// ErrInvalidToUser is returned when the target is not the other party.
	ErrInvalidToUser = errors.New("invalid user to rate for this task")
	// ErrDuplicateRating is returned on a second rating for the same task by
	// the same rater.
	ErrDuplicateRating = errors.New("task already rated")
)
