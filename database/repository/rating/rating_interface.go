package ratingRepo

import "campusrun/models"

// RatingRepository defines persistence operations for ratings.
type RatingRepository interface {
	// Create inserts a rating. A second rating for the same (fromUserId,
	// taskId) pair violates the unique index and returns ErrDuplicate.
	Create(rating *models.Rating) error

	// ListByUser returns one page of ratings received by a user, newest
	// first, plus the total count.
	ListByUser(toUserID string, page, limit int) ([]models.Rating, int64, error)

	// Distribution returns the per-score histogram of ratings received by a
	// user, highest score first.
	Distribution(toUserID string) ([]models.ScoreBucket, error)

	// AggregateStats recomputes the mean score and count over every rating
	// ever received by a user. Returns zeroes when none exist.
	AggregateStats(toUserID string) (models.RatingStats, error)
}
