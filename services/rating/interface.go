package rating

import (
	ratingRepo "campusrun/database/repository/rating"
	taskRepo "campusrun/database/repository/task"
	userRepo "campusrun/database/repository/user"
	"campusrun/models"
)

// UserRatingsPage is the response to a ratings listing: the ratings received
// by one user plus their histogram and aggregate.
type UserRatingsPage struct {
	User         models.PublicProfile `json:"user"`
	Ratings      []models.Rating      `json:"ratings"`
	Distribution []models.ScoreBucket `json:"ratingDistribution"`
	Pagination   models.Pagination    `json:"pagination"`
}

// RatingService records performance reviews and keeps each user's
// denormalized rating aggregate in sync.
type RatingService interface {
	// Submit records one review of the other party to a completed task, then
	// recomputes the target's average from every rating they ever received.
	Submit(actor *models.User, toUserID, taskID string, score int, comment string) (*models.Rating, error)

	// GetUserRatings returns one page of a user's received ratings with the
	// score histogram and aggregate stats.
	GetUserRatings(userID string, page, limit int) (*UserRatingsPage, error)
}

// DefaultRatingService is the production implementation.
type DefaultRatingService struct {
	Repo     ratingRepo.RatingRepository
	TaskRepo taskRepo.TaskRepository
	UserRepo userRepo.UserRepository
}
