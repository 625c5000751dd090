package rating

import (
	"errors"
	"fmt"
	"math"

	ratingRepo "campusrun/database/repository/rating"
	"campusrun/models"
	"campusrun/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const maxCommentLen = 500

// Submit records one review of the other party to a completed task. The
// (fromUserId, taskId) uniqueness is enforced by the store's unique index, so
// concurrent duplicate submissions cannot both land.
func (s *DefaultRatingService) Submit(actor *models.User, toUserID, taskID string, score int, comment string) (*models.Rating, error) {
	logger := utils.GetLogger()

	if score < 1 || score > 5 {
		return nil, ErrInvalidScore
	}
	if len(comment) > maxCommentLen {
		return nil, ErrCommentTooLong
	}
	if actor.ID == toUserID {
		return nil, ErrSelfRating
	}

	t, err := s.TaskRepo.GetByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	if t.Status != models.TaskCompleted {
		return nil, ErrTaskNotCompleted
	}

	isCreator := t.CreatedBy == actor.ID
	isAssignee := t.AssignedTo != "" && t.AssignedTo == actor.ID
	if !isCreator && !isAssignee {
		return nil, ErrNotAuthorized
	}

	// The target must be the other party relative to the rater.
	expected := t.CreatedBy
	if isCreator {
		expected = t.AssignedTo
	}
	if toUserID != expected {
		return nil, ErrInvalidToUser
	}

	r := &models.Rating{
		ID:         uuid.New().String(),
		FromUserID: actor.ID,
		ToUserID:   toUserID,
		TaskID:     taskID,
		Score:      score,
		Comment:    comment,
	}
	if err := s.Repo.Create(r); err != nil {
		if errors.Is(err, ratingRepo.ErrDuplicate) {
			return nil, ErrDuplicateRating
		}
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	if err := s.recompute(toUserID); err != nil {
		// The rating is stored; the aggregate self-heals on the next
		// recompute because it is a full re-scan.
		logger.Error("Rating stored but aggregate recompute failed",
			zap.String("toUserID", toUserID), zap.Error(err))
	}

	logger.Info("Rating submitted",
		zap.String("fromUserID", actor.ID),
		zap.String("toUserID", toUserID),
		zap.String("taskID", taskID),
		zap.Int("score", score))

	s.populate(r)
	return r, nil
}

// recompute re-derives the target's average and count from every rating ever
// recorded for them, rounded to one decimal place.
func (s *DefaultRatingService) recompute(toUserID string) error {
	stats, err := s.Repo.AggregateStats(toUserID)
	if err != nil {
		return err
	}
	rounded := math.Round(stats.Average*10) / 10
	return s.UserRepo.SetRatingStats(toUserID, rounded, stats.Count)
}

// GetUserRatings returns one page of a user's received ratings with the score
// histogram and aggregate stats.
func (s *DefaultRatingService) GetUserRatings(userID string, page, limit int) (*UserRatingsPage, error) {
	proj := bson.M{
		"id": 1, "firstName": 1, "lastName": 1, "role": 1,
		"vendor": 1, "averageRating": 1, "totalRatings": 1,
	}
	usr, err := s.UserRepo.GetByIDWithProjection(userID, proj)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if usr == nil {
		return nil, ErrUserNotFound
	}

	ratings, total, err := s.Repo.ListByUser(userID, page, limit)
	if err != nil {
		return nil, err
	}
	for i := range ratings {
		s.populate(&ratings[i])
	}

	dist, err := s.Repo.Distribution(userID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return &UserRatingsPage{
		User:         usr.Public(),
		Ratings:      ratings,
		Distribution: dist,
		Pagination:   models.NewPagination(page, limit, total),
	}, nil
}

// populate attaches the rater's public profile for display.
func (s *DefaultRatingService) populate(r *models.Rating) {
	proj := bson.M{
		"id": 1, "firstName": 1, "lastName": 1, "role": 1,
		"vendor": 1, "averageRating": 1, "totalRatings": 1,
	}
	if from, err := s.UserRepo.GetByIDWithProjection(r.FromUserID, proj); err == nil && from != nil {
		p := from.Public()
		r.From = &p
	}
}
