package task

import (
	"fmt"

	"campusrun/models"
	"campusrun/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	maxDescriptionLen = 1000
	minDescriptionLen = 10
	maxEstimatedTime  = 1440 // minutes
	maxReviewNotesLen = 500
)

// Create posts a new task. The balance check here is a point-in-time
// sufficiency check, not a hold; the settlement re-validates at approval.
func (s *DefaultTaskService) Create(actor *models.User, in CreateTaskInput) (*models.Task, error) {
	logger := utils.GetLogger()

	if actor.Role != models.RoleVendor {
		return nil, ErrNotAuthorized
	}
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	usr, err := s.UserRepo.GetByIDWithProjection(actor.ID, bson.M{"id": 1, "walletBalance": 1})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch creator: %w", err)
	}
	if usr == nil {
		return nil, ErrUserNotFound
	}
	if usr.WalletBalance.LessThan(in.RewardAmount) {
		return nil, ErrInsufficientBalance
	}

	t := &models.Task{
		ID:              uuid.New().String(),
		Description:     in.Description,
		PickupLocation:  in.PickupLocation,
		DropoffLocation: in.DropoffLocation,
		EstimatedTime:   in.EstimatedTime,
		RewardAmount:    in.RewardAmount,
		Status:          models.TaskAvailable,
		CreatedBy:       actor.ID,
	}
	if err := s.Repo.Create(t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.Info("Task created",
		zap.String("taskID", t.ID),
		zap.String("vendorID", actor.ID),
		zap.String("reward", t.RewardAmount.String()))

	s.populate(t)
	return t, nil
}

func validateCreateInput(in CreateTaskInput) error {
	if len(in.Description) < minDescriptionLen || len(in.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description must be between %d and %d characters",
			ErrInvalidInput, minDescriptionLen, maxDescriptionLen)
	}
	if in.PickupLocation == "" || in.DropoffLocation == "" {
		return fmt.Errorf("%w: pickup and dropoff locations are required", ErrInvalidInput)
	}
	if in.EstimatedTime < 1 || in.EstimatedTime > maxEstimatedTime {
		return fmt.Errorf("%w: estimated time must be between 1 and %d minutes",
			ErrInvalidInput, maxEstimatedTime)
	}
	if !in.RewardAmount.IsPositive() {
		return fmt.Errorf("%w: reward amount must be positive", ErrInvalidInput)
	}
	return nil
}

// populate attaches the public profiles of the task's parties for display.
func (s *DefaultTaskService) populate(t *models.Task) {
	proj := bson.M{
		"id": 1, "firstName": 1, "lastName": 1, "role": 1,
		"vendor": 1, "averageRating": 1, "totalRatings": 1,
	}
	if creator, err := s.UserRepo.GetByIDWithProjection(t.CreatedBy, proj); err == nil && creator != nil {
		p := creator.Public()
		t.Creator = &p
	}
	if t.AssignedTo != "" {
		if assignee, err := s.UserRepo.GetByIDWithProjection(t.AssignedTo, proj); err == nil && assignee != nil {
			p := assignee.Public()
			t.Assignee = &p
		}
	}
}
