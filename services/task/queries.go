package task

import (
	"fmt"
	"sort"

	"campusrun/models"

	"go.mongodb.org/mongo-driver/bson"
)

// GetByID returns one task, enforcing viewer access: the creator always sees
// it; a student sees it while it is available or assigned to them.
func (s *DefaultTaskService) GetByID(actor *models.User, taskID string) (*models.Task, error) {
	t, err := s.Repo.GetByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}

	isCreator := t.CreatedBy == actor.ID
	isAssigned := t.AssignedTo != "" && t.AssignedTo == actor.ID
	canViewAsStudent := actor.Role == models.RoleStudent &&
		(t.Status == models.TaskAvailable || isAssigned)

	if !isCreator && !canViewAsStudent {
		return nil, ErrAccessDenied
	}

	s.populate(t)
	return t, nil
}

// List returns the tasks visible to the actor. Students see available tasks
// plus their own assignments; vendors see only tasks they created. Students
// browsing available work get high-rated vendors first.
func (s *DefaultTaskService) List(actor *models.User, filter models.TaskFilter) ([]models.Task, models.Pagination, error) {
	query := bson.M{}

	switch actor.Role {
	case models.RoleStudent:
		switch filter.Status {
		case "":
			query["$or"] = []bson.M{
				{"status": models.TaskAvailable},
				{"assignedTo": actor.ID},
			}
		case models.TaskAvailable:
			query["status"] = models.TaskAvailable
		default:
			query["assignedTo"] = actor.ID
			query["status"] = filter.Status
		}
	case models.RoleVendor:
		query["createdBy"] = actor.ID
		if filter.Status != "" {
			query["status"] = filter.Status
		}
	}

	if filter.MinReward != nil || filter.MaxReward != nil {
		reward := bson.M{}
		if filter.MinReward != nil {
			reward["$gte"] = *filter.MinReward
		}
		if filter.MaxReward != nil {
			reward["$lte"] = *filter.MaxReward
		}
		query["rewardAmount"] = reward
	}

	if filter.Location != "" {
		query["$and"] = []bson.M{{
			"$or": []bson.M{
				{"pickupLocation": bson.M{"$regex": filter.Location, "$options": "i"}},
				{"dropoffLocation": bson.M{"$regex": filter.Location, "$options": "i"}},
			},
		}}
	}

	sortOrder := bson.D{{Key: "createdAt", Value: -1}}
	browsingAvailable := actor.Role == models.RoleStudent &&
		(filter.Status == "" || filter.Status == models.TaskAvailable)
	if browsingAvailable {
		sortOrder = bson.D{
			{Key: "rewardAmount", Value: -1},
			{Key: "createdAt", Value: -1},
		}
	}

	tasks, total, err := s.Repo.List(query, sortOrder, filter.Page, filter.Limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	for i := range tasks {
		s.populate(&tasks[i])
	}

	// Vendor reputation lives on the user document, so the rating-priority
	// ordering for browsing students is applied after profile population.
	if browsingAvailable {
		sort.SliceStable(tasks, func(i, j int) bool {
			ri, rj := creatorRating(&tasks[i]), creatorRating(&tasks[j])
			if ri != rj {
				return ri > rj
			}
			if !tasks[i].RewardAmount.Equal(tasks[j].RewardAmount) {
				return tasks[i].RewardAmount.GreaterThan(tasks[j].RewardAmount)
			}
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return tasks, models.NewPagination(page, limit, total), nil
}

func creatorRating(t *models.Task) float64 {
	if t.Creator == nil {
		return 0
	}
	return t.Creator.AverageRating
}

// MyTasks returns the actor's own tasks: created ones for vendors, assigned
// ones for students.
func (s *DefaultTaskService) MyTasks(actor *models.User, status models.TaskStatus, page, limit int) ([]models.Task, models.Pagination, error) {
	query := bson.M{}
	switch actor.Role {
	case models.RoleVendor:
		query["createdBy"] = actor.ID
	case models.RoleStudent:
		query["assignedTo"] = actor.ID
	}
	if status != "" {
		query["status"] = status
	}

	tasks, total, err := s.Repo.List(query, nil, page, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	for i := range tasks {
		s.populate(&tasks[i])
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return tasks, models.NewPagination(page, limit, total), nil
}
