package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	taskRepo "campusrun/database/repository/task"
	"campusrun/models"
	"campusrun/services/wallet"
	"campusrun/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Assign claims an available task for a student. The claim is a single
// compare-and-set write keyed on the current status, so when two students
// race on the same task exactly one wins.
func (s *DefaultTaskService) Assign(actor *models.User, taskID string) (*models.Task, error) {
	logger := utils.GetLogger()

	if actor.Role != models.RoleStudent {
		return nil, ErrNotAuthorized
	}

	t, err := s.Repo.GetByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	if t.CreatedBy == actor.ID {
		return nil, ErrCannotAssignOwnTask
	}
	if t.Status != models.TaskAvailable {
		return nil, ErrTaskNotAvailable
	}

	assigned, err := s.Repo.AssignIfAvailable(taskID, actor.ID)
	if err != nil {
		if errors.Is(err, taskRepo.ErrConditionFailed) {
			// Lost the race: someone else claimed the task first.
			return nil, ErrTaskNotAvailable
		}
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	logger.Info("Task assigned",
		zap.String("taskID", taskID), zap.String("studentID", actor.ID))

	s.populate(assigned)
	return assigned, nil
}

// SubmitProof attaches completion-proof descriptors and moves the task from
// in-progress to pending review.
func (s *DefaultTaskService) SubmitProof(actor *models.User, taskID string, files []models.ProofFile) (*models.Task, error) {
	logger := utils.GetLogger()

	t, err := s.Repo.GetByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	if t.AssignedTo == "" || t.AssignedTo != actor.ID {
		return nil, ErrTaskNotAssigned
	}
	if t.Status != models.TaskInProgress {
		return nil, ErrTaskNotInProgress
	}
	if len(files) == 0 {
		return nil, ErrNoProofFiles
	}
	if err := validateProofFiles(files); err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range files {
		if files[i].UploadedAt.IsZero() {
			files[i].UploadedAt = now
		}
	}

	updated, err := s.Repo.UpdateStatusIf(taskID, models.TaskInProgress, models.TaskPendingReview,
		bson.M{"proof": files})
	if err != nil {
		if errors.Is(err, taskRepo.ErrConditionFailed) {
			return nil, ErrTaskNotInProgress
		}
		return nil, fmt.Errorf("failed to submit proof: %w", err)
	}

	logger.Info("Proof submitted",
		zap.String("taskID", taskID),
		zap.String("studentID", actor.ID),
		zap.Int("files", len(files)))

	s.populate(updated)
	return updated, nil
}

const maxProofFileSize = 10 << 20 // 10MB
const maxProofFiles = 5

func validateProofFiles(files []models.ProofFile) error {
	if len(files) > maxProofFiles {
		return fmt.Errorf("%w: at most %d proof files allowed", ErrInvalidInput, maxProofFiles)
	}
	for _, f := range files {
		if f.Filename == "" || f.OriginalName == "" {
			return fmt.Errorf("%w: proof file names are required", ErrInvalidInput)
		}
		if !strings.HasPrefix(f.MimeType, "image/") && f.MimeType != "application/pdf" {
			return fmt.Errorf("%w: only images and PDF files are allowed", ErrInvalidInput)
		}
		if f.Size <= 0 || f.Size > maxProofFileSize {
			return fmt.Errorf("%w: proof files must be between 1 byte and 10MB", ErrInvalidInput)
		}
	}
	return nil
}

// Review approves or rejects submitted proof. Approval runs the settlement:
// the reward moves from creator to assignee and the task completes as one
// atomic unit. Rejection clears the proof for resubmission.
func (s *DefaultTaskService) Review(actor *models.User, taskID string, approved bool, notes string) (*ReviewResult, error) {
	logger := utils.GetLogger()

	if len(notes) > maxReviewNotesLen {
		return nil, fmt.Errorf("%w: review notes cannot exceed %d characters",
			ErrInvalidInput, maxReviewNotesLen)
	}

	t, err := s.Repo.GetByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	if t.CreatedBy != actor.ID {
		return nil, ErrNotAuthorized
	}
	if t.Status != models.TaskPendingReview {
		return nil, ErrTaskNotPendingReview
	}

	if !approved {
		updated, err := s.Repo.UpdateStatusIf(taskID, models.TaskPendingReview, models.TaskInProgress,
			bson.M{"proof": []models.ProofFile{}, "reviewNotes": notes})
		if err != nil {
			if errors.Is(err, taskRepo.ErrConditionFailed) {
				return nil, ErrTaskNotPendingReview
			}
			return nil, fmt.Errorf("failed to reject proof: %w", err)
		}

		logger.Info("Proof rejected",
			zap.String("taskID", taskID), zap.String("vendorID", actor.ID))

		s.populate(updated)
		return &ReviewResult{Task: updated, PaymentProcessed: false}, nil
	}

	t.ReviewNotes = notes
	if err := s.Wallet.SettleTask(context.Background(), t); err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientBalance):
			// Task stays pending review; the vendor retries after depositing.
			return nil, ErrInsufficientBalance
		case errors.Is(err, wallet.ErrTaskNotPendingReview):
			return nil, ErrTaskNotPendingReview
		default:
			return nil, fmt.Errorf("failed to settle task: %w", err)
		}
	}

	completed, err := s.Repo.GetByID(taskID)
	if err != nil || completed == nil {
		// Settlement committed; fall back to the in-memory snapshot.
		t.Status = models.TaskCompleted
		completed = t
	}

	logger.Info("Task approved and settled",
		zap.String("taskID", taskID), zap.String("vendorID", actor.ID))

	s.populate(completed)
	return &ReviewResult{Task: completed, PaymentProcessed: true}, nil
}

// Cancel withdraws a task that has not reached a terminal state.
func (s *DefaultTaskService) Cancel(actor *models.User, taskID string) (*models.Task, error) {
	logger := utils.GetLogger()

	t, err := s.Repo.GetByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	if t.CreatedBy != actor.ID {
		return nil, ErrNotAuthorized
	}
	if t.Status.Terminal() {
		return nil, ErrTaskNotCancellable
	}

	cancelled, err := s.Repo.CancelIfOpen(taskID)
	if err != nil {
		if errors.Is(err, taskRepo.ErrConditionFailed) {
			return nil, ErrTaskNotCancellable
		}
		return nil, fmt.Errorf("failed to cancel task: %w", err)
	}

	logger.Info("Task cancelled",
		zap.String("taskID", taskID), zap.String("vendorID", actor.ID))

	s.populate(cancelled)
	return cancelled, nil
}
