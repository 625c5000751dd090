package wallet

import (
	"context"
	"errors"
	"fmt"

	ledgerRepo "campusrun/database/repository/ledger"
	"campusrun/models"
	"campusrun/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettleTask executes the approval settlement for a pending-review task. The
// creator's balance is re-validated at commit time, not reuse of the
// creation-time check: funds may have moved since the task was posted.
func (s *DefaultWalletService) SettleTask(ctx context.Context, task *models.Task) error {
	logger := utils.GetLogger()

	if task.Status != models.TaskPendingReview {
		return ErrTaskNotPendingReview
	}
	if task.AssignedTo == "" {
		return fmt.Errorf("task %s has no assignee", task.ID)
	}

	vendorTx := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      task.CreatedBy,
		Type:        models.TxTaskPayment,
		Amount:      task.RewardAmount,
		Description: fmt.Sprintf("Payment for task: %s", truncate(task.Description, 50)),
		TaskID:      task.ID,
		Status:      models.TxCompleted,
	}
	studentTx := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      task.AssignedTo,
		Type:        models.TxTaskPayment,
		Amount:      task.RewardAmount,
		Description: fmt.Sprintf("Payment received for task: %s", truncate(task.Description, 50)),
		TaskID:      task.ID,
		Status:      models.TxCompleted,
	}

	if err := s.Ledger.SettleTask(ctx, task, vendorTx, studentTx); err != nil {
		switch {
		case errors.Is(err, ledgerRepo.ErrInsufficientFunds):
			logger.Warn("Settlement aborted: insufficient vendor balance",
				zap.String("taskID", task.ID), zap.String("vendorID", task.CreatedBy))
			return ErrInsufficientBalance
		case errors.Is(err, ledgerRepo.ErrTaskStateChanged):
			return ErrTaskNotPendingReview
		default:
			return fmt.Errorf("settlement failed for task %s: %w", task.ID, err)
		}
	}

	logger.Info("Task settled",
		zap.String("taskID", task.ID),
		zap.String("vendorID", task.CreatedBy),
		zap.String("studentID", task.AssignedTo),
		zap.String("amount", task.RewardAmount.String()))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
