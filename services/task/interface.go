package task

import (
	taskRepo "campusrun/database/repository/task"
	userRepo "campusrun/database/repository/user"
	"campusrun/models"
	"campusrun/services/wallet"

	"github.com/shopspring/decimal"
)

// CreateTaskInput carries the fields a vendor supplies when posting a task.
type CreateTaskInput struct {
	Description     string
	PickupLocation  string
	DropoffLocation string
	EstimatedTime   int
	RewardAmount    decimal.Decimal
}

// ReviewResult reports the outcome of a proof review.
type ReviewResult struct {
	Task             *models.Task `json:"task"`
	PaymentProcessed bool         `json:"paymentProcessed"`
}

// TaskService drives the task lifecycle. Every transition validates role,
// ownership, and current status before any write, and commits through
// conditional updates so racing requests cannot overwrite each other.
type TaskService interface {
	// Create posts a new task. The creator's balance must cover the reward at
	// creation time; funds are not held.
	Create(actor *models.User, in CreateTaskInput) (*models.Task, error)

	// Assign claims an available task for a student.
	Assign(actor *models.User, taskID string) (*models.Task, error)

	// SubmitProof attaches completion-proof descriptors and moves the task to
	// pending review.
	SubmitProof(actor *models.User, taskID string, files []models.ProofFile) (*models.Task, error)

	// Review approves or rejects submitted proof. Approval settles payment;
	// rejection clears the proof and returns the task to in-progress.
	Review(actor *models.User, taskID string, approved bool, notes string) (*ReviewResult, error)

	// Cancel withdraws a task that has not reached a terminal state.
	Cancel(actor *models.User, taskID string) (*models.Task, error)

	// GetByID returns one task, enforcing the viewer access rules.
	GetByID(actor *models.User, taskID string) (*models.Task, error)

	// List returns the tasks visible to the actor, filtered and paginated.
	List(actor *models.User, filter models.TaskFilter) ([]models.Task, models.Pagination, error)

	// MyTasks returns the actor's own tasks: created ones for vendors,
	// assigned ones for students.
	MyTasks(actor *models.User, status models.TaskStatus, page, limit int) ([]models.Task, models.Pagination, error)
}

// DefaultTaskService is the production implementation.
type DefaultTaskService struct {
	Repo     taskRepo.TaskRepository
	UserRepo userRepo.UserRepository
	Wallet   wallet.WalletService
}
