package handlers

import (
	"errors"
	"net/http"

	"campusrun/models"
	"campusrun/services/task"
	"campusrun/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TaskHandler exposes the task lifecycle endpoints.
type TaskHandler struct {
	Svc task.TaskService
}

// NewTaskHandler returns a TaskHandler backed by the given service.
func NewTaskHandler(svc task.TaskService) *TaskHandler {
	return &TaskHandler{Svc: svc}
}

type createTaskRequest struct {
	Description     string          `json:"description" binding:"required"`
	PickupLocation  string          `json:"pickupLocation" binding:"required"`
	DropoffLocation string          `json:"dropoffLocation" binding:"required"`
	EstimatedTime   int             `json:"estimatedTime" binding:"required"`
	RewardAmount    decimal.Decimal `json:"rewardAmount" binding:"required"`
}

// Create posts a new task (vendors only).
func (h *TaskHandler) Create(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error(), "VALIDATION_ERROR")
		return
	}

	t, err := h.Svc.Create(actor, task.CreateTaskInput{
		Description:     req.Description,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		EstimatedTime:   req.EstimatedTime,
		RewardAmount:    req.RewardAmount,
	})
	if err != nil {
		h.writeError(c, err, "CREATE_TASK_ERROR", "Failed to create task")
		return
	}

	ok(c, http.StatusCreated, gin.H{"task": t})
}

// Assign claims an available task (students only).
func (h *TaskHandler) Assign(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	t, err := h.Svc.Assign(actor, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "ASSIGN_TASK_ERROR", "Failed to assign task")
		return
	}

	ok(c, http.StatusOK, gin.H{"task": t})
}

type submitProofRequest struct {
	Files []models.ProofFile `json:"files" binding:"required"`
}

// SubmitProof attaches completion-proof descriptors (assigned student only).
func (h *TaskHandler) SubmitProof(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	var req submitProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "At least one proof file is required", "NO_PROOF_FILES")
		return
	}

	t, err := h.Svc.SubmitProof(actor, c.Param("id"), req.Files)
	if err != nil {
		h.writeError(c, err, "SUBMIT_PROOF_ERROR", "Failed to submit proof")
		return
	}

	ok(c, http.StatusOK, gin.H{"task": t})
}

type reviewRequest struct {
	Approved    *bool  `json:"approved" binding:"required"`
	ReviewNotes string `json:"reviewNotes"`
}

// Review approves or rejects submitted proof (task creator only).
func (h *TaskHandler) Review(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Approved must be a boolean value", "VALIDATION_ERROR")
		return
	}

	result, err := h.Svc.Review(actor, c.Param("id"), *req.Approved, req.ReviewNotes)
	if err != nil {
		h.writeError(c, err, "REVIEW_PROOF_ERROR", "Failed to review proof")
		return
	}

	ok(c, http.StatusOK, gin.H{
		"task":             result.Task,
		"paymentProcessed": result.PaymentProcessed,
	})
}

// Cancel withdraws a task (task creator only).
func (h *TaskHandler) Cancel(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	t, err := h.Svc.Cancel(actor, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "CANCEL_TASK_ERROR", "Failed to cancel task")
		return
	}

	ok(c, http.StatusOK, gin.H{"task": t})
}

// Get returns one task's details, subject to access rules.
func (h *TaskHandler) Get(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	t, err := h.Svc.GetByID(actor, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "TASK_DETAILS_ERROR", "Failed to get task details")
		return
	}

	ok(c, http.StatusOK, gin.H{"task": t})
}

// List returns the tasks visible to the actor, filtered and paginated.
func (h *TaskHandler) List(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	filter, err := parseTaskFilter(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	tasks, pagination, err := h.Svc.List(actor, filter)
	if err != nil {
		h.writeError(c, err, "TASKS_ERROR", "Failed to get tasks")
		return
	}

	ok(c, http.StatusOK, gin.H{"tasks": tasks, "pagination": pagination})
}

// MyTasks returns the actor's own tasks.
func (h *TaskHandler) MyTasks(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	status := models.TaskStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "Invalid status", "VALIDATION_ERROR")
		return
	}
	page, limit := pageParams(c, 20)

	tasks, pagination, err := h.Svc.MyTasks(actor, status, page, limit)
	if err != nil {
		h.writeError(c, err, "USER_TASKS_ERROR", "Failed to get user tasks")
		return
	}

	ok(c, http.StatusOK, gin.H{"tasks": tasks, "pagination": pagination})
}

func parseTaskFilter(c *gin.Context) (models.TaskFilter, error) {
	var f models.TaskFilter

	f.Status = models.TaskStatus(c.Query("status"))
	if f.Status != "" && !f.Status.Valid() {
		return f, errors.New("invalid status")
	}
	if v := c.Query("minReward"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return f, errors.New("minimum reward must be a positive number")
		}
		f.MinReward = &d
	}
	if v := c.Query("maxReward"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return f, errors.New("maximum reward must be a positive number")
		}
		f.MaxReward = &d
	}
	f.Location = c.Query("location")
	f.Page, f.Limit = pageParams(c, 20)
	return f, nil
}

// writeError maps task service errors onto HTTP responses.
func (h *TaskHandler) writeError(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		utils.JSONError(c, http.StatusNotFound, "Task not found", "TASK_NOT_FOUND")
	case errors.Is(err, task.ErrUserNotFound):
		utils.JSONError(c, http.StatusNotFound, "User not found", "USER_NOT_FOUND")
	case errors.Is(err, task.ErrInvalidInput):
		utils.JSONError(c, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, task.ErrInsufficientBalance):
		utils.JSONError(c, http.StatusBadRequest, "Insufficient wallet balance", "INSUFFICIENT_BALANCE")
	case errors.Is(err, task.ErrTaskNotAvailable):
		utils.JSONError(c, http.StatusBadRequest, "Task is not available for assignment", "TASK_NOT_AVAILABLE")
	case errors.Is(err, task.ErrCannotAssignOwnTask):
		utils.JSONError(c, http.StatusBadRequest, "Cannot assign your own task", "CANNOT_ASSIGN_OWN_TASK")
	case errors.Is(err, task.ErrTaskNotAssigned):
		utils.JSONError(c, http.StatusForbidden, "Task not assigned to you", "TASK_NOT_ASSIGNED")
	case errors.Is(err, task.ErrTaskNotInProgress):
		utils.JSONError(c, http.StatusBadRequest, "Task is not in progress", "TASK_NOT_IN_PROGRESS")
	case errors.Is(err, task.ErrNoProofFiles):
		utils.JSONError(c, http.StatusBadRequest, "At least one proof file is required", "NO_PROOF_FILES")
	case errors.Is(err, task.ErrTaskNotPendingReview):
		utils.JSONError(c, http.StatusBadRequest, "Task is not pending review", "TASK_NOT_PENDING_REVIEW")
	case errors.Is(err, task.ErrTaskNotCancellable):
		utils.JSONError(c, http.StatusBadRequest, "Task can no longer be cancelled", "TASK_NOT_CANCELLABLE")
	case errors.Is(err, task.ErrNotAuthorized):
		utils.JSONError(c, http.StatusForbidden, "Not authorized for this task", "NOT_AUTHORIZED")
	case errors.Is(err, task.ErrAccessDenied):
		utils.JSONError(c, http.StatusForbidden, "Access denied", "ACCESS_DENIED")
	default:
		getLogger(c).Error(fallbackMsg, zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, fallbackMsg, fallbackCode)
	}
}
