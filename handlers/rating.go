package handlers

import (
	"errors"
	"net/http"

	"campusrun/services/rating"
	"campusrun/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RatingHandler exposes rating submission and lookup endpoints.
type RatingHandler struct {
	Svc rating.RatingService
}

// NewRatingHandler returns a RatingHandler backed by the given service.
func NewRatingHandler(svc rating.RatingService) *RatingHandler {
	return &RatingHandler{Svc: svc}
}

type submitRatingRequest struct {
	ToUserID string `json:"toUserId" binding:"required"`
	TaskID   string `json:"taskId" binding:"required"`
	Score    int    `json:"score" binding:"required"`
	Comment  string `json:"comment"`
}

// Submit records a review of the other party to a completed task.
func (h *RatingHandler) Submit(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	var req submitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error(), "VALIDATION_ERROR")
		return
	}

	r, err := h.Svc.Submit(actor, req.ToUserID, req.TaskID, req.Score, req.Comment)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ok(c, http.StatusCreated, gin.H{"rating": r})
}

// UserRatings returns one page of a user's received ratings with stats.
func (h *RatingHandler) UserRatings(c *gin.Context) {
	page, limit := pageParams(c, 20)

	result, err := h.Svc.GetUserRatings(c.Param("userId"), page, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{
		"user":               result.User,
		"ratings":            result.Ratings,
		"ratingDistribution": result.Distribution,
		"pagination":         result.Pagination,
	})
}

func (h *RatingHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rating.ErrInvalidScore):
		utils.JSONError(c, http.StatusBadRequest, "Score must be an integer between 1 and 5", "INVALID_SCORE")
	case errors.Is(err, rating.ErrCommentTooLong):
		utils.JSONError(c, http.StatusBadRequest, "Comment must be at most 500 characters", "VALIDATION_ERROR")
	case errors.Is(err, rating.ErrSelfRating):
		utils.JSONError(c, http.StatusBadRequest, "Cannot rate yourself", "SELF_RATING")
	case errors.Is(err, rating.ErrTaskNotFound):
		utils.JSONError(c, http.StatusNotFound, "Task not found", "TASK_NOT_FOUND")
	case errors.Is(err, rating.ErrUserNotFound):
		utils.JSONError(c, http.StatusNotFound, "User not found", "USER_NOT_FOUND")
	case errors.Is(err, rating.ErrTaskNotCompleted):
		utils.JSONError(c, http.StatusBadRequest, "Task is not completed", "TASK_NOT_COMPLETED")
	case errors.Is(err, rating.ErrNotAuthorized):
		utils.JSONError(c, http.StatusForbidden, "Not a participant of this task", "NOT_AUTHORIZED")
	case errors.Is(err, rating.ErrInvalidToUser):
		utils.JSONError(c, http.StatusBadRequest, "Can only rate the other party to the task", "INVALID_TO_USER")
	case errors.Is(err, rating.ErrDuplicateRating):
		utils.JSONError(c, http.StatusConflict, "You have already rated this task", "DUPLICATE_RATING")
	default:
		getLogger(c).Error("Failed to process rating", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to process rating", "RATING_ERROR")
	}
}
