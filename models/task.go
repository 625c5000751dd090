package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskAvailable     TaskStatus = "available"
	TaskInProgress    TaskStatus = "in-progress"
	TaskPendingReview TaskStatus = "pending-review"
	TaskCompleted     TaskStatus = "completed"
	TaskCancelled     TaskStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskAvailable, TaskInProgress, TaskPendingReview, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

// ProofFile describes one stored completion-proof attachment. The bytes
// themselves live in external storage; the task carries descriptors only.
type ProofFile struct {
	Filename     string    `bson:"filename" json:"filename"`
	OriginalName string    `bson:"originalName" json:"originalName"`
	MimeType     string    `bson:"mimetype" json:"mimetype"`
	Size         int64     `bson:"size" json:"size"`
	UploadedAt   time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// Task is one unit of paid work posted by a vendor.
type Task struct {
	ID              string          `bson:"id" json:"id"`
	Description     string          `bson:"description" json:"description"`
	PickupLocation  string          `bson:"pickupLocation" json:"pickupLocation"`
	DropoffLocation string          `bson:"dropoffLocation" json:"dropoffLocation"`
	EstimatedTime   int             `bson:"estimatedTime" json:"estimatedTime"` // minutes
	RewardAmount    decimal.Decimal `bson:"rewardAmount" json:"rewardAmount"`
	Status          TaskStatus      `bson:"status" json:"status"`
	CreatedBy       string          `bson:"createdBy" json:"createdBy"`
	AssignedTo      string          `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Proof           []ProofFile     `bson:"proof,omitempty" json:"proof,omitempty"`
	ReviewNotes     string          `bson:"reviewNotes,omitempty" json:"reviewNotes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// Denormalized counterpart profiles, populated on reads for display.
	Creator  *PublicProfile `bson:"-" json:"creator,omitempty"`
	Assignee *PublicProfile `bson:"-" json:"assignee,omitempty"`
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status    TaskStatus
	MinReward *decimal.Decimal
	MaxReward *decimal.Decimal
	Location  string
	Page      int
	Limit     int
}
