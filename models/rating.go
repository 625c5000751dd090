package models

import "time"

// Rating is one performance review, at most one per (fromUserId, taskId) pair.
type Rating struct {
	ID         string    `bson:"id" json:"id"`
	FromUserID string    `bson:"fromUserId" json:"fromUserId"`
	ToUserID   string    `bson:"toUserId" json:"toUserId"`
	TaskID     string    `bson:"taskId" json:"taskId"`
	Score      int       `bson:"score" json:"score"`
	Comment    string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`

	// Denormalized rater profile, populated on reads for display.
	From *PublicProfile `bson:"-" json:"from,omitempty"`
}

// ScoreBucket is one row of a per-score rating histogram.
type ScoreBucket struct {
	Score int `bson:"_id" json:"score"`
	Count int `bson:"count" json:"count"`
}

// RatingStats is the aggregate recomputed after every new rating.
type RatingStats struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}
