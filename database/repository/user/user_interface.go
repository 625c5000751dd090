package userRepo

import (
	"campusrun/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository defines persistence operations for users and their wallets.
type UserRepository interface {
	Create(user *models.User) error
	Update(user *models.User) error
	UpdateSetDocument(id string, updateDoc bson.M) error

	// GetByIDWithProjection retrieves a user by ID. Pass nil to fetch the full
	// document. Returns (nil, nil) when the user does not exist.
	GetByIDWithProjection(id string, projection bson.M) (*models.User, error)
	GetByEmailWithProjection(email string, projection bson.M) (*models.User, error)

	// SetRatingStats overwrites the denormalized rating aggregate.
	SetRatingStats(id string, average float64, count int) error
}
