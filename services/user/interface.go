package user

import (
	"errors"

	userRepo "campusrun/database/repository/user"
	"campusrun/models"
)

var (
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("a user with this email already exists")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRegistration is returned for malformed registration data.
	ErrInvalidRegistration = errors.New("invalid registration data")
)

// RegistrationData carries the fields required to open an account. University
// is required of students, BusinessName of vendors.
type RegistrationData struct {
	Email            string      `json:"email"`
	Password         string      `json:"password"`
	Role             models.Role `json:"role"`
	FirstName        string      `json:"firstName"`
	LastName         string      `json:"lastName"`
	University       string      `json:"university,omitempty"`
	StudentID        string      `json:"studentId,omitempty"`
	BusinessName     string      `json:"businessName,omitempty"`
	BusinessLocation string      `json:"businessLocation,omitempty"`
	GoodsType        string      `json:"goodsType,omitempty"`
}

// AuthResponse contains the user's ID, token, and display details.
type AuthResponse struct {
	ID    string      `json:"id"`
	Token string      `json:"token"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

// UserService manages accounts and authentication.
type UserService interface {
	Register(data RegistrationData) (*AuthResponse, error)
	Authenticate(email, password string) (*AuthResponse, error)
	GetUserByID(userID string) (*models.User, error)
	RevokeAuthToken(userID string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo userRepo.UserRepository
}
