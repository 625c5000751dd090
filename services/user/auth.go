package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campusrun/models"
	"campusrun/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenDuration = 24 * time.Hour

// Register validates the role-conditioned registration data, creates the
// account with an empty wallet, and issues a token.
func (s *DefaultUserService) Register(data RegistrationData) (*AuthResponse, error) {
	logger := utils.GetLogger()

	if err := validateRegistration(data); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(data.Email))
	existing, err := s.Repo.GetByEmailWithProjection(email, bson.M{"id": 1})
	if err != nil {
		logger.Error("Register: failed to check for existing user", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usr := &models.User{
		ID:            uuid.New().String(),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          data.Role,
		FirstName:     data.FirstName,
		LastName:      data.LastName,
		WalletBalance: decimal.Zero,
	}
	switch data.Role {
	case models.RoleStudent:
		usr.Student = &models.StudentProfile{
			University: data.University,
			StudentID:  data.StudentID,
		}
	case models.RoleVendor:
		usr.Vendor = &models.VendorProfile{
			BusinessName:     data.BusinessName,
			BusinessLocation: data.BusinessLocation,
			GoodsType:        data.GoodsType,
		}
	}

	if err := s.Repo.Create(usr); err != nil {
		logger.Error("Register: failed to create user", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	return s.issueToken(usr)
}

func validateRegistration(data RegistrationData) error {
	if data.Email == "" || data.Password == "" || data.FirstName == "" || data.LastName == "" {
		return fmt.Errorf("%w: all fields are required", ErrInvalidRegistration)
	}
	if len(data.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidRegistration)
	}
	if !data.Role.Valid() {
		return fmt.Errorf("%w: role must be student or vendor", ErrInvalidRegistration)
	}
	if data.Role == models.RoleStudent && data.University == "" {
		return fmt.Errorf("%w: university is required for students", ErrInvalidRegistration)
	}
	if data.Role == models.RoleVendor && data.BusinessName == "" {
		return fmt.Errorf("%w: business name is required for vendors", ErrInvalidRegistration)
	}
	return nil
}

// Authenticate verifies credentials and issues a token.
func (s *DefaultUserService) Authenticate(email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	usr, err := s.Repo.GetByEmailWithProjection(email, nil)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if usr == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(usr)
}

// issueToken generates a JWT and caches its hash so middleware can verify
// tokens without a database round trip, and revocation takes effect at once.
func (s *DefaultUserService) issueToken(usr *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateToken(usr.ID, string(usr.Role), tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	authCache := utils.GetAuthCacheClient()
	cacheKey := utils.AuthCachePrefix + usr.ID
	if err := authCache.Set(context.Background(), cacheKey, utils.HashToken(token), utils.AuthCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("Failed to cache auth token", zap.Error(err))
	}

	return &AuthResponse{
		ID:    usr.ID,
		Token: token,
		Email: usr.Email,
		Name:  usr.FirstName + " " + usr.LastName,
		Role:  usr.Role,
	}, nil
}

// RevokeAuthToken invalidates the cached token hash for a user.
func (s *DefaultUserService) RevokeAuthToken(userID string) error {
	authCache := utils.GetAuthCacheClient()
	return authCache.Del(context.Background(), utils.AuthCachePrefix+userID).Err()
}

// GetUserByID fetches a user's full document.
func (s *DefaultUserService) GetUserByID(userID string) (*models.User, error) {
	usr, err := s.Repo.GetByIDWithProjection(userID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if usr == nil {
		return nil, ErrUserNotFound
	}
	return usr, nil
}
