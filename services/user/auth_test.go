package user

import (
	"errors"
	"sync"
	"testing"

	"campusrun/models"
	"campusrun/utils"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	// Point the auth cache at a dead address; issueToken only warns when the
	// cache write fails, and tests must not require a live Redis.
	utils.AuthCacheClient = redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (r *memUserRepo) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) Update(u *models.User) error                         { return nil }
func (r *memUserRepo) UpdateSetDocument(id string, updateDoc bson.M) error { return nil }

func (r *memUserRepo) GetByIDWithProjection(id string, projection bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmailWithProjection(email string, projection bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) SetRatingStats(id string, average float64, count int) error { return nil }

func studentRegistration() RegistrationData {
	return RegistrationData{
		Email:      "jane@campus.edu",
		Password:   "sup3rsecret",
		Role:       models.RoleStudent,
		FirstName:  "Jane",
		LastName:   "Doe",
		University: "State University",
		StudentID:  "SU-1024",
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := &DefaultUserService{Repo: newMemUserRepo()}

	cases := []struct {
		name   string
		mutate func(*RegistrationData)
	}{
		{"missing email", func(d *RegistrationData) { d.Email = "" }},
		{"short password", func(d *RegistrationData) { d.Password = "12345" }},
		{"bad role", func(d *RegistrationData) { d.Role = "admin" }},
		{"student without university", func(d *RegistrationData) { d.University = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := studentRegistration()
			tc.mutate(&data)
			if _, err := svc.Register(data); !errors.Is(err, ErrInvalidRegistration) {
				t.Fatalf("got %v, want ErrInvalidRegistration", err)
			}
		})
	}

	vendor := RegistrationData{
		Email: "shop@campus.edu", Password: "sup3rsecret",
		Role: models.RoleVendor, FirstName: "Sam", LastName: "Lee",
	}
	if _, err := svc.Register(vendor); !errors.Is(err, ErrInvalidRegistration) {
		t.Fatalf("vendor without business name: got %v, want ErrInvalidRegistration", err)
	}
}

func TestRegisterCreatesProfile(t *testing.T) {
	repo := newMemUserRepo()
	svc := &DefaultUserService{Repo: repo}

	resp, err := svc.Register(studentRegistration())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("no token issued")
	}
	if resp.Role != models.RoleStudent || resp.Name != "Jane Doe" {
		t.Errorf("response = %+v", resp)
	}

	stored, _ := repo.GetByIDWithProjection(resp.ID, nil)
	if stored == nil {
		t.Fatal("user not persisted")
	}
	if !stored.WalletBalance.IsZero() {
		t.Errorf("new wallet balance = %s, want 0", stored.WalletBalance)
	}
	if stored.Student == nil || stored.Student.University != "State University" {
		t.Errorf("student profile = %+v", stored.Student)
	}
	if stored.Vendor != nil {
		t.Errorf("vendor profile set on a student: %+v", stored.Vendor)
	}
	if stored.PasswordHash == "sup3rsecret" {
		t.Error("password stored in plaintext")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := &DefaultUserService{Repo: newMemUserRepo()}

	if _, err := svc.Register(studentRegistration()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	dup := studentRegistration()
	dup.Email = "JANE@campus.edu" // emails are case-insensitive
	if _, err := svc.Register(dup); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newMemUserRepo()
	svc := &DefaultUserService{Repo: repo}

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	repo.Create(&models.User{
		ID: "u1", Email: "jane@campus.edu", PasswordHash: string(hash),
		Role: models.RoleStudent, FirstName: "Jane", LastName: "Doe",
	})

	if _, err := svc.Authenticate("jane@campus.edu", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate("ghost@campus.edu", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", err)
	}

	resp, err := svc.Authenticate("Jane@campus.edu ", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if resp.ID != "u1" || resp.Token == "" {
		t.Errorf("response = %+v", resp)
	}
}

func TestGetUserByID(t *testing.T) {
	repo := newMemUserRepo()
	svc := &DefaultUserService{Repo: repo}
	repo.Create(&models.User{ID: "u1", Email: "jane@campus.edu"})

	if _, err := svc.GetUserByID("missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
	u, err := svc.GetUserByID("u1")
	if err != nil || u.Email != "jane@campus.edu" {
		t.Fatalf("got %+v, %v", u, err)
	}
}
