package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies which side of the marketplace a user is on.
type Role string

const (
	RoleStudent Role = "student"
	RoleVendor  Role = "vendor"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleVendor
}

// StudentProfile holds the fields required of student accounts.
type StudentProfile struct {
	University string `bson:"university" json:"university"`
	StudentID  string `bson:"studentId,omitempty" json:"studentId,omitempty"`
}

// VendorProfile holds the fields required of vendor accounts.
type VendorProfile struct {
	BusinessName     string `bson:"businessName" json:"businessName"`
	BusinessLocation string `bson:"businessLocation,omitempty" json:"businessLocation,omitempty"`
	GoodsType        string `bson:"goodsType,omitempty" json:"goodsType,omitempty"`
}

// User represents a wallet-holding account. Exactly one of Student or Vendor
// is set, matching Role.
type User struct {
	ID           string          `bson:"id" json:"id"`
	Email        string          `bson:"email" json:"email"`
	PasswordHash string          `bson:"passwordHash" json:"-"`
	Role         Role            `bson:"role" json:"role"`
	FirstName    string          `bson:"firstName" json:"firstName"`
	LastName     string          `bson:"lastName" json:"lastName"`
	Student      *StudentProfile `bson:"student,omitempty" json:"student,omitempty"`
	Vendor       *VendorProfile  `bson:"vendor,omitempty" json:"vendor,omitempty"`

	WalletBalance decimal.Decimal `bson:"walletBalance" json:"walletBalance"`
	AverageRating float64         `bson:"averageRating" json:"averageRating"`
	TotalRatings  int             `bson:"totalRatings" json:"totalRatings"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PublicProfile is the trimmed view of a user embedded in task and rating responses.
type PublicProfile struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Role          Role    `json:"role"`
	BusinessName  string  `json:"businessName,omitempty"`
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int     `json:"totalRatings"`
}

// Public returns the user's public profile view.
func (u *User) Public() PublicProfile {
	p := PublicProfile{
		ID:            u.ID,
		Name:          u.FirstName + " " + u.LastName,
		Role:          u.Role,
		AverageRating: u.AverageRating,
		TotalRatings:  u.TotalRatings,
	}
	if u.Vendor != nil {
		p.BusinessName = u.Vendor.BusinessName
	}
	return p
}
