package domain

import (
	"context"
	"strings"
)

type Role string

const (
	RoleResident Role = "resident"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool { return r == RoleResident || r == RoleAdmin }

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// User is the credential record. Email is stored lower-cased.
type User struct {
	Base
	Email        string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
}

func (User) TableName() string { return "users" }

// Profile shares its ID with the owning User.
type Profile struct {
	Base
	FirstName string  `gorm:"size:64;not null" json:"firstName" validate:"required,max=64"`
	LastName  string  `gorm:"size:64;not null" json:"lastName" validate:"required,max=64"`
	Email     string  `gorm:"size:191;index" json:"email" validate:"required,email"`
	Phone     string  `gorm:"size:32" json:"phone,omitempty" validate:"omitempty,max=32"`
	Year      int     `gorm:"default:1" json:"year" validate:"omitempty,min=1,max=6"`
	Hospital  *string `gorm:"size:128" json:"hospital" validate:"omitempty,max=128"`
	Role      Role    `gorm:"size:16;not null;default:resident;index" json:"role" validate:"required,oneof=resident admin"`
	Status    Status  `gorm:"size:16;not null;default:pending;index" json:"status" validate:"required,oneof=pending approved rejected"`
	AvatarURL string  `gorm:"size:255" json:"avatarUrl,omitempty" validate:"omitempty,max=255"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Profile) IsAdmin() bool { return p.Role == RoleAdmin }

// AccountRepository owns the User+Profile pair.
type AccountRepository interface {
	// CreateAccount inserts both rows or neither.
	CreateAccount(ctx context.Context, u *User, p *Profile) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	// DeleteAccount removes the user and its profile.
	DeleteAccount(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int64, error)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
