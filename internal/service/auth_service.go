package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/core/auth"
	"resident-portal/internal/core/validate"
	"resident-portal/internal/domain"
	"resident-portal/pkg/utils"
)

type SignupInput struct {
	Email     string  `json:"email" validate:"required,email,max=191"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	FirstName string  `json:"firstName" validate:"required,max=64"`
	LastName  string  `json:"lastName" validate:"required,max=64"`
	Phone     string  `json:"phone" validate:"omitempty,max=32"`
	Year      int     `json:"year" validate:"omitempty,min=1,max=6"`
	Hospital  *string `json:"hospital" validate:"omitempty,max=128"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshInput struct {
	Token string `json:"token" validate:"required"`
}

// UserSummary is the part of a profile returned with a session.
type UserSummary struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Role      domain.Role   `json:"role"`
	Status    domain.Status `json:"status"`
	AvatarURL string        `json:"avatarUrl,omitempty"`
}

func Summarize(p *domain.Profile) UserSummary {
	return UserSummary{
		ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName,
		Role: p.Role, Status: p.Status, AvatarURL: p.AvatarURL,
	}
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserSummary `json:"user"`
}

type AuthService struct {
	accounts    domain.AccountRepository
	profiles    domain.Repository[domain.Profile]
	jwt         *auth.JWTer
	autoApprove bool
	log         *zap.Logger
}

func NewAuthService(accounts domain.AccountRepository, profiles domain.Repository[domain.Profile], j *auth.JWTer, autoApprove bool, l *zap.Logger) *AuthService {
	return &AuthService{accounts: accounts, profiles: profiles, jwt: j, autoApprove: autoApprove, log: l}
}

var (
	errUserExists   = apperr.New(http.StatusBadRequest, apperr.CodeUserExists, "User already exists")
	errUserNotFound = apperr.Unauthorized(apperr.CodeUserNotFound, "User not found")
	errRejected     = apperr.New(http.StatusForbidden, apperr.CodeAccountRejected, "Account has been rejected")
)

// Signup creates the user and its profile in one transaction.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.accounts.FindUserByEmail(ctx, in.Email); err == nil {
		return nil, errUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.Internal("Database error", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("Could not hash password", err)
	}

	status := domain.StatusPending
	if s.autoApprove {
		status = domain.StatusApproved
	}
	id := utils.NewID()
	u := &domain.User{Base: domain.Base{ID: id}, Email: in.Email, PasswordHash: hash}
	p := &domain.Profile{
		Base:      domain.Base{ID: id},
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Year:      max(in.Year, 1),
		Hospital:  in.Hospital,
		Role:      domain.RoleResident,
		Status:    status,
	}
	if err := s.accounts.CreateAccount(ctx, u, p); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, errUserExists
		}
		return nil, apperr.Internal("Could not create account", err)
	}
	s.log.Info("signup", zap.String("user", id), zap.String("status", string(status)))
	return s.session(p)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	badCreds := apperr.Unauthorized(apperr.CodeInvalidCredentials, "Invalid email or password")

	u, err := s.accounts.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, badCreds
	}
	if err != nil {
		return nil, apperr.Internal("Database error", err)
	}
	if !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, badCreds
	}
	p, err := s.member(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return s.session(p)
}

// Refresh reissues a token from a valid one or one that expired within the grace period.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (*Session, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	claims, err := s.jwt.ParseForRefresh(in.Token)
	if err != nil {
		return nil, tokenErr(err)
	}
	p, err := s.member(ctx, claims.UID)
	if err != nil {
		return nil, err
	}
	return s.session(p)
}

// Resolve verifies a bearer token and loads the profile it names.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Profile, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, tokenErr(err)
	}
	return s.member(ctx, claims.UID)
}

// member loads the profile behind a credential. A rejected profile is refused
// everywhere a token is issued or accepted.
func (s *AuthService) member(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, apperr.Internal("Database error", err)
	}
	if p.Status == domain.StatusRejected {
		return nil, errRejected
	}
	return p, nil
}

func (s *AuthService) session(p *domain.Profile) (*Session, error) {
	tok, exp, err := s.jwt.Issue(p.ID, p.Email)
	if err != nil {
		return nil, apperr.Internal("Could not issue token", err)
	}
	return &Session{Token: tok, ExpiresAt: exp, User: Summarize(p)}, nil
}

func tokenErr(err error) error {
	if errors.Is(err, auth.ErrTokenExpired) {
		return apperr.Unauthorized(apperr.CodeTokenExpired, "Token expired")
	}
	return apperr.Unauthorized(apperr.CodeInvalidToken, "Invalid token")
}
