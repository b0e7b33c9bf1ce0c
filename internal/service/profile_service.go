package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/core/validate"
	"resident-portal/internal/domain"
)

// ProfileFilter narrows List; empty fields match everything.
type ProfileFilter struct {
	Status domain.Status `form:"status" validate:"omitempty,oneof=pending approved rejected"`
	Role   domain.Role   `form:"role" validate:"omitempty,oneof=resident admin"`
	Year   int           `form:"year" validate:"omitempty,min=1,max=6"`
	Page   int           `form:"page"`
	Size   int           `form:"size"`
}

// SelfUpdate is what a resident may change on their own profile.
type SelfUpdate struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=64"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=64"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Year      *int    `json:"year" validate:"omitempty,min=1,max=6"`
	Hospital  *string `json:"hospital" validate:"omitempty,max=128"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,max=255"`
}

// AdminUpdate adds the authorization fields to SelfUpdate.
type AdminUpdate struct {
	SelfUpdate
	Role   *domain.Role   `json:"role" validate:"omitempty,oneof=resident admin"`
	Status *domain.Status `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}

type ProfileService struct {
	accounts domain.AccountRepository
	profiles domain.Repository[domain.Profile]
	notify   Notifier
	log      *zap.Logger
}

func NewProfileService(accounts domain.AccountRepository, profiles domain.Repository[domain.Profile], n Notifier, l *zap.Logger) *ProfileService {
	return &ProfileService{accounts: accounts, profiles: profiles, notify: notifierOrNop(n), log: l}
}

func (s *ProfileService) List(ctx context.Context, f ProfileFilter) ([]domain.Profile, int64, error) {
	if err := validate.Struct(f); err != nil {
		return nil, 0, err
	}
	q := domain.ListQuery{Filters: map[string]any{}}
	if f.Status != "" {
		q.Filters["status"] = f.Status
	}
	if f.Role != "" {
		q.Filters["role"] = f.Role
	}
	if f.Year > 0 {
		q.Filters["year"] = f.Year
	}
	q.Offset, q.Limit = paging(f.Page, f.Size)
	items, total, err := s.profiles.List(ctx, q)
	return items, total, storeErr("Profile", err)
}

func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, id)
	if err != nil {
		return nil, storeErr("Profile", err)
	}
	return p, nil
}

func (s *ProfileService) UpdateSelf(ctx context.Context, id string, in SelfUpdate) (*domain.Profile, error) {
	return s.update(ctx, id, AdminUpdate{SelfUpdate: in})
}

// Update is the admin edit: any field including role and status.
func (s *ProfileService) Update(ctx context.Context, id string, in AdminUpdate) (*domain.Profile, error) {
	return s.update(ctx, id, in)
}

func (s *ProfileService) update(ctx context.Context, id string, in AdminUpdate) (*domain.Profile, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applySelf(p, in.SelfUpdate)
	if in.Role != nil {
		p.Role = *in.Role
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if err := validate.Struct(p); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, storeErr("Profile", err)
	}
	s.notify.Broadcast("profile:updated", p)
	return p, nil
}

func applySelf(p *domain.Profile, in SelfUpdate) {
	if in.FirstName != nil {
		p.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		p.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		p.Phone = *in.Phone
	}
	if in.Year != nil {
		p.Year = *in.Year
	}
	if in.Hospital != nil {
		if h := strings.TrimSpace(*in.Hospital); h == "" {
			p.Hospital = nil
		} else {
			p.Hospital = &h
		}
	}
	if in.AvatarURL != nil {
		p.AvatarURL = *in.AvatarURL
	}
}

func paging(page, size int) (offset, limit int) {
	if size <= 0 {
		return 0, 0
	}
	if size > 200 {
		size = 200
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * size, size
}

// ensure the id is a non-empty path segment before touching the store
func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation([]apperr.FieldError{{Path: "id", Message: "id is required"}})
	}
	return nil
}
