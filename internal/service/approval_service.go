package service

import (
	"context"

	"go.uber.org/zap"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/core/validate"
	"resident-portal/internal/domain"
)

type ApproveInput struct {
	GrantAdmin bool `json:"grantAdmin"`
}

type RoleInput struct {
	Role domain.Role `json:"role" validate:"required,oneof=resident admin"`
}

type BulkInput struct {
	IDs        []string `json:"ids" validate:"required,min=1,max=500,dive,required"`
	GrantAdmin bool     `json:"grantAdmin"`
}

type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// BulkResult reports every id: one failure never stops the rest, and nothing
// already applied is rolled back.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

func (r *BulkResult) record(id string, err error) {
	if err == nil {
		r.Succeeded = append(r.Succeeded, id)
		return
	}
	ae := apperr.From(err)
	r.Failed = append(r.Failed, BulkFailure{ID: id, Error: ae.Msg, Code: ae.Code})
}

// ListPending returns profiles awaiting a decision, newest first.
func (s *ProfileService) ListPending(ctx context.Context) ([]domain.Profile, error) {
	items, _, err := s.profiles.List(ctx, domain.ListQuery{
		Filters: map[string]any{"status": domain.StatusPending},
		Order:   "created_at DESC",
	})
	return items, storeErr("Profile", err)
}

// Approve sets status=approved, then grants admin when asked. The role change
// only happens once the status change has been stored. Approving twice is a no-op.
func (s *ProfileService) Approve(ctx context.Context, id string, grantAdmin bool) (*domain.Profile, error) {
	p, err := s.setStatus(ctx, id, domain.StatusApproved)
	if err != nil {
		return nil, err
	}
	if grantAdmin && !p.IsAdmin() {
		p.Role = domain.RoleAdmin
		if err := s.profiles.Save(ctx, p); err != nil {
			return nil, storeErr("Profile", err)
		}
	}
	s.log.Info("profile approved", zap.String("profile", id), zap.Bool("admin", grantAdmin))
	s.notify.Broadcast("profile:updated", p)
	return p, nil
}

// Reject sets status=rejected. A rejected profile may be approved later.
func (s *ProfileService) Reject(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.setStatus(ctx, id, domain.StatusRejected)
	if err != nil {
		return nil, err
	}
	s.log.Info("profile rejected", zap.String("profile", id))
	s.notify.Broadcast("profile:updated", p)
	return p, nil
}

// SetRole promotes or demotes regardless of status.
func (s *ProfileService) SetRole(ctx context.Context, id string, in RoleInput) (*domain.Profile, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != in.Role {
		p.Role = in.Role
		if err := s.profiles.Save(ctx, p); err != nil {
			return nil, storeErr("Profile", err)
		}
	}
	s.notify.Broadcast("profile:updated", p)
	return p, nil
}

// Delete removes the user and, with it, the profile.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.accounts.DeleteAccount(ctx, id); err != nil {
		return storeErr("User", err)
	}
	s.log.Info("account deleted", zap.String("user", id))
	s.notify.Broadcast("profile:updated", map[string]any{"id": id, "deleted": true})
	return nil
}

func (s *ProfileService) BulkApprove(ctx context.Context, in BulkInput) (*BulkResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	res := &BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}
	for _, id := range in.IDs {
		_, err := s.Approve(ctx, id, in.GrantAdmin)
		res.record(id, err)
	}
	return res, nil
}

func (s *ProfileService) BulkDelete(ctx context.Context, in BulkInput) (*BulkResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	res := &BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}
	for _, id := range in.IDs {
		res.record(id, s.Delete(ctx, id))
	}
	return res, nil
}

func (s *ProfileService) setStatus(ctx context.Context, id string, st domain.Status) (*domain.Profile, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == st {
		return p, nil
	}
	p.Status = st
	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, storeErr("Profile", err)
	}
	return p, nil
}
