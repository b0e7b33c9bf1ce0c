package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/core/validate"
	"resident-portal/internal/domain"
	"resident-portal/pkg/utils"
)

type JoinInput struct {
	Status string `json:"status" validate:"omitempty,oneof=confirmed maybe declined"`
}

// LeisureService lets a resident sign up for an event themselves.
type LeisureService struct {
	events       domain.Repository[domain.LeisureEvent]
	participants domain.Repository[domain.LeisureParticipant]
	notify       Notifier
	log          *zap.Logger
}

func NewLeisureService(events domain.Repository[domain.LeisureEvent], participants domain.Repository[domain.LeisureParticipant], n Notifier, l *zap.Logger) *LeisureService {
	return &LeisureService{events: events, participants: participants, notify: notifierOrNop(n), log: l}
}

// Join adds the caller to the event, or updates their answer if already listed.
func (s *LeisureService) Join(ctx context.Context, eventID, profileID string, in JoinInput) (*domain.LeisureParticipant, error) {
	if in.Status == "" {
		in.Status = "confirmed"
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, storeErr("Event", err)
	}
	if ev.Status == "cancelled" || ev.Status == "completed" {
		return nil, apperr.Conflict("Event is " + ev.Status)
	}

	p, err := s.upsert(ctx, eventID, profileID, in.Status)
	if err != nil {
		return nil, err
	}
	s.notify.Broadcast("event:updated", map[string]any{"id": eventID, "participant": p})
	return p, nil
}

func (s *LeisureService) upsert(ctx context.Context, eventID, profileID, status string) (*domain.LeisureParticipant, error) {
	p, err := s.find(ctx, eventID, profileID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &domain.LeisureParticipant{Base: domain.Base{ID: utils.NewID()}, EventID: eventID, ProfileID: profileID, Status: status}
		err = s.participants.Create(ctx, p)
		if !errors.Is(err, domain.ErrDuplicate) {
			return p, storeErr("Participant", err)
		}
		// a concurrent join inserted the row first; answer on that row
		if p, err = s.find(ctx, eventID, profileID); err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apperr.Conflict("Participant changed concurrently")
		}
	}
	if p.Status == status {
		return p, nil
	}
	p.Status = status
	if err := s.participants.Save(ctx, p); err != nil {
		return nil, storeErr("Participant", err)
	}
	return p, nil
}

func (s *LeisureService) Leave(ctx context.Context, eventID, profileID string) error {
	p, err := s.find(ctx, eventID, profileID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("Participant")
	}
	if err := s.participants.Delete(ctx, p.ID); err != nil {
		return storeErr("Participant", err)
	}
	s.notify.Broadcast("event:updated", map[string]any{"id": eventID, "left": profileID})
	return nil
}

func (s *LeisureService) find(ctx context.Context, eventID, profileID string) (*domain.LeisureParticipant, error) {
	items, _, err := s.participants.List(ctx, domain.ListQuery{
		Filters: map[string]any{"event_id": eventID, "profile_id": profileID},
		Limit:   1,
	})
	if err != nil {
		return nil, storeErr("Participant", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}
