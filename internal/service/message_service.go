package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"resident-portal/internal/core/validate"
	"resident-portal/internal/domain"
	"resident-portal/pkg/utils"
)

type MessageInput struct {
	Subject  string             `json:"subject" validate:"required,max=200"`
	Content  string             `json:"content" validate:"required,max=10000"`
	Priority domain.Priority    `json:"priority" validate:"omitempty,oneof=urgent important info"`
	Type     domain.MessageType `json:"type" validate:"omitempty,oneof=broadcast alert general"`
}

type MessageFilter struct {
	Priority domain.Priority    `form:"priority" validate:"omitempty,oneof=urgent important info"`
	Type     domain.MessageType `form:"type" validate:"omitempty,oneof=broadcast alert general"`
	Page     int                `form:"page"`
	Size     int                `form:"size"`
}

type MessageService struct {
	repo   domain.Repository[domain.Message]
	notify Notifier
	log    *zap.Logger
}

func NewMessageService(repo domain.Repository[domain.Message], n Notifier, l *zap.Logger) *MessageService {
	return &MessageService{repo: repo, notify: notifierOrNop(n), log: l}
}

// List returns messages newest first.
func (s *MessageService) List(ctx context.Context, f MessageFilter) ([]domain.Message, int64, error) {
	if err := validate.Struct(f); err != nil {
		return nil, 0, err
	}
	q := domain.ListQuery{Filters: map[string]any{}, Order: "created_at DESC"}
	if f.Priority != "" {
		q.Filters["priority"] = f.Priority
	}
	if f.Type != "" {
		q.Filters["type"] = f.Type
	}
	q.Offset, q.Limit = paging(f.Page, f.Size)
	items, total, err := s.repo.List(ctx, q)
	return items, total, storeErr("Message", err)
}

func (s *MessageService) Get(ctx context.Context, id string) (*domain.Message, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeErr("Message", err)
	}
	return m, nil
}

// Create stores a message from sender and announces it as message:new.
func (s *MessageService) Create(ctx context.Context, sender *domain.Profile, in MessageInput) (*domain.Message, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	if in.Priority == "" {
		in.Priority = domain.PriorityInfo
	}
	if in.Type == "" {
		in.Type = domain.MessageBroadcast
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	m := &domain.Message{
		Base:       domain.Base{ID: utils.NewID()},
		SenderName: sender.FullName(),
		SenderRole: roleLabel(sender),
		Subject:    in.Subject,
		Content:    in.Content,
		Priority:   in.Priority,
		Type:       in.Type,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, storeErr("Message", err)
	}
	s.log.Info("message created", zap.String("message", m.ID), zap.String("priority", string(m.Priority)))
	s.notify.Broadcast("message:new", m)
	return m, nil
}

func (s *MessageService) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr("Message", err)
	}
	s.notify.Broadcast("message:deleted", map[string]string{"id": id})
	return nil
}

func roleLabel(p *domain.Profile) string {
	if p.IsAdmin() {
		return "Administrator"
	}
	return "Resident"
}
