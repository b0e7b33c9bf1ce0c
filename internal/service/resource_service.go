package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"resident-portal/internal/core/apperr"
	"resident-portal/internal/core/cache"
	"resident-portal/internal/core/validate"
	"resident-portal/internal/domain"
	"resident-portal/pkg/utils"
)

// ListParams is a parsed list request: equality filters by query name plus paging.
type ListParams struct {
	Filters map[string]string
	Page    int
	Size    int
}

// ResourceOptions describe one plain CRUD collection.
type ResourceOptions struct {
	Name string
	// Filters maps accepted query parameters to columns.
	Filters map[string]string
	Order   string
	// Event is broadcast with the changed record after create and update.
	Event string
	// CacheKey enables read-through caching of the unfiltered list.
	CacheKey string
	CacheTTL time.Duration
}

// Resource is the generic service behind the simple collections.
type Resource[T any] struct {
	repo   domain.Repository[T]
	opts   ResourceOptions
	cache  *cache.Cache
	notify Notifier
	log    *zap.Logger
}

func NewResource[T any](repo domain.Repository[T], opts ResourceOptions, c *cache.Cache, n Notifier, l *zap.Logger) *Resource[T] {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	return &Resource[T]{repo: repo, opts: opts, cache: c, notify: notifierOrNop(n), log: l}
}

func (s *Resource[T]) Name() string { return s.opts.Name }

func (s *Resource[T]) List(ctx context.Context, p ListParams) ([]T, int64, error) {
	q := domain.ListQuery{Filters: map[string]any{}, Order: s.opts.Order}
	for param, v := range p.Filters {
		col, ok := s.opts.Filters[param]
		if !ok || v == "" {
			continue
		}
		q.Filters[col] = v
	}
	q.Offset, q.Limit = paging(p.Page, p.Size)

	if s.opts.CacheKey != "" && len(q.Filters) == 0 && q.Limit == 0 {
		items, err := cache.GetOrLoadJSON(s.cache, ctx, s.opts.CacheKey, s.opts.CacheTTL, func(ctx context.Context) ([]T, error) {
			items, _, err := s.repo.List(ctx, q)
			return items, err
		})
		if err != nil {
			return nil, 0, storeErr(s.opts.Name, err)
		}
		return items, int64(len(items)), nil
	}

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, storeErr(s.opts.Name, err)
	}
	return items, total, nil
}

func (s *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeErr(s.opts.Name, err)
	}
	return m, nil
}

// Create assigns a fresh id; any id in the input is ignored.
func (s *Resource[T]) Create(ctx context.Context, m *T) (*T, error) {
	b := domain.BaseOf(m)
	if b == nil {
		return nil, apperr.Internal("unsupported entity", nil)
	}
	*b = domain.Base{ID: utils.NewID()}
	if err := validate.Struct(m); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, storeErr(s.opts.Name, err)
	}
	s.changed(ctx, m)
	return m, nil
}

// Update merges a partial JSON document into the stored record.
func (s *Resource[T]) Update(ctx context.Context, id string, patch json.RawMessage) (*T, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	b := domain.BaseOf(m)
	keep := *b
	if err := json.Unmarshal(patch, m); err != nil {
		return nil, apperr.BadRequest("Invalid JSON body")
	}
	*b = keep
	if err := validate.Struct(m); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, storeErr(s.opts.Name, err)
	}
	s.changed(ctx, m)
	return m, nil
}

func (s *Resource[T]) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(s.opts.Name, err)
	}
	s.invalidate(ctx)
	if s.opts.Event != "" {
		s.notify.Broadcast(s.opts.Event, map[string]any{"id": id, "deleted": true})
	}
	return nil
}

func (s *Resource[T]) changed(ctx context.Context, m *T) {
	s.invalidate(ctx)
	if s.opts.Event != "" {
		s.notify.Broadcast(s.opts.Event, m)
	}
}

func (s *Resource[T]) invalidate(ctx context.Context) {
	if s.opts.CacheKey == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, s.opts.CacheKey); err != nil {
		s.log.Warn("cache invalidate failed", zap.String("key", s.opts.CacheKey), zap.Error(err))
	}
}
