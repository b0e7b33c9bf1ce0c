package domain

import (
	"context"
	"errors"
	"time"
)

// Repository-level sentinel errors; services translate them into apperr kinds.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate entry")
)

// Base carries the columns every table shares.
type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (b *Base) base() *Base { return b }

type entity interface{ base() *Base }

// BaseOf returns the embedded Base of a domain entity pointer, or nil.
func BaseOf(m any) *Base {
	if e, ok := m.(entity); ok {
		return e.base()
	}
	return nil
}

// ListQuery narrows a List call. Filters are column → value equality matches.
type ListQuery struct {
	Filters map[string]any
	Order   string // "<column> ASC|DESC"; empty means "created_at DESC"
	Offset  int
	Limit   int // <= 0 means no limit
}

// Repository is the persistence contract shared by every entity.
type Repository[T any] interface {
	List(ctx context.Context, q ListQuery) ([]T, int64, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, m *T) error
	Save(ctx context.Context, m *T) error
	Delete(ctx context.Context, id string) error
	// Search matches term case-insensitively as a substring of any column.
	Search(ctx context.Context, term string, columns []string, limit int) ([]T, error)
}

// Pinger reports store liveness for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}
