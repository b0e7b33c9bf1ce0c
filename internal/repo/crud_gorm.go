package repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resident-portal/internal/domain"
)

var columnRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Gorm is the generic gorm-backed domain.Repository.
type Gorm[T any] struct{ db *gorm.DB }

func NewGorm[T any](db *gorm.DB) *Gorm[T] { return &Gorm[T]{db: db} }

func (r *Gorm[T]) List(ctx context.Context, q domain.ListQuery) ([]T, int64, error) {
	tx := r.db.WithContext(ctx).Model(new(T))
	for col, val := range q.Filters {
		if !columnRe.MatchString(col) {
			return nil, 0, fmt.Errorf("invalid filter column %q", col)
		}
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: col}, Value: val})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, desc, err := parseOrder(q.Order)
	if err != nil {
		return nil, 0, err
	}
	tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc})
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	var items []T
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Gorm[T]) Get(ctx context.Context, id string) (*T, error) {
	var m T
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Gorm[T]) Create(ctx context.Context, m *T) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *Gorm[T]) Save(ctx context.Context, m *T) error {
	return translate(r.db.WithContext(ctx).Save(m).Error)
}

func (r *Gorm[T]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Gorm[T]) Search(ctx context.Context, term string, columns []string, limit int) ([]T, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || len(columns) == 0 {
		return nil, nil
	}
	like := "%" + escapeLike(term) + "%"
	conds := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		if !columnRe.MatchString(col) {
			return nil, fmt.Errorf("invalid search column %q", col)
		}
		conds = append(conds, "LOWER("+col+") LIKE ? ESCAPE '!'")
		args = append(args, like)
	}
	tx := r.db.WithContext(ctx).Model(new(T)).Where(strings.Join(conds, " OR "), args...).Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var items []T
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func parseOrder(order string) (string, bool, error) {
	order = strings.TrimSpace(order)
	if order == "" {
		return "created_at", true, nil
	}
	parts := strings.Fields(order)
	col := strings.ToLower(parts[0])
	if !columnRe.MatchString(col) {
		return "", false, fmt.Errorf("invalid order column %q", parts[0])
	}
	desc := len(parts) > 1 && strings.EqualFold(parts[1], "DESC")
	return col, desc, nil
}

// escapeLike makes % and _ literal under ESCAPE '!'.
func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDupKey(err) {
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	}
	return err
}

func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
