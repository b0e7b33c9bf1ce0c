package service

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"resident-portal/internal/domain"
)

type Stats struct {
	Profiles      map[domain.Status]int64 `json:"profiles"`
	Admins        int64                   `json:"admins"`
	Messages      int64                   `json:"messages"`
	Events        int64                   `json:"events"`
	Contributions ContributionTotals      `json:"contributions"`
}

type ContributionTotals struct {
	Count   int64           `json:"count"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
	Total   decimal.Decimal `json:"total"`
}

type StatsService struct {
	profiles      domain.Repository[domain.Profile]
	messages      domain.Repository[domain.Message]
	events        domain.Repository[domain.LeisureEvent]
	contributions domain.Repository[domain.Contribution]
}

func NewStatsService(profiles domain.Repository[domain.Profile], messages domain.Repository[domain.Message], events domain.Repository[domain.LeisureEvent], contributions domain.Repository[domain.Contribution]) *StatsService {
	return &StatsService{profiles: profiles, messages: messages, events: events, contributions: contributions}
}

func count[T any](ctx context.Context, r domain.Repository[T], filters map[string]any) (int64, error) {
	_, total, err := r.List(ctx, domain.ListQuery{Filters: filters, Limit: 1})
	return total, err
}

// Overview gathers the admin dashboard figures. Ledger sums stay exact.
func (s *StatsService) Overview(ctx context.Context) (*Stats, error) {
	st := &Stats{Profiles: map[domain.Status]int64{}}
	statuses := []domain.Status{domain.StatusPending, domain.StatusApproved, domain.StatusRejected}
	byStatus := make([]int64, len(statuses))

	g, ctx := errgroup.WithContext(ctx)
	for i, status := range statuses {
		g.Go(func() (err error) {
			byStatus[i], err = count(ctx, s.profiles, map[string]any{"status": status})
			return err
		})
	}
	g.Go(func() (err error) {
		st.Admins, err = count(ctx, s.profiles, map[string]any{"role": domain.RoleAdmin})
		return err
	})
	g.Go(func() (err error) {
		st.Messages, err = count(ctx, s.messages, nil)
		return err
	})
	g.Go(func() (err error) {
		st.Events, err = count(ctx, s.events, nil)
		return err
	})
	g.Go(func() error {
		items, total, err := s.contributions.List(ctx, domain.ListQuery{})
		if err != nil {
			return err
		}
		t := ContributionTotals{Count: total, Paid: decimal.Zero, Pending: decimal.Zero}
		for _, c := range items {
			if c.Status == domain.ContributionPaid {
				t.Paid = t.Paid.Add(c.Amount)
			} else {
				t.Pending = t.Pending.Add(c.Amount)
			}
		}
		t.Total = t.Paid.Add(t.Pending)
		st.Contributions = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr("Stats", err)
	}
	for i, status := range statuses {
		st.Profiles[status] = byStatus[i]
	}
	return st, nil
}
