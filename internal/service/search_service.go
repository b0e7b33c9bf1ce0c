package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"resident-portal/internal/domain"
)

const searchPerType = 5

type SearchHit struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

type searcher func(ctx context.Context, term string) ([]SearchHit, error)

// SearchService runs one substring query per entity type concurrently and
// concatenates the results in a fixed type order.
type SearchService struct {
	sources []searcher
	log     *zap.Logger
}

type SearchRepos struct {
	Profiles domain.Repository[domain.Profile]
	Messages domain.Repository[domain.Message]
	Sites    domain.Repository[domain.Site]
	Modules  domain.Repository[domain.Module]
	Subjects domain.Repository[domain.Subject]
	Files    domain.Repository[domain.File]
	Events   domain.Repository[domain.LeisureEvent]
}

func NewSearchService(r SearchRepos, l *zap.Logger) *SearchService {
	return &SearchService{log: l, sources: []searcher{
		source(r.Profiles, "profile", []string{"first_name", "last_name", "email", "hospital"}, func(p *domain.Profile) (string, string) {
			return p.FullName(), p.Email
		}),
		source(r.Messages, "message", []string{"subject", "content"}, func(m *domain.Message) (string, string) {
			return m.Subject, m.SenderName
		}),
		source(r.Sites, "site", []string{"name", "city", "specialty"}, func(s *domain.Site) (string, string) {
			return s.Name, s.City
		}),
		source(r.Modules, "module", []string{"name", "description"}, func(m *domain.Module) (string, string) {
			return m.Name, ""
		}),
		source(r.Subjects, "subject", []string{"name", "description"}, func(s *domain.Subject) (string, string) {
			return s.Name, ""
		}),
		source(r.Files, "file", []string{"name"}, func(f *domain.File) (string, string) {
			return f.Name, f.MimeType
		}),
		source(r.Events, "event", []string{"title", "location"}, func(e *domain.LeisureEvent) (string, string) {
			return e.Title, e.Location
		}),
	}}
}

func source[T any](repo domain.Repository[T], typ string, cols []string, label func(*T) (string, string)) searcher {
	return func(ctx context.Context, term string) ([]SearchHit, error) {
		items, err := repo.Search(ctx, term, cols, searchPerType)
		if err != nil {
			return nil, err
		}
		hits := make([]SearchHit, 0, len(items))
		for i := range items {
			title, sub := label(&items[i])
			hits = append(hits, SearchHit{Type: typ, ID: domain.BaseOf(&items[i]).ID, Title: title, Subtitle: sub})
		}
		return hits, nil
	}
}

// Search returns no hits for terms shorter than two characters.
func (s *SearchService) Search(ctx context.Context, q string) ([]SearchHit, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < 2 {
		return []SearchHit{}, nil
	}
	results := make([][]SearchHit, len(s.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			hits, err := src(gctx, q)
			if err != nil {
				return err
			}
			results[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeErr("Search", err)
	}
	out := []SearchHit{}
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
