// Package trending surfaces completed public debates worth reading:
// the vote-ranked trending feed and simple recommendations from the
// recently completed list.
package trending

import (
	"context"
	"sort"
	"strings"

	"github.com/rostra-dev/rostra/internal/api"
	"github.com/rostra-dev/rostra/internal/errors"
	"github.com/rostra-dev/rostra/internal/logging"
)

// DefaultPeriod is used when the caller does not name one.
const DefaultPeriod = "week"

// Periods are the accepted trending windows.
var Periods = []string{"day", "week", "month", "all"}

// Source is the slice of the API client the service needs.
type Source interface {
	Trending(ctx context.Context, period string) ([]api.TrendingDebate, error)
	CompletedDebates(ctx context.Context) ([]api.DebateListItem, error)
}

// Service fetches and normalizes trending data.
type Service struct {
	source Source
	log    *logging.Logger
}

// NewService creates a trending service backed by source.
func NewService(source Source, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Service{source: source, log: log.WithComponent("trending")}
}

// NormalizePeriod validates and canonicalizes a period string. Empty means
// the default.
func NormalizePeriod(period string) (string, error) {
	if period == "" {
		return DefaultPeriod, nil
	}
	p := strings.ToLower(strings.TrimSpace(period))
	for _, valid := range Periods {
		if p == valid {
			return p, nil
		}
	}
	return "", errors.NewValidationError("period must be one of " + strings.Join(Periods, ", ")).
		WithField("period").WithValue(period)
}

// Trending returns the ranked feed for period. Entries arrive ranked by
// the server; missing ranks are filled in locally from the scores so the
// rendering layer can rely on them.
func (s *Service) Trending(ctx context.Context, period string) ([]api.TrendingDebate, error) {
	normalized, err := NormalizePeriod(period)
	if err != nil {
		return nil, err
	}

	items, err := s.source.Trending(ctx, normalized)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch trending (%s)", normalized)
	}

	needsRanks := false
	for _, item := range items {
		if item.Rank == 0 {
			needsRanks = true
			break
		}
	}
	if needsRanks {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
		for i := range items {
			items[i].Rank = i + 1
		}
	}

	s.log.Debug("trending fetched", "period", normalized, "count", len(items))
	return items, nil
}

// Recommendations returns up to limit recently completed debates, newest
// first. A non-positive limit means no cap.
func (s *Service) Recommendations(ctx context.Context, limit int) ([]api.DebateListItem, error) {
	items, err := s.source.CompletedDebates(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch completed debates")
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
