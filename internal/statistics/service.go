package statistics

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/store"
)

type SessionStore interface {
	Store(ctx context.Context, ownerID string) (*store.Store, error)
}

// Service computes statistics over the owner's session store.
type Service struct {
	sessions SessionStore
	logger   *slog.Logger
	today    func() calendar.Date
}

func NewService(sessions SessionStore, logger *slog.Logger) *Service {
	return &Service{
		sessions: sessions,
		logger:   logger,
		today:    func() calendar.Date { return calendar.Today(time.Local) },
	}
}

func (s *Service) WithClock(today func() calendar.Date) *Service {
	s.today = today
	return s
}

func (s *Service) Today() calendar.Date {
	return s.today()
}

func (s *Service) snapshot(ctx context.Context, ownerID string) (store.Snapshot, error) {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return store.Snapshot{}, err
	}
	return st.Snapshot(), nil
}

func (s *Service) Overview(ctx context.Context, ownerID string, month calendar.Month) (Overview, error) {
	snap, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return Overview{}, err
	}
	return BuildOverview(snap.Transactions, snap.Categories, month, s.today()), nil
}

func (s *Service) Summary(ctx context.Context, ownerID string, period calendar.Range) (Totals, error) {
	snap, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return Totals{}, err
	}
	return Summarize(snap.Transactions, period), nil
}

func (s *Service) Breakdown(ctx context.Context, ownerID string, kind finance.TransactionType, period calendar.Range) (Breakdown, error) {
	snap, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return Breakdown{}, err
	}
	return CategoryBreakdown(snap.Transactions, finance.IndexCategories(snap.Categories), kind, period), nil
}

func (s *Service) Trend(ctx context.Context, ownerID string, months []calendar.Month) ([]TrendPoint, error) {
	snap, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return MonthlyTrend(snap.Transactions, months), nil
}

func (s *Service) DailyAverage(ctx context.Context, ownerID string, month calendar.Month) (Pace, error) {
	snap, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return Pace{}, err
	}
	return DailyAverage(snap.Transactions, month.Range(), s.today()), nil
}
