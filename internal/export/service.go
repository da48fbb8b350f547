package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/store"
	"github.com/frahmantamala/personal-finance/internal/transaction"
)

type SessionStore interface {
	Store(ctx context.Context, ownerID string) (*store.Store, error)
}

// Request selects what goes into an export. Zero Start and End default to
// the first of the current month and today.
type Request struct {
	Format     Format
	Start      calendar.Date
	End        calendar.Date
	Type       *finance.TransactionType
	CategoryID *string
}

// Document is an encoded export ready to be sent.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

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

func (s *Service) Export(ctx context.Context, ownerID string, req Request) (*Document, error) {
	if !req.Format.Valid() {
		return nil, errors.NewValidationFieldError("format", "format must be xlsx or csv", errors.ErrCodeValidationFailed)
	}
	today := s.today()
	if req.Start.IsZero() {
		req.Start = today.MonthKey().First()
	}
	if req.End.IsZero() {
		req.End = today
	}
	if req.Start.After(req.End) {
		return nil, errors.NewValidationFieldError("start", "start must not be after end", errors.ErrCodeInvalidDate)
	}

	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	snap := st.Snapshot()
	categories := finance.IndexCategories(snap.Categories)

	filter := transaction.Filter{
		Dates:      transaction.Between(req.Start, req.End),
		Type:       req.Type,
		CategoryID: req.CategoryID,
	}
	selected := transaction.Apply(snap.Transactions, filter, categories, today)
	if len(selected) == 0 {
		return nil, errors.ErrNoExportData
	}

	report := Build(selected, categories, calendar.NewRange(req.Start, req.End))
	body, err := report.Bytes(req.Format)
	if err != nil {
		return nil, fmt.Errorf("encode %s export: %w", req.Format, err)
	}

	s.logger.Info("export generated", "owner_id", ownerID, "format", req.Format, "rows", len(selected))
	return &Document{
		Filename:    filename(req),
		ContentType: req.Format.ContentType(),
		Body:        body,
		Rows:        len(selected),
	}, nil
}

func filename(req Request) string {
	kind := "all"
	if req.Type != nil {
		kind = string(*req.Type)
	}
	return fmt.Sprintf("transactions_%s_%s_%s.%s", kind, req.Start, req.End, req.Format)
}
