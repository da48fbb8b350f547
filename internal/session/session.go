// Package session keeps one store per signed-in owner and refreshes it from
// the repositories.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/budget"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/store"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// maxLoadAttempts bounds how often a load is retried after being overtaken
// by a local write or a sign-out.
const maxLoadAttempts = 3

type UserSource interface {
	GetByID(ctx context.Context, id string) (*finance.User, error)
}

type CategorySource interface {
	ListVisible(ctx context.Context, ownerID string) ([]finance.Category, error)
}

type TransactionSource interface {
	ListByOwner(ctx context.Context, ownerID string) ([]finance.Transaction, error)
}

type BudgetSource interface {
	ListByOwner(ctx context.Context, ownerID string) ([]finance.Budget, error)
}

type Sources struct {
	Users        UserSource
	Categories   CategorySource
	Transactions TransactionSource
	Budgets      BudgetSource
}

type entry struct {
	store      *store.Store
	dismissals *budget.Dismissals
}

type Manager struct {
	sources Sources
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
	loads    singleflight.Group
}

func NewManager(sources Sources, logger *slog.Logger) *Manager {
	return &Manager{
		sources:  sources,
		logger:   logger,
		sessions: make(map[string]*entry),
	}
}

func (m *Manager) entry(ownerID string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[ownerID]
	if !ok {
		e = &entry{store: store.New(), dismissals: budget.NewDismissals()}
		m.sessions[ownerID] = e
	}
	return e
}

// Store returns the owner's store, loading it on first use. Concurrent
// first requests share one load and all see the loaded store.
func (m *Manager) Store(ctx context.Context, ownerID string) (*store.Store, error) {
	for attempt := 0; attempt < maxLoadAttempts; attempt++ {
		e := m.entry(ownerID)
		if e.store.Loaded() {
			return e.store, nil
		}
		err := m.share(ctx, ownerID, func(ctx context.Context) error {
			if m.entry(ownerID).store.Loaded() {
				return nil
			}
			return m.reload(ctx, ownerID)
		})
		if err != nil {
			return nil, err
		}
	}
	m.logger.Error("session did not settle", "owner_id", ownerID)
	return nil, internal.NewInternalError(internal.GenericErrorMessage,
		fmt.Errorf("session of %s did not settle after %d loads", ownerID, maxLoadAttempts))
}

// Dismissals returns the owner's dismissed alerts for this session.
func (m *Manager) Dismissals(ownerID string) *budget.Dismissals {
	return m.entry(ownerID).dismissals
}

// Reload fetches every collection of the owner and replaces the store
// contents. Concurrent reloads of one owner are collapsed into one.
func (m *Manager) Reload(ctx context.Context, ownerID string) error {
	return m.share(ctx, ownerID, func(ctx context.Context) error {
		return m.reload(ctx, ownerID)
	})
}

// share runs load once per owner at a time; callers arriving meanwhile wait
// for its result. The load outlives the context of the caller that started it.
func (m *Manager) share(ctx context.Context, ownerID string, load func(context.Context) error) error {
	detached := context.WithoutCancel(ctx)
	ch := m.loads.DoChan(ownerID, func() (interface{}, error) {
		return nil, load(detached)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// reload fetches again when a local write lands during the fetch. It gives
// up once the session has ended.
func (m *Manager) reload(ctx context.Context, ownerID string) error {
	for attempt := 0; attempt < maxLoadAttempts; attempt++ {
		e := m.entry(ownerID)
		st := e.store
		ticket := st.Begin()

		snap, err := m.fetch(ctx, ownerID)
		if err != nil {
			st.Abort(ticket)
			m.logger.Error("session reload failed", "owner_id", ownerID, "error", err)
			return err
		}

		if st.ApplyIf(ticket, snap) {
			m.logger.Info("session reloaded",
				"owner_id", ownerID,
				"transactions", len(snap.Transactions),
				"categories", len(snap.Categories),
				"budgets", len(snap.Budgets))
			return nil
		}
		st.Abort(ticket)

		if !m.holds(ownerID, e) {
			m.logger.Debug("discarding reload of ended session", "owner_id", ownerID)
			return nil
		}
		m.logger.Debug("reload overtaken by a local write, fetching again", "owner_id", ownerID)
	}
	return nil
}

func (m *Manager) holds(ownerID string, e *entry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[ownerID] == e
}

func (m *Manager) fetch(ctx context.Context, ownerID string) (store.Snapshot, error) {
	var snap store.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := m.sources.Users.GetByID(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		snap.User = u
		return nil
	})
	g.Go(func() error {
		categories, err := m.sources.Categories.ListVisible(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		snap.Categories = categories
		return nil
	})
	g.Go(func() error {
		txs, err := m.sources.Transactions.ListByOwner(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		budgets, err := m.sources.Budgets.ListByOwner(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		snap.Budgets = budgets
		return nil
	})
	if err := g.Wait(); err != nil {
		return store.Snapshot{}, err
	}
	return snap, nil
}

// End resets and forgets the owner's session.
func (m *Manager) End(ownerID string) {
	m.mu.Lock()
	e, ok := m.sessions[ownerID]
	delete(m.sessions, ownerID)
	m.mu.Unlock()

	if ok {
		e.store.Reset()
		e.dismissals.Clear()
		m.logger.Info("session ended", "owner_id", ownerID)
	}
}

// Active reports how many owners currently hold a session.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
