// Package store holds the planner snapshot in memory and exposes every
// mutation the application performs on it.
//
// Each mutation clones the current snapshot, transforms the clone and
// commits it in one step while holding the writer lock, so readers never
// observe a half-applied change. Mutations whose target (sprint, member,
// release, ticket) does not exist leave the snapshot untouched and report
// false instead of failing.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/bubelovv/sprint-planner/internal/domain"
	"go.uber.org/zap"
)

// Gateway is the persistence contract used to hydrate and save snapshots.
type Gateway interface {
	// LoadAll returns the saved snapshot or the empty default when nothing was
	// saved. On a storage failure it returns the empty default and the error.
	LoadAll(ctx context.Context) (domain.State, error)
	SaveAll(ctx context.Context, state domain.State) error
}

// Listener receives a private copy of every committed snapshot. Listeners
// must not call mutating Store methods.
type Listener func(domain.State)

type Store struct {
	gateway Gateway
	logger  *zap.Logger
	newID   func() string

	writeMu sync.Mutex

	mu    sync.RWMutex
	state domain.State
	ready bool

	hydrateOnce sync.Once

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

type Option func(*Store)

// WithIDGenerator replaces domain.NewID for generated entity ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

func New(gateway Gateway, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		gateway:   gateway,
		logger:    logger,
		newID:     domain.NewID,
		state:     domain.EmptyState(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate loads the persisted snapshot once. Later calls do nothing. A load
// failure is logged and returned, and the store still becomes ready with the
// empty default so the session can continue.
func (s *Store) Hydrate(ctx context.Context) error {
	var err error
	s.hydrateOnce.Do(func() {
		state := domain.EmptyState()
		if s.gateway != nil {
			loaded, loadErr := s.gateway.LoadAll(ctx)
			if loadErr != nil {
				s.logger.Error("hydrate failed, starting from empty state", zap.Error(loadErr))
				err = loadErr
			} else {
				state = loaded
			}
		}
		state.Normalize()

		s.writeMu.Lock()
		s.mu.Lock()
		s.state = state
		s.ready = true
		s.mu.Unlock()
		s.writeMu.Unlock()

		s.logger.Info("store hydrated",
			zap.Int("team_members", len(state.Team)),
			zap.Int("releases", len(state.Releases)),
			zap.Int("sprints", len(state.Sprints)),
		)
	})
	return err
}

// Ready reports whether hydration has completed.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Subscribe registers fn for committed snapshots and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// ReplaceState swaps in a whole snapshot, e.g. from an import.
func (s *Store) ReplaceState(state domain.State) bool {
	next := state.Clone()
	next.Normalize()
	return s.update("replace_state", func(st *domain.State) bool {
		*st = next
		return true
	})
}

func (s *Store) Team() []domain.TeamMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TeamMember{}, s.state.Team...)
}

func (s *Store) Release(id string) (domain.Release, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.Releases[id]
	return r.Clone(), ok
}

// Releases lists releases ordered by start date, then name.
func (s *Store) Releases() []domain.Release {
	s.mu.RLock()
	list := make([]domain.Release, 0, len(s.state.Releases))
	for _, r := range s.state.Releases {
		list = append(list, r.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].StartDate != list[j].StartDate {
			return list[i].StartDate < list[j].StartDate
		}
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (s *Store) Sprint(id string) (domain.Sprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.state.Sprints[id]
	return sp.Clone(), ok
}

// ReleaseSprints resolves the release's sprints in order, dropping ids that
// no longer resolve.
func (s *Store) ReleaseSprints(releaseID string) []domain.Sprint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resolved := s.state.ReleaseSprints(releaseID)
	for i := range resolved {
		resolved[i] = resolved[i].Clone()
	}
	return resolved
}

func (s *Store) CurrentRelease() (domain.Release, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return currentRelease(s.state)
}

// CurrentSprint returns the selected sprint only when it exists and is listed
// by the current release; any other selection reads as unset.
func (s *Store) CurrentSprint() (domain.Sprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	release, ok := currentRelease(s.state)
	if !ok || !release.HasSprint(s.state.CurrentSprintID) {
		return domain.Sprint{}, false
	}
	sp, ok := s.state.Sprints[s.state.CurrentSprintID]
	if !ok {
		return domain.Sprint{}, false
	}
	return sp.Clone(), true
}

func currentRelease(st domain.State) (domain.Release, bool) {
	if st.CurrentReleaseID == "" {
		return domain.Release{}, false
	}
	r, ok := st.Releases[st.CurrentReleaseID]
	if !ok {
		return domain.Release{}, false
	}
	return r.Clone(), true
}

// update runs fn against a private clone of the state and commits the clone
// when fn reports a change. Listeners are notified in commit order.
func (s *Store) update(op string, fn func(st *domain.State) bool) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	ready := s.ready
	next := s.state.Clone()
	s.mu.RUnlock()

	if !ready {
		s.logger.Warn("mutation rejected before hydration", zap.String("op", op))
		return false
	}
	if !fn(&next) {
		s.logger.Debug("mutation left state unchanged", zap.String("op", op))
		return false
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	s.notify(next)
	return true
}

// updateSprint is update scoped to one sprint; unknown sprint ids are a no-op.
func (s *Store) updateSprint(op, sprintID string, fn func(sp *domain.Sprint) bool) bool {
	return s.update(op, func(st *domain.State) bool {
		sprint, ok := st.Sprints[sprintID]
		if !ok {
			return false
		}
		if !fn(&sprint) {
			return false
		}
		st.Sprints[sprintID] = sprint
		return true
	})
}

func (s *Store) notify(state domain.State) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(state.Clone())
	}
}
