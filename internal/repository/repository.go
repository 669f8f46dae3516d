package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bubelovv/sprint-planner/internal/domain"
	"github.com/bubelovv/sprint-planner/internal/storage"
	"go.uber.org/zap"
)

// Keys of the separately stored snapshot fields.
const (
	KeyTeamName         = "team-name"
	KeyTeamMembers      = "team-members"
	KeyReleases         = "releases"
	KeySprints          = "sprints"
	KeyCurrentReleaseID = "current-release-id"
	KeyCurrentSprintID  = "current-sprint-id"
)

// Repository maps planner snapshots onto a key/value Storage, one key per
// top-level field.
type Repository struct {
	storage storage.Storage
	logger  *zap.Logger
}

func New(s storage.Storage, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{storage: s, logger: logger}
}

// LoadAll reads every field. Missing keys keep their empty defaults and a
// value that does not decode is logged and treated as missing. If the
// storage itself fails, the empty default is returned with the error.
func (r *Repository) LoadAll(ctx context.Context) (domain.State, error) {
	state := domain.EmptyState()

	fields := []struct {
		key    string
		decode func([]byte) error
	}{
		{KeyTeamName, decodeInto(&state.TeamName)},
		{KeyTeamMembers, decodeInto(&state.Team)},
		{KeyReleases, decodeInto(&state.Releases)},
		{KeySprints, decodeInto(&state.Sprints)},
		{KeyCurrentReleaseID, decodeInto(&state.CurrentReleaseID)},
		{KeyCurrentSprintID, decodeInto(&state.CurrentSprintID)},
	}

	for _, f := range fields {
		data, err := r.storage.Get(ctx, f.key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.EmptyState(), fmt.Errorf("load %s: %w", f.key, err)
		}
		if err := f.decode(data); err != nil {
			r.logger.Warn("ignoring unreadable stored value",
				zap.String("key", f.key),
				zap.Error(err),
			)
		}
	}

	state.Normalize()
	return state, nil
}

// SaveAll writes every field in one batch. An empty selection removes its
// key.
func (r *Repository) SaveAll(ctx context.Context, state domain.State) error {
	state = state.Clone()
	state.Normalize()

	batch := storage.Batch{Puts: make(map[string][]byte, 6)}
	put := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		batch.Puts[key] = data
		return nil
	}

	if err := put(KeyTeamName, state.TeamName); err != nil {
		return err
	}
	if err := put(KeyTeamMembers, state.Team); err != nil {
		return err
	}
	if err := put(KeyReleases, state.Releases); err != nil {
		return err
	}
	if err := put(KeySprints, state.Sprints); err != nil {
		return err
	}

	for key, id := range map[string]string{
		KeyCurrentReleaseID: state.CurrentReleaseID,
		KeyCurrentSprintID:  state.CurrentSprintID,
	} {
		if id == "" {
			batch.Removes = append(batch.Removes, key)
			continue
		}
		if err := put(key, id); err != nil {
			return err
		}
	}

	if err := r.storage.Write(ctx, batch); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// ClearAll removes every stored field.
func (r *Repository) ClearAll(ctx context.Context) error {
	if err := r.storage.Clear(ctx); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// decodeInto decodes into a scratch value first so a bad document leaves the
// default in place.
func decodeInto[T any](target *T) func([]byte) error {
	return func(data []byte) error {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*target = v
		return nil
	}
}
