package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/bubelovv/sprint-planner/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const kvTable = "planner_kv"

// KV stores planner keys as jsonb rows of planner_kv, one row per
// (namespace, key).
type KV struct {
	pool      *pgxpool.Pool
	namespace string
	builder   squirrel.StatementBuilderType
}

func NewKV(pool *pgxpool.Pool, namespace string) *KV {
	if namespace == "" {
		namespace = storage.DefaultNamespace
	}
	return &KV{
		pool:      pool,
		namespace: namespace,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (s *KV) RunInTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %v (original err: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := s.selectQuery(key)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var value []byte
	err = s.pool.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (s *KV) Write(ctx context.Context, batch storage.Batch) error {
	if batch.Empty() {
		return nil
	}

	return s.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for key, value := range batch.Puts {
			query, args, err := s.upsertQuery(key, value)
			if err != nil {
				return fmt.Errorf("build upsert: %w", err)
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert %s: %w", key, err)
			}
		}

		if len(batch.Removes) == 0 {
			return nil
		}
		query, args, err := s.deleteQuery(batch.Removes)
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("delete keys: %w", err)
		}
		return nil
	})
}

func (s *KV) Clear(ctx context.Context) error {
	query, args, err := s.builder.
		Delete(kvTable).
		Where(squirrel.Eq{"namespace": s.namespace}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("clear namespace %s: %w", s.namespace, err)
	}
	return nil
}

func (s *KV) selectQuery(key string) (string, []any, error) {
	return s.builder.
		Select("value").
		From(kvTable).
		Where(squirrel.Eq{"namespace": s.namespace, "key": key}).
		ToSql()
}

func (s *KV) upsertQuery(key string, value []byte) (string, []any, error) {
	return s.builder.
		Insert(kvTable).
		Columns("namespace", "key", "value", "updated_at").
		Values(s.namespace, key, string(value), squirrel.Expr("now()")).
		Suffix("ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
}

func (s *KV) deleteQuery(keys []string) (string, []any, error) {
	return s.builder.
		Delete(kvTable).
		Where(squirrel.Eq{"namespace": s.namespace, "key": keys}).
		ToSql()
}
