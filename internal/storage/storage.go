// Package storage defines the key/value contract behind the planner
// repository. Adapters live in the sub-packages.
package storage

import (
	"context"
	"errors"
)

// DefaultNamespace scopes planner keys when no namespace is configured.
const DefaultNamespace = "sprint-planner"

var ErrNotFound = errors.New("key not found")

// Batch is applied atomically: either every put and remove lands or none.
type Batch struct {
	Puts    map[string][]byte
	Removes []string
}

func (b Batch) Empty() bool {
	return len(b.Puts) == 0 && len(b.Removes) == 0
}

// Storage is a namespaced key/value store. Values are JSON documents.
type Storage interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, batch Batch) error
	// Clear removes every key of the namespace.
	Clear(ctx context.Context) error
}
