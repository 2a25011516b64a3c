// internal/bins/repository.go
package bins

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrBinNotFound is returned by read accessors for unknown bins.
	ErrBinNotFound = errors.New("bin not found")
	// ErrNoChange signals from an update function that nothing was mutated,
	// so no persistence write should happen.
	ErrNoChange = errors.New("no change")
)

// Store is the persistence collaborator: it loads and saves the whole bin
// collection.
type Store interface {
	Load(ctx context.Context) (Collection, error)
	Save(ctx context.Context, c Collection) error
}

// Repository owns the in-memory bin collection and its save lifecycle.
// Every mutation runs inside that bin's mutual-exclusion section: acquire,
// mutate in memory, snapshot, persist, release. Two operations on the same
// bin can therefore never interleave their read-mutate-write sequences.
// A save failure leaves the in-memory mutation applied but unsynced.
type Repository struct {
	store Store

	mu    sync.Mutex // guards data and locks
	data  Collection
	locks map[string]*sync.Mutex
}

// NewRepository creates a repository over the given store.
func NewRepository(store Store) *Repository {
	return &Repository{
		store: store,
		data:  Collection{},
		locks: map[string]*sync.Mutex{},
	}
}

// Load replaces the in-memory collection with the persisted one.
func (r *Repository) Load(ctx context.Context) error {
	c, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load bins: %w", err)
	}
	if c == nil {
		c = Collection{}
	}
	r.mu.Lock()
	r.data = c
	r.mu.Unlock()
	return nil
}

// Update runs fn against the (lazily created) bin under its lock, then
// persists a deep-copied snapshot of the whole collection. If fn returns
// ErrNoChange the mutation is treated as a no-op and nothing is written.
func (r *Repository) Update(ctx context.Context, binID string, fn func(*Bin) error) error {
	lock := r.binLock(binID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	bin, ok := r.data[binID]
	if !ok {
		bin = NewBin(binID)
		r.data[binID] = bin
	}
	err := fn(bin)
	if err != nil && !ok {
		// A bin created just for this update is discarded when the update
		// did not take.
		delete(r.data, binID)
	}
	var snapshot Collection
	if err == nil {
		snapshot = r.data.Clone()
	}
	r.mu.Unlock()

	if errors.Is(err, ErrNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, snapshot); err != nil {
		// The in-memory state is already mutated; it stays applied and
		// resyncs on the next successful save.
		return fmt.Errorf("persist bins: %w", err)
	}
	return nil
}

// Get returns a deep copy of one bin.
func (r *Repository) Get(binID string) (*Bin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bin, ok := r.data[binID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBinNotFound, binID)
	}
	return bin.Clone(), nil
}

// Snapshot returns a deep copy of the whole collection.
func (r *Repository) Snapshot() Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data.Clone()
}

func (r *Repository) binLock(binID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[binID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[binID] = lock
	}
	return lock
}
