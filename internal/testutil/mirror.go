package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	models "newsdesk/internal/domain/models/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"
)

// FakeMirror is an in-memory MirrorSynchronizer. It records the mirrored
// state per id and can be told to fail for chosen ids.
type FakeMirror struct {
	write sync.Mutex // serializes writes like the per-id lock of the real mirror

	mu          sync.Mutex
	mirrored    map[int64]models.ContentRecord
	failing     map[int64]bool
	syncs       int
	removes     int
	beforeCheck func(id int64)
}

// NewFakeMirror creates an empty fake mirror
func NewFakeMirror() *FakeMirror {
	return &FakeMirror{
		mirrored: map[int64]models.ContentRecord{},
		failing:  map[int64]bool{},
	}
}

// FailFor makes every Sync and Remove of id fail
func (m *FakeMirror) FailFor(ids ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.failing[id] = true
	}
}

// Put marks id as mirrored without going through Sync
func (m *FakeMirror) Put(rec models.ContentRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mirrored[rec.ID] = rec
}

// BeforeRemoveCheck registers fn to run inside RemoveUnless, after the
// write lock is taken and before the keep check
func (m *FakeMirror) BeforeRemoveCheck(fn func(id int64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforeCheck = fn
}

func (m *FakeMirror) Sync(ctx context.Context, rec *models.ContentRecord) error {
	return m.SyncWith(ctx, rec, nil)
}

func (m *FakeMirror) SyncWith(ctx context.Context, rec *models.ContentRecord, after pubSvc.AfterWrite) error {
	m.write.Lock()
	defer m.write.Unlock()

	if err := m.apply(rec); err != nil {
		return err
	}
	if after != nil {
		return after(ctx)
	}
	return nil
}

func (m *FakeMirror) apply(rec *models.ContentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs++
	if m.failing[rec.ID] {
		return fmt.Errorf("sync mirror %d: injected failure", rec.ID)
	}
	if !rec.IsPublished {
		delete(m.mirrored, rec.ID)
		return nil
	}
	m.mirrored[rec.ID] = *rec
	return nil
}

func (m *FakeMirror) Remove(ctx context.Context, id int64) error {
	m.write.Lock()
	defer m.write.Unlock()
	return m.drop(id)
}

func (m *FakeMirror) RemoveUnless(ctx context.Context, id int64, keep pubSvc.KeepCheck) (bool, error) {
	m.write.Lock()
	defer m.write.Unlock()

	m.mu.Lock()
	hook := m.beforeCheck
	m.mu.Unlock()
	if hook != nil {
		hook(id)
	}

	kept, err := keep(ctx)
	if err != nil {
		return false, err
	}
	if kept {
		return false, nil
	}
	if err := m.drop(id); err != nil {
		return false, err
	}
	return true, nil
}

func (m *FakeMirror) drop(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes++
	if m.failing[id] {
		return fmt.Errorf("remove mirror %d: injected failure", id)
	}
	delete(m.mirrored, id)
	return nil
}

func (m *FakeMirror) MirroredIDs(ctx context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.mirrored))
	for id := range m.mirrored {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Has reports whether id is mirrored
func (m *FakeMirror) Has(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.mirrored[id]
	return ok
}

// Get returns the mirrored snapshot of id
func (m *FakeMirror) Get(id int64) (models.ContentRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.mirrored[id]
	return rec, ok
}

// Calls returns how many Sync and Remove calls were made
func (m *FakeMirror) Calls() (syncs, removes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncs, m.removes
}
