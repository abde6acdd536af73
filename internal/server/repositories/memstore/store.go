// Package memstore holds the process-lifetime state behind the in-memory
// repositories. All collections share one lock so that cross-entity
// cascades (user and category deletion) are atomic.
package memstore

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/memoir/internal/server/models"
)

type Store struct {
	mu sync.RWMutex

	users         map[int64]*models.User
	categories    map[int64]*models.Category
	memories      map[int64]*models.Memory
	refreshTokens map[string]*models.RefreshToken

	nextUserID     int64
	nextCategoryID int64
	nextMemoryID   int64
	nextTokenID    int64

	now func() time.Time
}

// New returns an empty store seeded with the default categories.
func New() *Store {
	s := &Store{
		users:          make(map[int64]*models.User),
		categories:     make(map[int64]*models.Category),
		memories:       make(map[int64]*models.Memory),
		refreshTokens:  make(map[string]*models.RefreshToken),
		nextUserID:     1,
		nextCategoryID: 1,
		nextMemoryID:   1,
		nextTokenID:    1,
		now:            time.Now,
	}

	for _, c := range models.DefaultCategories {
		c := c
		c.ID = s.nextCategoryID
		c.CreatedAt = s.now()
		s.nextCategoryID++
		s.categories[c.ID] = &c
	}

	return s
}

// Read runs fn holding the shared lock.
func (s *Store) Read(fn func(tx *Tx)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&Tx{s: s})
}

// Write runs fn holding the exclusive lock.
func (s *Store) Write(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s})
}

// Tx exposes the raw collections to code already holding the lock.
type Tx struct {
	s *Store
}

func (t *Tx) Now() time.Time { return t.s.now() }

func (t *Tx) Users() map[int64]*models.User                  { return t.s.users }
func (t *Tx) Categories() map[int64]*models.Category         { return t.s.categories }
func (t *Tx) Memories() map[int64]*models.Memory             { return t.s.memories }
func (t *Tx) RefreshTokens() map[string]*models.RefreshToken { return t.s.refreshTokens }

func (t *Tx) NextUserID() int64 {
	id := t.s.nextUserID
	t.s.nextUserID++
	return id
}

func (t *Tx) NextCategoryID() int64 {
	id := t.s.nextCategoryID
	t.s.nextCategoryID++
	return id
}

func (t *Tx) NextMemoryID() int64 {
	id := t.s.nextMemoryID
	t.s.nextMemoryID++
	return id
}

func (t *Tx) NextTokenID() int64 {
	id := t.s.nextTokenID
	t.s.nextTokenID++
	return id
}

// ClearCategory removes the category reference from every memory pointing at
// categoryID and returns how many were touched.
func (t *Tx) ClearCategory(categoryID int64) int64 {
	var n int64
	now := t.Now()
	for _, m := range t.s.memories {
		if m.CategoryID != nil && *m.CategoryID == categoryID {
			m.CategoryID = nil
			m.UpdatedAt = now
			n++
		}
	}
	return n
}

// SetClock replaces the time source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
