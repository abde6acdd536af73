package models

import "time"

// Visibility controls who may read a memory.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is one of the known visibilities.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Memory is a journal entry.
type Memory struct {
	ID         int64
	Title      string
	Content    string
	ImageURL   *string
	UserID     int64
	CategoryID *int64
	Visibility Visibility
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPublic reports whether anyone may read the memory.
func (m *Memory) IsPublic() bool {
	return m.Visibility == VisibilityPublic
}

// MemoryPatch lists the memory fields changed by a partial update.
// CategoryID and ImageURL use a double pointer so that a patch can clear them.
type MemoryPatch struct {
	Title      *string
	Content    *string
	ImageURL   **string
	CategoryID **int64
	Visibility *Visibility
}

// Apply merges p into m. UpdatedAt is left to the caller.
func (p MemoryPatch) Apply(m *Memory) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.ImageURL != nil {
		m.ImageURL = *p.ImageURL
	}
	if p.CategoryID != nil {
		m.CategoryID = *p.CategoryID
	}
	if p.Visibility != nil {
		m.Visibility = *p.Visibility
	}
}

// MemoryFilter narrows a listing of one user's memories.
type MemoryFilter struct {
	CategoryID *int64
	Since      *time.Time
}

// Matches reports whether m passes the filter.
func (f MemoryFilter) Matches(m *Memory) bool {
	if f.CategoryID != nil && (m.CategoryID == nil || *m.CategoryID != *f.CategoryID) {
		return false
	}
	if f.Since != nil && m.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}
