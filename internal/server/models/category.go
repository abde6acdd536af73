package models

import "time"

// Category labels memories. Default categories are seeded by the system,
// have no owner and can be neither updated nor deleted.
type Category struct {
	ID          int64
	Name        string
	Description *string
	UserID      *int64
	IsDefault   bool
	CreatedAt   time.Time
}

// OwnedBy reports whether the category belongs to userID.
func (c *Category) OwnedBy(userID int64) bool {
	return c.UserID != nil && *c.UserID == userID
}

// CategoryPatch lists the category fields changed by a partial update.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// Apply merges p into c.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = p.Description
	}
}

// DefaultCategories are seeded at startup.
var DefaultCategories = []Category{
	{Name: "Travel", Description: ptr("Memories from your adventures around the world"), IsDefault: true},
	{Name: "Family", Description: ptr("Special moments with loved ones"), IsDefault: true},
	{Name: "Milestones", Description: ptr("Important life achievements and events"), IsDefault: true},
}

func ptr[T any](v T) *T { return &v }
