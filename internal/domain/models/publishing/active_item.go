package publishing

import (
	"time"
)

// ActiveKind names a collection of active-flagged items.
type ActiveKind string

const (
	// ActiveKindBreakingNews allows at most one active row.
	ActiveKindBreakingNews ActiveKind = "breaking-news"

	// ActiveKindLastNews allows many active rows; reads return the top N.
	ActiveKindLastNews ActiveKind = "last-news"
)

// MaxActiveListSize caps reads of list-policy collections.
const MaxActiveListSize = 5

// ActivePolicy describes how a collection treats the is_active flag.
type ActivePolicy struct {
	// Exclusive collections clear every other row when one is activated.
	Exclusive bool

	// ReadLimit is the maximum number of rows "current" reads return.
	ReadLimit int
}

// PolicyFor returns the active-set policy of a kind.
func PolicyFor(kind ActiveKind) (ActivePolicy, bool) {
	switch kind {
	case ActiveKindBreakingNews:
		return ActivePolicy{Exclusive: true, ReadLimit: 1}, true
	case ActiveKindLastNews:
		return ActivePolicy{Exclusive: false, ReadLimit: MaxActiveListSize}, true
	default:
		return ActivePolicy{}, false
	}
}

// ActiveItem is a breaking-news or last-news entry.
type ActiveItem struct {
	ID        int64      `json:"id" db:"id"`
	Kind      ActiveKind `json:"kind"`
	Title     string     `json:"title" db:"title"`
	Body      string     `json:"body" db:"body"`
	Priority  int        `json:"priority" db:"priority"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// LiveAt reports whether the item counts as active for reads at now.
// Expiry never mutates is_active.
func (i *ActiveItem) LiveAt(now time.Time) bool {
	return i.IsActive && (i.ExpiresAt == nil || i.ExpiresAt.After(now))
}
