package publishing

import (
	"fmt"
	"time"
)

// Entity names double as URL segments, mirror sub-directories and the
// logical table names used for slug resolution.
const (
	EntityPosts      = "posts"
	EntityCategories = "categories"
)

// ContentRecord is an editorial record (a post). The relational row is the
// source of truth; the file mirror is a projection of it.
type ContentRecord struct {
	ID             int64      `json:"id" db:"id"`
	Slug           string     `json:"slug" db:"slug"`
	Title          string     `json:"title" db:"title"`
	Body           string     `json:"body" db:"body"` // Markdown
	Excerpt        string     `json:"excerpt" db:"excerpt"`
	CategoryID     int64      `json:"category_id" db:"category_id"`
	AuthorID       string     `json:"author_id" db:"author_id"`
	Tags           []string   `json:"tags" db:"tags"`
	FeaturedImage  string     `json:"featured_image" db:"featured_image"` // Opaque URL from the upload handler
	IsPublished    bool       `json:"is_published" db:"is_published"`
	IsFeatured     bool       `json:"is_featured" db:"is_featured"`
	Views          int64      `json:"views" db:"views"`
	ReadingTime    int        `json:"reading_time" db:"reading_time"` // Minutes
	PublishedAt    *time.Time `json:"published_at,omitempty" db:"published_at"`
	MirrorSyncedAt *time.Time `json:"mirror_synced_at,omitempty" db:"mirror_synced_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	URL            string     `json:"url,omitempty"` // Computed, not stored in DB
}

// RecordURL derives the public URL of a record: /<entity>/<id>/<slug>.
func RecordURL(entity string, id int64, slug string) string {
	return fmt.Sprintf("/%s/%d/%s", entity, id, slug)
}

// MirrorStale reports whether the file mirror lags behind the row.
func (r *ContentRecord) MirrorStale() bool {
	return r.MirrorSyncedAt == nil || r.MirrorSyncedAt.Before(r.UpdatedAt)
}

// ContentFilter narrows ListContent results. Nil pointers mean "any".
type ContentFilter struct {
	CategoryID  *int64
	IsPublished *bool
	IsFeatured  *bool
	Tag         string
	Query       string // Case-insensitive match on title
	Limit       int
	Offset      int
}

// Default pagination values for ContentFilter
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ApplyDefaults fills in default values for unset fields
func (f *ContentFilter) ApplyDefaults() {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
