package publishing

// Role is the editorial role of the authenticated principal.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleAuthor:
		return true
	}
	return false
}

// CanPublish reports whether the role may set is_published.
func (r Role) CanPublish() bool {
	return r == RoleAdmin || r == RoleEditor
}

// Principal is the already-authenticated caller handed to the engine.
type Principal struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// PublishStatus is the target of a bulk status change.
type PublishStatus string

const (
	StatusPublished PublishStatus = "published"
	StatusDraft     PublishStatus = "draft"
)
