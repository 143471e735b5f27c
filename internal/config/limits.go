package config

const (
	// MaxTitleLength is the maximum length for post and breaking-news titles.
	MaxTitleLength = 255

	// MaxCategoryNameLength is the maximum length for category names.
	MaxCategoryNameLength = 100

	// MaxExcerptLength bounds the summary shown in listings.
	MaxExcerptLength = 1000

	// MaxTags is the maximum number of tags on one post.
	MaxTags = 20

	// MaxTagLength is the maximum length of a single tag.
	MaxTagLength = 50

	// MaxBodyLength bounds markdown bodies, in characters. Request bodies
	// are capped separately by httputil.ParseJSON.
	MaxBodyLength = 5 << 20

	// StaleMirrorBatchSize is how many stale records one reconcile pass re-syncs.
	StaleMirrorBatchSize = 200
)
