package publishing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"
	"newsdesk/internal/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// contentService implements the ContentService interface
type contentService struct {
	contentRepo  pubRepo.ContentRepository
	categoryRepo pubRepo.CategoryRepository
	slugs        *SlugResolver
	mirror       *mirrorKeeper
	logger       *slog.Logger
}

// NewContentService creates a new content service
func NewContentService(
	contentRepo pubRepo.ContentRepository,
	categoryRepo pubRepo.CategoryRepository,
	slugs *SlugResolver,
	mirror pubSvc.MirrorSynchronizer,
	logger *slog.Logger,
) pubSvc.ContentService {
	return &contentService{
		contentRepo:  contentRepo,
		categoryRepo: categoryRepo,
		slugs:        slugs,
		mirror:       &mirrorKeeper{mirror: mirror, contentRepo: contentRepo, logger: logger},
		logger:       logger,
	}
}

// CreateContent derives slug and reading time, inserts the row, then syncs the mirror
func (s *contentService) CreateContent(ctx context.Context, req *pubSvc.CreateContentRequest) (*models.ContentRecord, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	body, err := utils.NormalizeBody(req.Body, req.BodyFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	rec := &models.ContentRecord{
		Title:         strings.TrimSpace(req.Title),
		Body:          body,
		Excerpt:       strings.TrimSpace(req.Excerpt),
		CategoryID:    req.CategoryID,
		AuthorID:      req.Principal.UserID,
		Tags:          normalizeTags(req.Tags),
		FeaturedImage: strings.TrimSpace(req.FeaturedImage),
		IsPublished:   s.allowPublish(req.Principal, req.IsPublished),
		IsFeatured:    req.IsFeatured,
		ReadingTime:   utils.EstimateMinutes(body),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if rec.IsPublished {
		rec.PublishedAt = &now
	}

	_, err = s.slugs.WithUniqueSlug(ctx, rec.Title, models.EntityPosts, nil, func(slug string) error {
		rec.Slug = slug
		return s.contentRepo.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("content created",
		"id", rec.ID,
		"slug", rec.Slug,
		"published", rec.IsPublished,
		"author_id", rec.AuthorID,
	)

	if rec.IsPublished {
		_ = s.mirror.sync(ctx, rec)
	}

	return rec, nil
}

// GetContent retrieves a record by ID
func (s *contentService) GetContent(ctx context.Context, id int64) (*models.ContentRecord, error) {
	return s.contentRepo.GetByID(ctx, id)
}

// GetContentBySlug retrieves a record by slug
func (s *contentService) GetContentBySlug(ctx context.Context, slug string) (*models.ContentRecord, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.NewValidation("slug is required")
	}
	return s.contentRepo.GetBySlug(ctx, slug)
}

// ListContent returns a page of records
func (s *contentService) ListContent(ctx context.Context, filter *models.ContentFilter) (*pubSvc.ContentPage, error) {
	if filter == nil {
		filter = &models.ContentFilter{}
	}
	filter.ApplyDefaults()

	records, total, err := s.contentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &pubSvc.ContentPage{
		Items:      records,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
		HasMore:    filter.Offset+len(records) < total,
	}, nil
}

// UpdateContent applies a partial update. A changed title regenerates the
// slug (the record's own row excluded); a changed body recomputes reading time.
func (s *contentService) UpdateContent(ctx context.Context, id int64, req *pubSvc.UpdateContentRequest) (*models.ContentRecord, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	rec, err := s.contentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	titleChanged := false
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		titleChanged = title != rec.Title
		rec.Title = title
	}
	if req.Body != nil {
		body, err := utils.NormalizeBody(*req.Body, req.BodyFormat)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if body != rec.Body {
			rec.Body = body
			rec.ReadingTime = utils.EstimateMinutes(body)
		}
	}
	if req.Excerpt != nil {
		rec.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if req.CategoryID != nil && *req.CategoryID != rec.CategoryID {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		rec.CategoryID = *req.CategoryID
	}
	if req.Tags != nil {
		rec.Tags = normalizeTags(*req.Tags)
	}
	if req.FeaturedImage != nil {
		rec.FeaturedImage = strings.TrimSpace(*req.FeaturedImage)
	}
	if req.IsFeatured != nil {
		rec.IsFeatured = *req.IsFeatured
	}

	wasPublished := rec.IsPublished
	if req.IsPublished != nil {
		rec.IsPublished = s.allowPublish(req.Principal, *req.IsPublished)
	}

	now := time.Now()
	rec.UpdatedAt = now
	if rec.IsPublished && rec.PublishedAt == nil {
		rec.PublishedAt = &now
	}

	if titleChanged {
		_, err = s.slugs.WithUniqueSlug(ctx, rec.Title, models.EntityPosts, &rec.ID, func(slug string) error {
			rec.Slug = slug
			return s.contentRepo.Update(ctx, rec)
		})
	} else {
		err = s.contentRepo.Update(ctx, rec)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("content updated",
		"id", rec.ID,
		"slug", rec.Slug,
		"published", rec.IsPublished,
		"reslugged", titleChanged,
	)

	// Sync removes the mirror of an unpublished record
	if rec.IsPublished || wasPublished {
		_ = s.mirror.sync(ctx, rec)
	}

	return rec, nil
}

// DeleteContent hard-deletes a record, then removes its mirror
func (s *contentService) DeleteContent(ctx context.Context, id int64) error {
	if err := s.contentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("content deleted", "id", id)

	_ = s.mirror.remove(ctx, id)
	return nil
}

// RecordView atomically increments the view counter
func (s *contentService) RecordView(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, domain.NewValidation("invalid id %d", id)
	}
	return s.contentRepo.IncrementViews(ctx, id)
}

// allowPublish downgrades a publish request to draft for roles that may not publish
func (s *contentService) allowPublish(p models.Principal, requested bool) bool {
	if requested && !p.Role.CanPublish() {
		s.logger.Info("publish request downgraded to draft",
			"user_id", p.UserID,
			"role", p.Role,
		)
		return false
	}
	return requested
}

func (s *contentService) ensureCategory(ctx context.Context, id int64) error {
	exists, err := s.categoryRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewValidation("category %d does not exist", id)
	}
	return nil
}

// validateCreateRequest validates a create content request
func (s *contentService) validateCreateRequest(req *pubSvc.CreateContentRequest) error {
	if err := validatePrincipal(req.Principal); err != nil {
		return err
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxTitleLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Body, validation.Length(0, config.MaxBodyLength)),
		validation.Field(&req.BodyFormat, validation.In(utils.BodyFormatMarkdown, utils.BodyFormatHTML)),
		validation.Field(&req.Excerpt, validation.Length(0, config.MaxExcerptLength)),
		validation.Field(&req.CategoryID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Tags, validation.Length(0, config.MaxTags), validation.Each(validation.Length(0, config.MaxTagLength))),
	)
}

// validateUpdateRequest validates an update content request
func (s *contentService) validateUpdateRequest(req *pubSvc.UpdateContentRequest) error {
	if err := validatePrincipal(req.Principal); err != nil {
		return err
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxTitleLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Body, validation.Length(0, config.MaxBodyLength)),
		validation.Field(&req.BodyFormat, validation.In(utils.BodyFormatMarkdown, utils.BodyFormatHTML)),
		validation.Field(&req.Excerpt, validation.Length(0, config.MaxExcerptLength)),
		validation.Field(&req.CategoryID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&req.Tags, validation.By(func(value interface{}) error {
			tags, _ := value.(*[]string)
			if tags == nil {
				return nil
			}
			return validation.Validate(*tags,
				validation.Length(0, config.MaxTags),
				validation.Each(validation.Length(0, config.MaxTagLength)),
			)
		})),
	)
}

func validatePrincipal(p models.Principal) error {
	if strings.TrimSpace(p.UserID) == "" {
		return errors.New("principal: user id is required")
	}
	if !p.Role.Valid() {
		return fmt.Errorf("principal: unknown role %q", p.Role)
	}
	return nil
}

// notBlank rejects strings that are empty after trimming
func notBlank(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return errors.New("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// normalizeTags trims tags and drops empty and repeated ones, keeping order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
