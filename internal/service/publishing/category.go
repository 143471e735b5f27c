package publishing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// categoryService implements the CategoryService interface
type categoryService struct {
	categoryRepo pubRepo.CategoryRepository
	slugs        *SlugResolver
	logger       *slog.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo pubRepo.CategoryRepository,
	slugs *SlugResolver,
	logger *slog.Logger,
) pubSvc.CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		slugs:        slugs,
		logger:       logger,
	}
}

// CreateCategory creates a new category with a unique slug
func (s *categoryService) CreateCategory(ctx context.Context, req *pubSvc.CategoryRequest) (*models.Category, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	cat := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.slugs.WithUniqueSlug(ctx, cat.Name, models.EntityCategories, nil, func(slug string) error {
		cat.Slug = slug
		return s.categoryRepo.Create(ctx, cat)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		"id", cat.ID,
		"slug", cat.Slug,
	)

	return cat, nil
}

// GetCategory retrieves a category by ID
func (s *categoryService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

// ListCategories retrieves all categories
func (s *categoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.List(ctx)
}

// UpdateCategory renames a category; a new name regenerates the slug
func (s *categoryService) UpdateCategory(ctx context.Context, id int64, req *pubSvc.CategoryRequest) (*models.Category, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	cat, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	renamed := name != cat.Name
	cat.Name = name
	cat.Description = strings.TrimSpace(req.Description)
	cat.UpdatedAt = time.Now()

	if renamed {
		_, err = s.slugs.WithUniqueSlug(ctx, cat.Name, models.EntityCategories, &cat.ID, func(slug string) error {
			cat.Slug = slug
			return s.categoryRepo.Update(ctx, cat)
		})
	} else {
		err = s.categoryRepo.Update(ctx, cat)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("category updated",
		"id", cat.ID,
		"slug", cat.Slug,
	)

	return cat, nil
}

// DeleteCategory deletes a category that no post references
func (s *categoryService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("category deleted", "id", id)
	return nil
}

// validateRequest validates a category request
func (s *categoryService) validateRequest(req *pubSvc.CategoryRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxCategoryNameLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxExcerptLength)),
	)
}
