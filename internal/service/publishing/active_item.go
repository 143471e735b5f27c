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
	"newsdesk/internal/domain/repositories"
	pubRepo "newsdesk/internal/domain/repositories/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// activeItemService implements the ActiveItemService interface over one
// repository per collection kind
type activeItemService struct {
	repos     map[models.ActiveKind]pubRepo.ActiveItemRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewActiveItemService creates a new active item service
func NewActiveItemService(
	txManager repositories.TransactionManager,
	logger *slog.Logger,
	repos ...pubRepo.ActiveItemRepository,
) pubSvc.ActiveItemService {
	byKind := make(map[models.ActiveKind]pubRepo.ActiveItemRepository, len(repos))
	for _, repo := range repos {
		byKind[repo.Kind()] = repo
	}

	return &activeItemService{
		repos:     byKind,
		txManager: txManager,
		logger:    logger,
	}
}

// CreateItem creates an item. An item created active is activated in the
// same transaction, so an exclusive collection never shows two active rows.
func (s *activeItemService) CreateItem(ctx context.Context, kind models.ActiveKind, req *pubSvc.ActiveItemRequest) (*models.ActiveItem, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	item := &models.ActiveItem{
		Kind:      kind,
		Title:     strings.TrimSpace(req.Title),
		Body:      req.Body,
		Priority:  req.Priority,
		ExpiresAt: req.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := repo.Create(txCtx, item); err != nil {
			return err
		}
		if req.IsActive {
			if err := repo.Activate(txCtx, item.ID); err != nil {
				return err
			}
			item.IsActive = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("active item created",
		"kind", kind,
		"id", item.ID,
		"active", item.IsActive,
	)

	return item, nil
}

// GetItem retrieves an item by ID
func (s *activeItemService) GetItem(ctx context.Context, kind models.ActiveKind, id int64) (*models.ActiveItem, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

// ListItems lists every item of a collection
func (s *activeItemService) ListItems(ctx context.Context, kind models.ActiveKind) ([]models.ActiveItem, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	return repo.List(ctx)
}

// UpdateItem applies a partial update; the active flag is not touched
func (s *activeItemService) UpdateItem(ctx context.Context, kind models.ActiveKind, id int64, req *pubSvc.UpdateActiveItemRequest) (*models.ActiveItem, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	item, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		item.Body = *req.Body
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}
	switch {
	case req.ClearExpires:
		item.ExpiresAt = nil
	case req.ExpiresAt != nil:
		item.ExpiresAt = req.ExpiresAt
	}
	item.UpdatedAt = time.Now()

	if err := repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("active item updated", "kind", kind, "id", id)
	return item, nil
}

// DeleteItem deletes an item
func (s *activeItemService) DeleteItem(ctx context.Context, kind models.ActiveKind, id int64) error {
	repo, err := s.repo(kind)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("active item deleted", "kind", kind, "id", id)
	return nil
}

// Activate activates id. In an exclusive collection every other item is
// deactivated by the same statement.
func (s *activeItemService) Activate(ctx context.Context, kind models.ActiveKind, id int64) (*models.ActiveItem, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	if err := repo.Activate(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("active item activated", "kind", kind, "id", id)
	return repo.GetByID(ctx, id)
}

// Deactivate clears the active flag of id only
func (s *activeItemService) Deactivate(ctx context.Context, kind models.ActiveKind, id int64) (*models.ActiveItem, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	if err := repo.Deactivate(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("active item deactivated", "kind", kind, "id", id)
	return repo.GetByID(ctx, id)
}

// Toggle flips the active flag of id
func (s *activeItemService) Toggle(ctx context.Context, kind models.ActiveKind, id int64) (*models.ActiveItem, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	active, err := repo.Toggle(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("active item toggled", "kind", kind, "id", id, "active", active)
	return repo.GetByID(ctx, id)
}

// Current returns the live items of a collection
func (s *activeItemService) Current(ctx context.Context, kind models.ActiveKind) ([]models.ActiveItem, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	policy, _ := models.PolicyFor(kind)
	return repo.Current(ctx, time.Now(), policy.ReadLimit)
}

func (s *activeItemService) repo(kind models.ActiveKind) (pubRepo.ActiveItemRepository, error) {
	repo, ok := s.repos[kind]
	if !ok {
		return nil, domain.NewNotFound("collection", kind)
	}
	return repo, nil
}

// validateCreateRequest validates a create item request
func (s *activeItemService) validateCreateRequest(req *pubSvc.ActiveItemRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxTitleLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Body, validation.Length(0, config.MaxBodyLength)),
		validation.Field(&req.ExpiresAt, validation.By(notInPast)),
	)
}

// validateUpdateRequest validates an update item request
func (s *activeItemService) validateUpdateRequest(req *pubSvc.UpdateActiveItemRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxTitleLength),
			validation.By(notBlank),
		),
		validation.Field(&req.Body, validation.Length(0, config.MaxBodyLength)),
		validation.Field(&req.ExpiresAt, validation.By(notInPast)),
	)
}

func notInPast(value interface{}) error {
	at, _ := value.(*time.Time)
	if at != nil && !at.After(time.Now()) {
		return fmt.Errorf("must be in the future")
	}
	return nil
}
