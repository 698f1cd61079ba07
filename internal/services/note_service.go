package services

import (
	"context"
	"errors"
	"time"

	"notesaas/internal/common"
	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"github.com/google/uuid"
)

type NoteService interface {
	Create(ctx context.Context, identity models.Identity, title, content *string) (*models.Note, error)
	List(ctx context.Context, identity models.Identity) ([]*models.Note, error)
	Get(ctx context.Context, identity models.Identity, id string) (*models.Note, error)
	Update(ctx context.Context, identity models.Identity, id string, patch models.NotePatch) (*models.Note, error)
	Delete(ctx context.Context, identity models.Identity, id string) (*models.Note, error)
}

type noteService struct {
	noteRepo   repositories.NoteRepository
	tenantRepo repositories.TenantRepository
	now        func() time.Time
}

func NewNoteService(noteRepo repositories.NoteRepository, tenantRepo repositories.TenantRepository) NoteService {
	return &noteService{
		noteRepo:   noteRepo,
		tenantRepo: tenantRepo,
		now:        time.Now,
	}
}

// Create adds a note to the caller's tenant. Members of a free tenant are
// refused once the tenant holds FreePlanMemberNoteLimit notes; admins never are.
func (s *noteService) Create(ctx context.Context, identity models.Identity, title, content *string) (*models.Note, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, identity.TenantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.ErrSessionExpired
		}
		return nil, err
	}

	now := s.now()
	note := &models.Note{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		UserID:    identity.UserID,
		Title:     models.DefaultNoteTitle,
		Content:   common.SafeString(content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if title != nil && *title != "" {
		note.Title = *title
	}

	var check repositories.QuotaCheck
	if identity.Role == models.RoleMember && tenant.IsFreePlanLimited() {
		check = func(existing int) error {
			if existing >= models.FreePlanMemberNoteLimit {
				return common.ErrQuotaExceeded
			}
			return nil
		}
	}

	if err := s.noteRepo.CreateWithinQuota(ctx, note, check); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *noteService) List(ctx context.Context, identity models.Identity) ([]*models.Note, error) {
	return s.noteRepo.ListByTenant(ctx, identity.TenantID)
}

func (s *noteService) Get(ctx context.Context, identity models.Identity, id string) (*models.Note, error) {
	noteID, err := common.ParseID(id)
	if err != nil {
		return nil, err
	}
	note, err := s.noteRepo.GetByID(ctx, identity.TenantID, noteID)
	return note, notFound(err)
}

// Update applies the non-nil fields of patch and moves UpdatedAt strictly forward.
func (s *noteService) Update(ctx context.Context, identity models.Identity, id string, patch models.NotePatch) (*models.Note, error) {
	noteID, err := common.ParseID(id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	note, err := s.noteRepo.Update(ctx, identity.TenantID, noteID, func(n *models.Note) {
		if patch.Title != nil {
			n.Title = *patch.Title
		}
		if patch.Content != nil {
			n.Content = *patch.Content
		}
		if now.After(n.UpdatedAt) {
			n.UpdatedAt = now
		} else {
			n.UpdatedAt = n.UpdatedAt.Add(time.Nanosecond)
		}
	})
	return note, notFound(err)
}

func (s *noteService) Delete(ctx context.Context, identity models.Identity, id string) (*models.Note, error) {
	noteID, err := common.ParseID(id)
	if err != nil {
		return nil, err
	}
	note, err := s.noteRepo.Delete(ctx, identity.TenantID, noteID)
	return note, notFound(err)
}

func notFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return common.ErrNotFound
	}
	return err
}
