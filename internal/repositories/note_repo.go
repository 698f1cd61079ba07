package repositories

import (
	"context"

	"notesaas/internal/models"

	"github.com/google/uuid"
)

// QuotaCheck inspects the tenant's current note count before an insert and
// returns a non-nil error to reject it.
type QuotaCheck func(existing int) error

// NoteRepository stores notes. Every lookup by id is scoped to a tenant; a
// note owned by another tenant is reported as ErrNotFound.
type NoteRepository interface {
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
	CreateWithinQuota(ctx context.Context, note *models.Note, check QuotaCheck) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Note, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Note, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, mutate func(n *models.Note)) (*models.Note, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) (*models.Note, error)
}

type noteRepo struct {
	db *DB
}

func NewNoteRepo(db *DB) NoteRepository {
	return &noteRepo{db: db}
}

func (r *noteRepo) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.countLocked(tenantID), nil
}

// CreateWithinQuota counts, checks and inserts in one critical section so two
// concurrent creates cannot both pass the quota.
func (r *noteRepo) CreateWithinQuota(ctx context.Context, note *models.Note, check QuotaCheck) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if check != nil {
		if err := check(r.countLocked(note.TenantID)); err != nil {
			return err
		}
	}
	n := *note
	r.db.notes = append(r.db.notes, &n)
	return nil
}

func (r *noteRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Note, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	notes := make([]*models.Note, 0)
	for _, n := range r.db.notes {
		if n.TenantID == tenantID {
			cp := *n
			notes = append(notes, &cp)
		}
	}
	return notes, nil
}

func (r *noteRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Note, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	idx := r.indexLocked(tenantID, id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	cp := *r.db.notes[idx]
	return &cp, nil
}

// Update applies mutate to the stored note. ID and TenantID are restored
// afterwards so they cannot change.
func (r *noteRepo) Update(ctx context.Context, tenantID, id uuid.UUID, mutate func(n *models.Note)) (*models.Note, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	idx := r.indexLocked(tenantID, id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	n := r.db.notes[idx]
	mutate(n)
	n.ID, n.TenantID = id, tenantID
	cp := *n
	return &cp, nil
}

func (r *noteRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) (*models.Note, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	idx := r.indexLocked(tenantID, id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	deleted := r.db.notes[idx]
	last := len(r.db.notes) - 1
	copy(r.db.notes[idx:], r.db.notes[idx+1:])
	r.db.notes[last] = nil
	r.db.notes = r.db.notes[:last]
	return deleted, nil
}

func (r *noteRepo) countLocked(tenantID uuid.UUID) int {
	count := 0
	for _, n := range r.db.notes {
		if n.TenantID == tenantID {
			count++
		}
	}
	return count
}

func (r *noteRepo) indexLocked(tenantID, id uuid.UUID) int {
	for i, n := range r.db.notes {
		if n.ID == id && n.TenantID == tenantID {
			return i
		}
	}
	return -1
}
