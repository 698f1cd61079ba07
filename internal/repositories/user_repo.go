package repositories

import (
	"context"
	"strings"

	"notesaas/internal/models"
)

// UserRepository stores users. Email lookups are global across tenants and
// case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepo struct {
	db *DB
}

func NewUserRepo(db *DB) UserRepository {
	return &userRepo{db: db}
}

// Create inserts the user unless the email is already taken by any tenant.
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.findByEmailLocked(user.Email) != nil {
		return ErrDuplicateEmail
	}
	u := *user
	r.db.users = append(r.db.users, &u)
	return nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u := r.findByEmailLocked(email)
	if u == nil {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) findByEmailLocked(email string) *models.User {
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}
