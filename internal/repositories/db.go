package repositories

import (
	"errors"
	"sync"

	"notesaas/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateSlug  = errors.New("tenant slug already registered")
)

// DB is the in-memory backing store shared by all repositories. Slices keep
// insertion order; a single lock guards every read and mutation.
type DB struct {
	mu      sync.RWMutex
	tenants []*models.Tenant
	users   []*models.User
	notes   []*models.Note
}

func NewDB() *DB {
	return &DB{}
}

// Stats is a point-in-time count of stored records.
type Stats struct {
	Tenants int `json:"tenants"`
	Users   int `json:"users"`
	Notes   int `json:"notes"`
}

func (db *DB) Stats() Stats {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return Stats{Tenants: len(db.tenants), Users: len(db.users), Notes: len(db.notes)}
}

// IsEmpty reports whether no tenants have been stored yet.
func (db *DB) IsEmpty() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.tenants) == 0
}
