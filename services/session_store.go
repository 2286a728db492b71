package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/helpx-community/helpx-gateway/models"
	"gorm.io/gorm"
)

// SessionStore persists the authenticated session across process
// restarts, the way the browser client kept it in localStorage.
type SessionStore interface {
	// Load returns the persisted session, or nil when none exists.
	Load() (*models.Session, error)

	// Save replaces any persisted session with the given one. Token and
	// user are written in a single transaction so the store never holds
	// one without the other.
	Save(session *models.Session) error

	// Clear removes the persisted session unconditionally.
	Clear() error
}

// ErrPartialSession is returned when a session missing either its token
// or its user id is offered for persistence.
var ErrPartialSession = errors.New("session must carry both token and user id")

// StoreError is a failure in the gateway's own database, distinct from a
// remote API failure so callers never report it as a backend outage.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErrorf(format string, args ...any) error {
	return &StoreError{Err: fmt.Errorf(format, args...)}
}

// GormSessionStore implements SessionStore on the local gorm database.
type GormSessionStore struct {
	db *gorm.DB
}

// NewGormSessionStore creates a session store backed by the given database.
func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

// Load returns the persisted session, or nil when none exists.
func (s *GormSessionStore) Load() (*models.Session, error) {
	var session models.Session
	err := s.db.First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErrorf("failed to load session: %w", err)
	}
	return &session, nil
}

// Save replaces any persisted session atomically.
func (s *GormSessionStore) Save(session *models.Session) error {
	if session == nil || !session.Active() {
		return ErrPartialSession
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Session{}).Error; err != nil {
			return err
		}
		record := *session
		record.ID = 0
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		session.ID = record.ID
		return nil
	})
	if err != nil {
		return storeErrorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the persisted session unconditionally.
func (s *GormSessionStore) Clear() error {
	if err := s.db.Where("1 = 1").Delete(&models.Session{}).Error; err != nil {
		return storeErrorf("failed to clear session: %w", err)
	}
	return nil
}

// MockSessionStore is an in-memory SessionStore for testing.
type MockSessionStore struct {
	mu      sync.Mutex
	session *models.Session

	SaveCalls  int
	ClearCalls int
	LoadErr    error
	SaveErr    error
}

// NewMockSessionStore creates an empty in-memory session store.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{}
}

func (m *MockSessionStore) Load() (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.session == nil {
		return nil, nil
	}
	copied := *m.session
	return &copied, nil
}

func (m *MockSessionStore) Save(session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if session == nil || !session.Active() {
		return ErrPartialSession
	}
	copied := *session
	m.session = &copied
	return nil
}

func (m *MockSessionStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	m.session = nil
	return nil
}

// Stored returns the currently persisted session (for testing assertions).
func (m *MockSessionStore) Stored() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}

// Seed stores a session directly, bypassing validation (for testing).
func (m *MockSessionStore) Seed(session *models.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
}
