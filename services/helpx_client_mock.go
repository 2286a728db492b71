package services

import (
	"net/http"
	"sync"
)

// MockHelpXAPI is a scriptable in-memory implementation of HelpXAPI for
// testing. Every method records its calls so tests can assert which
// network operations were (or were not) issued.
type MockHelpXAPI struct {
	mu sync.Mutex

	// Scripted results
	AuthResult   *AuthResult
	AuthErr      error
	Users        []UserPayload
	UsersErr     error
	Skills       []SkillPayload
	SkillsErr    error
	AddSkillErr  error
	Bookings     []BookingPayload
	BookingsErr  error
	CreateResult *BookingPayload
	CreateErr    error
	UpdateResult *BookingPayload
	UpdateErr    error

	// Recorded calls
	RegisterCalls    int
	LoginCalls       int
	FirebaseCalls    int
	ListUsersCalls   int
	ListSkillsCalls  int
	AddSkillCalls    int
	ListBookingCalls int
	CreateCalls      int
	UpdateCalls      int

	LastToken          string
	LastUserID         uint
	LastIdempotencyKey string
	LastBookingRequest BookingRequest
	LastStatusID       uint
	LastStatus         string
}

// NewMockHelpXAPI creates a mock backend with no scripted responses.
func NewMockHelpXAPI() *MockHelpXAPI {
	return &MockHelpXAPI{}
}

// UnauthorizedError returns the 401 rejection the backend sends for an
// expired or invalid token.
func UnauthorizedError() *APIError {
	return &APIError{StatusCode: http.StatusUnauthorized, Detail: "Could not validate credentials"}
}

func (m *MockHelpXAPI) Register(name, email, password string) (*AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegisterCalls++
	if m.AuthErr != nil {
		return nil, m.AuthErr
	}
	return m.AuthResult, nil
}

func (m *MockHelpXAPI) Login(email, password string) (*AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoginCalls++
	if m.AuthErr != nil {
		return nil, m.AuthErr
	}
	return m.AuthResult, nil
}

func (m *MockHelpXAPI) FirebaseSession(idToken string) (*AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FirebaseCalls++
	if m.AuthErr != nil {
		return nil, m.AuthErr
	}
	return m.AuthResult, nil
}

func (m *MockHelpXAPI) ListUsers() ([]UserPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListUsersCalls++
	if m.UsersErr != nil {
		return nil, m.UsersErr
	}
	return m.Users, nil
}

func (m *MockHelpXAPI) ListSkills(token string, userID uint) ([]SkillPayload, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListSkillsCalls++
	m.LastToken = token
	m.LastUserID = userID
	if m.SkillsErr != nil {
		return nil, 0, m.SkillsErr
	}
	return m.Skills, len(m.Skills), nil
}

func (m *MockHelpXAPI) AddSkill(token, title, description, idempotencyKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddSkillCalls++
	m.LastToken = token
	m.LastIdempotencyKey = idempotencyKey
	return m.AddSkillErr
}

func (m *MockHelpXAPI) ListBookings(token string) ([]BookingPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListBookingCalls++
	m.LastToken = token
	if m.BookingsErr != nil {
		return nil, m.BookingsErr
	}
	return m.Bookings, nil
}

func (m *MockHelpXAPI) CreateBooking(token string, req BookingRequest, idempotencyKey string) (*BookingPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	m.LastToken = token
	m.LastBookingRequest = req
	m.LastIdempotencyKey = idempotencyKey
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.CreateResult, nil
}

func (m *MockHelpXAPI) UpdateBookingStatus(token string, bookingID uint, status string) (*BookingPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	m.LastToken = token
	m.LastStatusID = bookingID
	m.LastStatus = status
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	if m.UpdateResult != nil {
		return m.UpdateResult, nil
	}
	// Reflect the requested transition back, like the real backend does
	// on success.
	for i := range m.Bookings {
		if m.Bookings[i].ID == bookingID {
			m.Bookings[i].Status = status
			updated := m.Bookings[i]
			return &updated, nil
		}
	}
	return &BookingPayload{ID: bookingID, Status: status}, nil
}
