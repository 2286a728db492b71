package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/helpx-community/helpx-gateway/models"
	"github.com/helpx-community/helpx-gateway/services"
	"github.com/helpx-community/helpx-gateway/utils"
)

var (
	// ErrNotAuthenticated is returned when an operation that needs an
	// active session is attempted without one. No network call is made.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired is returned when the backend rejects the session
	// token on a protected write; the session has already been terminated.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoServiceSelected is returned when a booking is requested
	// without selecting a service first.
	ErrNoServiceSelected = errors.New("no service selected for booking")

	// ErrServiceNotFound is returned when selecting a service id that is
	// not in the loaded service list.
	ErrServiceNotFound = errors.New("service not found")

	// ErrRequestInFlight is returned when an identical create request is
	// already on the wire; the duplicate submit is dropped.
	ErrRequestInFlight = errors.New("identical request already in flight")
)

// Manager owns the authenticated session and the locally cached views of
// users, services and bookings, and mediates every read and write against
// the remote HelpX API. It replaces the old client's pile of mutable
// globals with one explicit object.
type Manager struct {
	api   services.HelpXAPI
	store services.SessionStore

	mu       sync.Mutex
	session  *models.Session
	user     models.User
	users    []models.DirectoryUser
	services []models.Service
	received []models.Booking
	sent     []models.Booking
	selected *models.Service
	inflight map[string]struct{}
}

// NewManager creates a manager with no active session.
func NewManager(api services.HelpXAPI, store services.SessionStore) *Manager {
	return &Manager{
		api:      api,
		store:    store,
		user:     models.NewCurrentUser(),
		inflight: make(map[string]struct{}),
	}
}

// Restore loads the persisted session at startup. It returns true when a
// live session was restored. A persisted token that has already expired
// is discarded rather than restored.
func (m *Manager) Restore() (bool, error) {
	session, err := m.store.Load()
	if err != nil {
		return false, err
	}
	if session == nil || !session.Active() {
		return false, nil
	}
	if tokenExpired(session.Token, time.Now()) {
		if err := m.store.Clear(); err != nil {
			return false, err
		}
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
	m.applyIdentity(session.UserID, session.UserName, session.UserEmail, models.DefaultCredits)
	return true, nil
}

// Login exchanges credentials for a session token. Validation failures
// are caught before any network call; API rejections are surfaced
// unchanged and leave any existing session untouched.
func (m *Manager) Login(email, password string) error {
	if err := utils.ValidateEmail(email); err != nil {
		return err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return err
	}

	result, err := m.api.Login(email, password)
	if err != nil {
		return err
	}
	return m.adoptSession(result, models.DefaultCredits)
}

// Register creates an account and signs in with the returned session.
func (m *Manager) Register(name, email, password string) error {
	if err := utils.ValidateName(name); err != nil {
		return err
	}
	if err := utils.ValidateEmail(email); err != nil {
		return err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return err
	}

	result, err := m.api.Register(name, email, password)
	if err != nil {
		return err
	}
	return m.adoptSession(result, models.RegistrationCredits)
}

// LoginWithFirebase exchanges a federated identity token for a local
// session, with the same success and failure handling as Login.
func (m *Manager) LoginWithFirebase(idToken string) error {
	if idToken == "" {
		return &utils.ValidationError{Field: "id_token", Message: "Identity token is required"}
	}

	result, err := m.api.FirebaseSession(idToken)
	if err != nil {
		return err
	}
	return m.adoptSession(result, models.DefaultCredits)
}

// Logout clears the in-memory and persisted session unconditionally.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.session = nil
	m.user = models.NewCurrentUser()
	m.users = nil
	m.services = nil
	m.received = nil
	m.sent = nil
	m.selected = nil
	m.mu.Unlock()

	return m.store.Clear()
}

// Authenticated reports whether a session is active.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Active()
}

// Session returns a copy of the active session, or nil.
func (m *Manager) Session() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}

// CurrentUser returns the current user profile view.
func (m *Manager) CurrentUser() models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// LoadUsers fetches the community directory and replaces the cache. A
// failed fetch leaves the previous cache untouched.
func (m *Manager) LoadUsers() ([]models.DirectoryUser, error) {
	users, err := m.api.ListUsers()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = users2directory(users)
	return append([]models.DirectoryUser(nil), m.users...), nil
}

// LoadServices fetches the full service list and replaces the cache
// wholesale. Missing server fields get the client-side placeholders.
func (m *Manager) LoadServices() ([]models.Service, error) {
	skills, _, err := m.api.ListSkills(m.token(), 0)
	if err != nil {
		return nil, err
	}

	loaded := make([]models.Service, 0, len(skills))
	for _, skill := range skills {
		loaded = append(loaded, serviceFromSkill(skill))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = loaded
	return append([]models.Service(nil), loaded...), nil
}

// Services returns the cached services filtered by an optional search
// term and category.
func (m *Manager) Services(search, category string) []models.Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.FilterServices(m.services, search, category)
}

// RefreshServicesOffered recounts how many services the current user
// offers, for the profile stats.
func (m *Manager) RefreshServicesOffered() error {
	m.mu.Lock()
	userID := m.user.ID
	token := ""
	if m.session != nil {
		token = m.session.Token
	}
	m.mu.Unlock()

	if userID == 0 {
		return ErrNotAuthenticated
	}

	_, count, err := m.api.ListSkills(token, userID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.user.ServicesOffered = count
	return nil
}

// PostService submits a new service. It requires an active session and
// refuses without one before any network call. A 401 from the backend
// terminates the session.
func (m *Manager) PostService(title, description string) error {
	token := m.token()
	if token == "" {
		return ErrNotAuthenticated
	}
	if title == "" {
		return &utils.ValidationError{Field: "title", Message: "Title is required"}
	}

	key := "add-skill|" + title + "|" + description
	if err := m.acquire(key); err != nil {
		return err
	}
	defer m.release(key)

	if err := m.api.AddSkill(token, title, description, idempotencyKey(key)); err != nil {
		return m.failProtectedWrite(err)
	}

	m.mu.Lock()
	m.user.ServicesOffered++
	m.mu.Unlock()

	// Refresh the cache so the new service shows up immediately. The
	// post itself already succeeded, so a failed refresh is not fatal.
	if _, err := m.LoadServices(); err != nil {
		return nil
	}
	return nil
}

// LoadBookings fetches the current user's bookings and partitions them
// into received (user is provider) and sent (user is customer).
func (m *Manager) LoadBookings() (received, sent []models.Booking, err error) {
	token := m.token()
	if token == "" {
		return nil, nil, ErrNotAuthenticated
	}

	payloads, err := m.api.ListBookings(token)
	if err != nil {
		return nil, nil, err
	}

	bookings := make([]models.Booking, 0, len(payloads))
	for _, p := range payloads {
		bookings = append(bookings, bookingFromPayload(p))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.received, m.sent = models.PartitionBookings(bookings, m.user.ID)
	return append([]models.Booking(nil), m.received...), append([]models.Booking(nil), m.sent...), nil
}

// Bookings returns the cached partition as view models with the action
// set each booking supports for the current user.
func (m *Manager) Bookings() (received, sent []BookingView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return viewsFor(m.received, m.user.ID), viewsFor(m.sent, m.user.ID)
}

// SelectService marks a loaded service as the target for the next
// booking request.
func (m *Manager) SelectService(serviceID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.services {
		if s.ID == serviceID {
			selected := s
			m.selected = &selected
			return nil
		}
	}
	return ErrServiceNotFound
}

// SelectedService returns a copy of the service selected for booking.
func (m *Manager) SelectedService() *models.Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil {
		return nil
	}
	copied := *m.selected
	return &copied
}

// CreateBooking submits a booking request for the selected service. Date
// and clock time arrive separately and are combined, like the old
// booking form did.
func (m *Manager) CreateBooking(date, clock string, durationHours int, notes string) (*models.Booking, error) {
	token := m.token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	m.mu.Lock()
	selected := m.selected
	m.mu.Unlock()
	if selected == nil {
		return nil, ErrNoServiceSelected
	}

	scheduledAt, err := CombineDateTime(date, clock)
	if err != nil {
		return nil, err
	}
	if durationHours < 1 {
		return nil, &utils.ValidationError{Field: "duration", Message: "Duration must be at least 1 hour"}
	}

	request := services.BookingRequest{
		ProviderID:    selected.UserID,
		SkillID:       selected.ID,
		DateTime:      scheduledAt,
		DurationHours: durationHours,
		Notes:         notes,
	}

	key := fmt.Sprintf("booking|%d|%d|%s", request.ProviderID, request.SkillID, scheduledAt.Format(time.RFC3339))
	if err := m.acquire(key); err != nil {
		return nil, err
	}
	defer m.release(key)

	payload, err := m.api.CreateBooking(token, request, idempotencyKey(key))
	if err != nil {
		return nil, m.failProtectedWrite(err)
	}

	booking := bookingFromPayload(*payload)
	return &booking, nil
}

// UpdateBookingStatus requests a status transition for a booking. The
// transition itself is server-authoritative; the client only offers the
// transitions ActionsFor derives.
func (m *Manager) UpdateBookingStatus(bookingID uint, status models.BookingStatus) (*models.Booking, error) {
	token := m.token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	payload, err := m.api.UpdateBookingStatus(token, bookingID, string(status))
	if err != nil {
		return nil, m.failProtectedWrite(err)
	}

	booking := bookingFromPayload(*payload)
	return &booking, nil
}

// adoptSession persists the fresh session and only then swaps it into
// memory, so a failed persist leaves the previous session intact.
func (m *Manager) adoptSession(result *services.AuthResult, credits int) error {
	session := &models.Session{
		Token:     result.AccessToken,
		UserID:    result.User.ID,
		UserName:  result.User.Name,
		UserEmail: result.User.Email,
	}
	if err := m.store.Save(session); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
	m.applyIdentity(result.User.ID, result.User.Name, result.User.Email, credits)
	return nil
}

// applyIdentity resets the profile to client defaults and lays the
// server identity over it. Callers must hold the lock.
func (m *Manager) applyIdentity(id uint, name, email string, credits int) {
	m.user = models.NewCurrentUser()
	m.user.ID = id
	m.user.Name = name
	m.user.Email = email
	m.user.Credits = credits
}

// failProtectedWrite maps a 401 on a protected write to forced logout.
// Other failures pass through untouched.
func (m *Manager) failProtectedWrite(err error) error {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
		_ = m.Logout()
		return fmt.Errorf("%w: please sign in again", ErrSessionExpired)
	}
	return err
}

func (m *Manager) token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

// idempotencyKey derives a stable key from the request identity, so a
// resubmit of the same payload carries the same key and the backend can
// deduplicate it even after the first request completed.
func idempotencyKey(identity string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(identity)).String()
}

func (m *Manager) acquire(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inflight[key]; busy {
		return ErrRequestInFlight
	}
	m.inflight[key] = struct{}{}
	return nil
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, key)
}

// BookingView pairs a booking with the current user's role on it and the
// actions that role may take in its current status.
type BookingView struct {
	models.Booking
	Role    models.BookingRole     `json:"role"`
	Actions []models.BookingAction `json:"actions"`
}

func viewsFor(bookings []models.Booking, userID uint) []BookingView {
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		role := b.RoleFor(userID)
		views = append(views, BookingView{
			Booking: b,
			Role:    role,
			Actions: models.ActionsFor(role, b.Status),
		})
	}
	return views
}

func users2directory(payloads []services.UserPayload) []models.DirectoryUser {
	users := make([]models.DirectoryUser, 0, len(payloads))
	for _, p := range payloads {
		users = append(users, models.DirectoryUser{ID: p.ID, Name: p.Name, Email: p.Email})
	}
	return users
}

// serviceFromSkill turns a raw skill payload into the Service view,
// filling the placeholders for fields the backend does not supply.
func serviceFromSkill(p services.SkillPayload) models.Service {
	service := models.Service{
		ID:          p.ID,
		Title:       p.Skill,
		Provider:    p.UserName,
		Category:    p.Category,
		Description: p.Description,
		Rate:        models.DefaultRate,
		Rating:      models.DefaultServiceRating,
		Reviews:     0,
		UserID:      p.UserID,
	}
	if service.Provider == "" {
		service.Provider = models.UnknownProvider
	}
	if service.Category == "" {
		service.Category = models.DefaultCategory
	}
	if service.Description == "" {
		service.Description = models.DefaultDescription
	}
	return service
}

func bookingFromPayload(p services.BookingPayload) models.Booking {
	return models.Booking{
		ID:            p.ID,
		ProviderID:    p.ProviderID,
		ProviderName:  p.ProviderName,
		CustomerID:    p.CustomerID,
		CustomerName:  p.CustomerName,
		SkillName:     p.SkillName,
		Status:        models.BookingStatus(p.Status),
		ScheduledAt:   p.DateTime,
		DurationHours: p.DurationHours,
		Notes:         p.Notes,
	}
}

// CombineDateTime merges a date ("2006-01-02") and a clock time
// ("15:04") into one timestamp in the local zone.
func CombineDateTime(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, &utils.ValidationError{Field: "date", Message: "Please enter a valid date"}
	}
	at, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, &utils.ValidationError{Field: "time", Message: "Please enter a valid time"}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), at.Hour(), at.Minute(), 0, 0, time.Local), nil
}
