package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/helpx-community/helpx-gateway/config"
)

// APIError is a rejection from the HelpX API: the request reached the
// backend and came back with a non-success status.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("helpx api: %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("helpx api: status %d", e.StatusCode)
}

// IsUnauthorized reports whether the rejection was an auth failure.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// AuthResult is the token + user profile returned by the authentication
// endpoints.
type AuthResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        UserPayload `json:"user"`
}

// UserPayload is a user as the API serializes it.
type UserPayload struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SkillPayload is a skill as the API serializes it. Category is optional;
// the backend does not populate it yet.
type SkillPayload struct {
	ID          uint   `json:"id"`
	Skill       string `json:"skill"`
	Description string `json:"description"`
	Category    string `json:"category"`
	UserID      uint   `json:"user_id"`
	UserName    string `json:"user_name"`
}

// BookingPayload is a booking as the API serializes it.
type BookingPayload struct {
	ID            uint      `json:"id"`
	ProviderID    uint      `json:"provider_id"`
	ProviderName  string    `json:"provider_name"`
	CustomerID    uint      `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	SkillName     string    `json:"skill_name"`
	Status        string    `json:"status"`
	DateTime      time.Time `json:"date_time"`
	DurationHours int       `json:"duration_hours"`
	Notes         string    `json:"notes"`
}

// BookingRequest is the payload for creating a booking.
type BookingRequest struct {
	ProviderID    uint      `json:"provider_id"`
	SkillID       uint      `json:"skill_id"`
	DateTime      time.Time `json:"date_time"`
	DurationHours int       `json:"duration_hours"`
	Notes         string    `json:"notes"`
}

// HelpXAPI is the remote HelpX backend as the gateway consumes it.
// Protected calls take the bearer token explicitly; the session manager
// decides which token, the client only forwards it.
type HelpXAPI interface {
	Register(name, email, password string) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	FirebaseSession(idToken string) (*AuthResult, error)
	ListUsers() ([]UserPayload, error)
	ListSkills(token string, userID uint) ([]SkillPayload, int, error)
	AddSkill(token, title, description, idempotencyKey string) error
	ListBookings(token string) ([]BookingPayload, error)
	CreateBooking(token string, req BookingRequest, idempotencyKey string) (*BookingPayload, error)
	UpdateBookingStatus(token string, bookingID uint, status string) (*BookingPayload, error)
}

// APIClient implements HelpXAPI over HTTP with JSON bodies.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the configured HelpX backend.
func NewAPIClient(cfg *config.Config) *APIClient {
	return &APIClient{
		baseURL: cfg.APIBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns the fresh session token+user.
func (c *APIClient) Register(name, email, password string) (*AuthResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var result AuthResult
	if err := c.do(http.MethodPost, "/register", "", body, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login exchanges credentials for a session token and user profile.
func (c *APIClient) Login(email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.do(http.MethodPost, "/login", "", body, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FirebaseSession exchanges a federated identity token for a local session.
func (c *APIClient) FirebaseSession(idToken string) (*AuthResult, error) {
	body := map[string]string{"id_token": idToken}
	var result AuthResult
	if err := c.do(http.MethodPost, "/auth/firebase/session", "", body, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListUsers fetches the community directory.
func (c *APIClient) ListUsers() ([]UserPayload, error) {
	var result struct {
		Success bool          `json:"success"`
		Count   int           `json:"count"`
		Users   []UserPayload `json:"users"`
	}
	if err := c.do(http.MethodGet, "/users", "", nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}

// ListSkills fetches the service list, optionally filtered by owner. The
// endpoint itself is public but the bearer token is attached when a
// session is active, so the backend can start scoping results later.
func (c *APIClient) ListSkills(token string, userID uint) ([]SkillPayload, int, error) {
	query := url.Values{}
	if userID != 0 {
		query.Set("user_id", fmt.Sprint(userID))
	}
	var result struct {
		Success bool           `json:"success"`
		Count   int            `json:"count"`
		Skills  []SkillPayload `json:"skills"`
	}
	if err := c.do(http.MethodGet, "/skills", token, nil, query, &result); err != nil {
		return nil, 0, err
	}
	return result.Skills, result.Count, nil
}

// AddSkill creates a service. Title and description travel as query
// parameters, which is how the backend expects them.
func (c *APIClient) AddSkill(token, title, description, idempotencyKey string) error {
	query := url.Values{}
	query.Set("skill", title)
	query.Set("description", description)

	req, err := c.newRequest(http.MethodPost, "/add-skill", token, nil, query)
	if err != nil {
		return err
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	return c.send(req, nil)
}

// ListBookings fetches all bookings involving the current user.
func (c *APIClient) ListBookings(token string) ([]BookingPayload, error) {
	var result struct {
		Success  bool             `json:"success"`
		Bookings []BookingPayload `json:"bookings"`
	}
	if err := c.do(http.MethodGet, "/bookings", token, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Bookings, nil
}

// CreateBooking submits a booking request.
func (c *APIClient) CreateBooking(token string, booking BookingRequest, idempotencyKey string) (*BookingPayload, error) {
	req, err := c.newRequest(http.MethodPost, "/bookings", token, booking, nil)
	if err != nil {
		return nil, err
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	var result struct {
		Success bool           `json:"success"`
		Booking BookingPayload `json:"booking"`
	}
	if err := c.send(req, &result); err != nil {
		return nil, err
	}
	return &result.Booking, nil
}

// UpdateBookingStatus requests a status transition for a booking.
func (c *APIClient) UpdateBookingStatus(token string, bookingID uint, status string) (*BookingPayload, error) {
	body := map[string]string{"status": status}
	path := fmt.Sprintf("/bookings/%d/status", bookingID)
	var result struct {
		Success bool           `json:"success"`
		Booking BookingPayload `json:"booking"`
	}
	if err := c.do(http.MethodPatch, path, token, body, nil, &result); err != nil {
		return nil, err
	}
	return &result.Booking, nil
}

// newRequest builds a request against the backend with JSON body and
// bearer auth when a token is supplied.
func (c *APIClient) newRequest(method, path, token string, body any, query url.Values) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send executes the request and decodes a successful response into out.
// Non-2xx responses become *APIError carrying the backend's detail
// message when it provides one.
func (c *APIClient) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach helpx backend: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *APIClient) do(method, path, token string, body any, query url.Values, out any) error {
	req, err := c.newRequest(method, path, token, body, query)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}
