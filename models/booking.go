package models

import "time"

// BookingStatus is the finite status set for a booking. Transitions are
// server-authoritative; the client only requests them.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// BookingRole is the current user's relationship to a booking.
type BookingRole string

const (
	RoleProvider BookingRole = "provider"
	RoleCustomer BookingRole = "customer"
)

// BookingAction is a status transition the UI may offer on a booking.
type BookingAction struct {
	Label  string        `json:"label"`
	Status BookingStatus `json:"status"`
}

// Booking is a request from a customer to a provider to redeem a service
// at a scheduled time.
type Booking struct {
	ID            uint          `json:"id"`
	ProviderID    uint          `json:"provider_id"`
	ProviderName  string        `json:"provider_name"`
	CustomerID    uint          `json:"customer_id"`
	CustomerName  string        `json:"customer_name"`
	SkillName     string        `json:"skill_name"`
	Status        BookingStatus `json:"status"`
	ScheduledAt   time.Time     `json:"scheduled_at"`
	DurationHours int           `json:"duration_hours"`
	Notes         string        `json:"notes"`
}

// RoleFor returns the current user's role on this booking.
func (b Booking) RoleFor(userID uint) BookingRole {
	if b.ProviderID == userID {
		return RoleProvider
	}
	return RoleCustomer
}

// ActionsFor derives the visible action set from (role, status) alone.
// Providers accept or decline pending requests and complete accepted
// ones; customers may only cancel while a request is still pending.
func ActionsFor(role BookingRole, status BookingStatus) []BookingAction {
	switch {
	case role == RoleProvider && status == BookingPending:
		return []BookingAction{
			{Label: "Accept", Status: BookingAccepted},
			{Label: "Decline", Status: BookingCancelled},
		}
	case role == RoleProvider && status == BookingAccepted:
		return []BookingAction{
			{Label: "Mark Completed", Status: BookingCompleted},
		}
	case role == RoleCustomer && status == BookingPending:
		return []BookingAction{
			{Label: "Cancel", Status: BookingCancelled},
		}
	}
	return nil
}

// CanRequestTransition reports whether the client ever offers the given
// status transition: pending to accepted or cancelled, accepted to
// completed. Anything else is never requested.
func CanRequestTransition(from, to BookingStatus) bool {
	switch from {
	case BookingPending:
		return to == BookingAccepted || to == BookingCancelled
	case BookingAccepted:
		return to == BookingCompleted
	}
	return false
}

// PartitionBookings splits bookings into received (current user is the
// provider) and sent (current user is the customer). The split is
// exhaustive and disjoint for a fixed user id.
func PartitionBookings(bookings []Booking, userID uint) (received, sent []Booking) {
	received = make([]Booking, 0, len(bookings))
	sent = make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ProviderID == userID {
			received = append(received, b)
		} else {
			sent = append(sent, b)
		}
	}
	return received, sent
}
