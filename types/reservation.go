package types

import "time"

// ReservationStatus enumerates the lifecycle states of a reservation.
type ReservationStatus string

const (
	// StatusPending is the initial state of every reservation that was
	// created without an explicit status.
	StatusPending ReservationStatus = "pending"

	// StatusConfirmed marks a reservation that has been accepted.
	StatusConfirmed ReservationStatus = "confirmed"

	// StatusCancelled marks a reservation that was called off. Cancelled
	// reservations remain in the store until deleted.
	StatusCancelled ReservationStatus = "cancelled"
)

// Valid reports whether s is one of the enumerated reservation states.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Reservation represents a booking request for an item over a time window.
//
// The contact fields (Name, Email, Phone) describe the reservee, which is
// not necessarily the authenticated account that owns the record: owners
// routinely book on behalf of somebody else.
type Reservation struct {
	// ID is the unique identifier of the reservation.
	ID int `json:"id" db:"id"`

	// Name is the reservee's name.
	Name string `json:"name" db:"name"`

	// Email is the reservee's contact email, stored lower-cased and trimmed.
	Email string `json:"email" db:"email"`

	// Phone is the reservee's contact phone number.
	Phone string `json:"phone" db:"phone"`

	// ItemType is a free-form category for the reserved item (e.g. "room",
	// "vehicle").
	ItemType string `json:"item_type" db:"item_type"`

	// ItemName identifies the concrete item being reserved.
	ItemName string `json:"item_name" db:"item_name"`

	// ItemDescription carries additional detail about the item. Optional.
	ItemDescription string `json:"item_description,omitempty" db:"item_description"`

	// StartAt is the instant the reservation window opens.
	StartAt time.Time `json:"start_at" db:"start_at"`

	// EndAt is the instant the reservation window closes.
	// EndAt is always strictly after StartAt.
	EndAt time.Time `json:"end_at" db:"end_at"`

	// Status is the lifecycle state of the reservation.
	Status ReservationStatus `json:"status" db:"status"`

	// Notes holds free-form remarks, at most 500 characters. Optional.
	Notes string `json:"notes,omitempty" db:"notes"`

	// CreatedBy is the ID of the owning user. It is stamped from the
	// authenticated caller at creation and never changes; every read and
	// mutation of the reservation is scoped by it.
	CreatedBy int `json:"created_by" db:"created_by"`

	// CreatedAt is the timestamp at which the reservation was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the reservation.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
