package model

import "time"

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusApproved  ReservationStatus = "approved"
	StatusRejected  ReservationStatus = "rejected"
	StatusCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Blocks reports whether a reservation in this status occupies capacity.
// Only pending and approved reservations block; rejected and cancelled never do.
func (s ReservationStatus) Blocks() bool {
	return s == StatusPending || s == StatusApproved
}

// DefaultPriority is assigned to new reservations. Lower value means higher
// precedence when an administrator chooses among conflicting requests.
const DefaultPriority = 9

type Reservation struct {
	ID        string
	LocaleID  string
	UserID    string
	StartDT   time.Time
	EndDT     time.Time
	Motive    string
	Status    ReservationStatus
	Priority  int
	CreatedAt time.Time
}
