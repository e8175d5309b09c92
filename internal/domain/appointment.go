package domain

import (
	"context"
	"time"
)

// AppointmentGuest is an accepted appointment member together with the
// departure point they had on record when they accepted.
// swagger:model AppointmentGuest
type AppointmentGuest struct {
	MemberID  string    `json:"member"`
	Departure *GeoPoint `json:"departure,omitempty"`
}

// Appointment is a single-time event at a fixed destination. It shares the
// WTM membership invariant: a user id appears in at most one of Invited,
// Accepted (keyed on MemberID) and Rejected, and never the owner.
// swagger:model Appointment
type Appointment struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OwnerID    string `json:"owner_id"`
	Identifier int    `json:"identifier"`

	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Destination *GeoPoint  `json:"destination,omitempty"`

	Invited  []string           `json:"invited"`
	Accepted []AppointmentGuest `json:"accepted"`
	Rejected []string           `json:"rejected"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GuestIndex returns the position of userID in the accepted list, or -1.
func (a *Appointment) GuestIndex(userID string) int {
	for i, g := range a.Accepted {
		if g.MemberID == userID {
			return i
		}
	}
	return -1
}

// AppointmentRepository defines storage for appointments. The public
// identifier namespace is independent from the WTM one; uniqueness is
// enforced at insert time with ErrDuplicateIdentifier on collision.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByIdentifier(ctx context.Context, identifier int) (*Appointment, error)
	GetByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*Appointment, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Appointment, error)
	Save(ctx context.Context, a *Appointment) error
	RemoveByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*Appointment, error)
}

// AppointmentInfo is the populated view of an appointment.
// swagger:model AppointmentInfo
type AppointmentInfo struct {
	Name        string     `json:"name"`
	Owner       string     `json:"owner"`
	Identifier  int        `json:"identifier"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Destination *GeoPoint  `json:"destination,omitempty"`
}

// AppointmentService hosts the invitation state machine for appointments.
// The lifecycle mirrors WTMService minus per-slot responses and reminders;
// the completion notification fires on the emptying of the invited list
// alone.
type AppointmentService interface {
	Create(ctx context.Context, ownerID, name string, start time.Time, end *time.Time, destination GeoPoint) (*Appointment, error)
	Modify(ctx context.Context, identifier int, actorID, name string, start time.Time, end *time.Time, destination GeoPoint) error
	Invite(ctx context.Context, identifier int, actorID, username string) error
	Accept(ctx context.Context, identifier int, actorID string) error
	Reject(ctx context.Context, identifier int, actorID string) error
	Delete(ctx context.Context, identifier int, actorID string) error
	Members(ctx context.Context, identifier int) (*EventMembers, error)
	Retrieve(ctx context.Context, identifier int) (*AppointmentInfo, error)
}
