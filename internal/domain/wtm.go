package domain

import (
	"context"
	"time"
)

// ResponseTime is one day of availability inside a response. TimeRange holds
// the selected time-of-day slots for that day.
// swagger:model ResponseTime
type ResponseTime struct {
	Day       time.Time `json:"day"`
	TimeRange []string  `json:"time_range"`
}

// WTMResponse is one responder's availability for a WTM. A WTM holds at most
// one response per responder; re-submission replaces the previous entry.
// swagger:model WTMResponse
type WTMResponse struct {
	Responder string         `json:"responder"`
	Times     []ResponseTime `json:"times"`
}

// WTM ("when to meet") is a group availability poll over a set of candidate
// dates and a daily time window.
//
// Invited, Accepted and Rejected are mutually exclusive per user: a user id
// appears in at most one of the three at any time, and the owner appears in
// none of them.
// swagger:model WTM
type WTM struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OwnerID    string `json:"owner_id"`
	Identifier int    `json:"identifier"`

	Dates     []time.Time `json:"dates"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`

	Invited  []string `json:"invited"`
	Accepted []string `json:"accepted"`
	Rejected []string `json:"rejected"`

	Responses []WTMResponse `json:"responses"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WTMRepository defines storage for WTMs. Like UserRepository.Save, Save is a
// whole-record last-write-wins update. Uniqueness of the public identifier is
// enforced by the store at insert time: Create returns
// ErrDuplicateIdentifier on a collision and the caller redraws.
type WTMRepository interface {
	Create(ctx context.Context, w *WTM) error
	GetByIdentifier(ctx context.Context, identifier int) (*WTM, error)
	GetByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*WTM, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*WTM, error)
	ListByIDs(ctx context.Context, ids []string) ([]*WTM, error)
	Save(ctx context.Context, w *WTM) error
	// RemoveByIdentifierAndOwner deletes the WTM and returns the removed
	// record so the caller can run the membership cascade. The owner filter
	// doubles as the authorization check.
	RemoveByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*WTM, error)
}

// EventMembers groups member usernames by invitation state.
// swagger:model EventMembers
type EventMembers struct {
	Invited  []string `json:"invited"`
	Accepted []string `json:"accepted"`
	Rejected []string `json:"rejected"`
}

// NamedResponse is a response with the responder resolved to a username.
// swagger:model NamedResponse
type NamedResponse struct {
	Responder string         `json:"responder"`
	Times     []ResponseTime `json:"times"`
}

// WTMInfo is the populated view of a WTM returned to a caller, including the
// caller's own response (zero-valued if they have not responded yet).
// swagger:model WTMInfo
type WTMInfo struct {
	Name             string          `json:"name"`
	Owner            string          `json:"owner"`
	Identifier       int             `json:"identifier"`
	Dates            []time.Time     `json:"dates"`
	StartTime        string          `json:"start_time"`
	EndTime          string          `json:"end_time"`
	Responses        []NamedResponse `json:"responses"`
	Invited          []string        `json:"invited"`
	PersonalResponse NamedResponse   `json:"personal_response"`
	IsOwner          bool            `json:"is_owner"`
}

// WTMService hosts the invitation/response state machine for WTMs.
//
// Per user and event the states are {none, invited, accepted, rejected}:
//
//	none/rejected --Invite--> invited
//	invited --Accept--> accepted
//	invited --Decline--> rejected
//	accepted --Leave--> none
//
// Accepted and rejected are never directly reachable from each other; the
// only way back is a fresh Invite.
type WTMService interface {
	Create(ctx context.Context, ownerID, name string, dates []time.Time, startTime, endTime string, invitedUsernames []string) (*WTM, error)
	Invite(ctx context.Context, identifier int, actorID, username string) error
	Accept(ctx context.Context, identifier int, actorID string) error
	Decline(ctx context.Context, identifier int, actorID string) error
	Leave(ctx context.Context, identifier int, actorID string) error
	Respond(ctx context.Context, identifier int, actorID string, times []ResponseTime) (*WTM, error)
	Delete(ctx context.Context, identifier int, actorID string) error
	Remind(ctx context.Context, identifier int, actorID string) error
	Members(ctx context.Context, identifier int) (*EventMembers, error)
	Retrieve(ctx context.Context, identifier int, actorID string) (*WTMInfo, error)
}
