package domain

import "errors"

// Shared sentinel errors. Repositories translate driver-level failures into
// these; services and controllers dispatch on them with errors.Is.
var (
	// ErrNotFound means the requested record does not exist. Operations that
	// authorize through a combined identifier+owner filter (delete, remind,
	// modify) also return ErrNotFound for a non-owner, so the caller cannot
	// tell a missing event from someone else's event.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the acting user is not allowed to perform the
	// operation on an event that does exist.
	ErrForbidden = errors.New("forbidden")

	// ErrDuplicateIdentifier means a freshly drawn public identifier collided
	// with an existing event of the same kind. Callers redraw and retry.
	ErrDuplicateIdentifier = errors.New("identifier already in use")
)

// Invitation state machine rejections. These are soft, per-user outcomes:
// the event state is unchanged and a multi-invite keeps processing the
// remaining usernames.
var (
	ErrSelfInvite      = errors.New("owner cannot invite themselves")
	ErrAlreadyInvited  = errors.New("user already invited")
	ErrAlreadyAccepted = errors.New("user already accepted")
	ErrAlreadyRejected = errors.New("user rejected the invitation and must be re-invited")
	ErrNotInvited      = errors.New("user is not invited")
	ErrAlreadyLeft     = errors.New("user is not an accepted guest")
)

// IsTransitionError reports whether err is one of the soft invitation state
// machine rejections, as opposed to a not-found or infrastructure failure.
func IsTransitionError(err error) bool {
	return errors.Is(err, ErrSelfInvite) ||
		errors.Is(err, ErrAlreadyInvited) ||
		errors.Is(err, ErrAlreadyAccepted) ||
		errors.Is(err, ErrAlreadyRejected) ||
		errors.Is(err, ErrNotInvited) ||
		errors.Is(err, ErrAlreadyLeft)
}
