package controllers

import (
	"errors"
	"strings"

	"whentomeet/internal/domain"
)

// inviteEach runs op once per username, collecting per-name outcomes. Unknown
// users and soft state machine rejections are folded into the failed list;
// anything that invalidates the whole call (event missing, caller not the
// owner, storage failure) aborts and is returned for normal error dispatch.
func inviteEach(usernames []string, op func(username string) error) (*InviteResponse, error) {
	result := &InviteResponse{
		Invited: []string{},
		Failed:  []InviteFailure{},
	}
	for _, raw := range usernames {
		username := strings.TrimSpace(raw)
		err := op(username)
		switch {
		case err == nil:
			result.Invited = append(result.Invited, username)
		case domain.IsTransitionError(err), errors.Is(err, domain.ErrUserNotFound):
			result.Failed = append(result.Failed, InviteFailure{Username: username, Reason: err.Error()})
		default:
			return nil, err
		}
	}
	return result, nil
}
