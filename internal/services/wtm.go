package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"whentomeet/internal/domain"
)

type wtmService struct {
	wtmRepo      domain.WTMRepository
	userRepo     domain.UserRepository
	emailService domain.EmailService
	logger       *slog.Logger
}

// NewWTMService creates a WTMService with the given repositories and ports.
// emailService may be nil, in which case invitations only go to the inbox.
func NewWTMService(wtmRepo domain.WTMRepository, userRepo domain.UserRepository, emailService domain.EmailService, logger *slog.Logger) domain.WTMService {
	return &wtmService{
		wtmRepo:      wtmRepo,
		userRepo:     userRepo,
		emailService: emailService,
		logger:       logger,
	}
}

// completionDue reports whether the owner should receive the "all guests have
// responded" notification: no invitation is pending and the response count
// equals the accepted count plus one, the extra slot being the owner's
// implicit response.
func completionDue(w *domain.WTM) bool {
	return len(w.Invited) == 0 && len(w.Responses) == len(w.Accepted)+1
}

func (s *wtmService) Create(ctx context.Context, ownerID, name string, dates []time.Time, startTime, endTime string, invitedUsernames []string) (*domain.WTM, error) {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}

	now := time.Now()
	w := &domain.WTM{
		Name:      name,
		OwnerID:   owner.ID,
		Dates:     dates,
		StartTime: startTime,
		EndTime:   endTime,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Resolve invitees up front; unknown usernames are skipped, as are the
	// owner and duplicates.
	var invitees []*domain.User
	for _, username := range invitedUsernames {
		target, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return nil, fmt.Errorf("get invitee %q: %w", username, err)
		}
		if target.ID == owner.ID || contains(w.Invited, target.ID) {
			continue
		}
		w.Invited = append(w.Invited, target.ID)
		invitees = append(invitees, target)
	}

	if err := s.allocateAndCreate(ctx, w); err != nil {
		return nil, err
	}

	owner.OwnedWTMs = append(owner.OwnedWTMs, w.ID)
	if err := s.userRepo.Save(ctx, owner); err != nil {
		return nil, fmt.Errorf("save owner: %w", err)
	}

	for _, target := range invitees {
		target.InvitedWTMs = append(target.InvitedWTMs, w.ID)
		target.Messages = append(target.Messages, inviteMessage(w))
		if err := s.userRepo.Save(ctx, target); err != nil {
			return nil, fmt.Errorf("save invitee %q: %w", target.Username, err)
		}
		s.sendInvitationEmail(ctx, target, w)
	}
	return w, nil
}

// allocateAndCreate draws public identifiers until the insert succeeds. The
// unique index on the identifier column is the arbiter, so two concurrent
// creations can never end up sharing an identifier.
func (s *wtmService) allocateAndCreate(ctx context.Context, w *domain.WTM) error {
	for range identifierAttempts {
		w.Identifier = randomIdentifier()
		err := s.wtmRepo.Create(ctx, w)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrDuplicateIdentifier) {
			continue
		}
		return fmt.Errorf("create wtm: %w", err)
	}
	return fmt.Errorf("create wtm: %w", domain.ErrDuplicateIdentifier)
}

func (s *wtmService) Invite(ctx context.Context, identifier int, actorID, username string) error {
	w, err := s.wtmRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get wtm: %w", err)
	}
	if actorID != w.OwnerID {
		return domain.ErrForbidden
	}
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if target.ID == w.OwnerID {
		return domain.ErrSelfInvite
	}
	if contains(w.Invited, target.ID) {
		return domain.ErrAlreadyInvited
	}
	if contains(w.Accepted, target.ID) {
		return domain.ErrAlreadyAccepted
	}
	// A prior rejection is cleared by a fresh invitation.
	w.Rejected = removeID(w.Rejected, target.ID)
	w.Invited = append(w.Invited, target.ID)
	target.InvitedWTMs = append(target.InvitedWTMs, w.ID)
	target.Messages = append(target.Messages, inviteMessage(w))

	// Two independent writes with no transaction around them: a failure on
	// the second leaves the event updated but not the user, and is surfaced
	// to the caller as an error.
	if err := s.wtmRepo.Save(ctx, w); err != nil {
		return fmt.Errorf("save wtm: %w", err)
	}
	if err := s.userRepo.Save(ctx, target); err != nil {
		return fmt.Errorf("save invitee: %w", err)
	}
	s.sendInvitationEmail(ctx, target, w)
	return nil
}

func (s *wtmService) Accept(ctx context.Context, identifier int, actorID string) error {
	w, u, err := s.loadGuest(ctx, identifier, actorID)
	if err != nil {
		return err
	}
	if contains(w.Rejected, u.ID) {
		return domain.ErrAlreadyRejected
	}
	if !contains(w.Invited, u.ID) {
		return domain.ErrNotInvited
	}

	w.Invited = removeID(w.Invited, u.ID)
	w.Accepted = append(w.Accepted, u.ID)
	u.InvitedWTMs = removeID(u.InvitedWTMs, w.ID)
	if !contains(u.ParticipantWTMs, w.ID) {
		u.ParticipantWTMs = append(u.ParticipantWTMs, w.ID)
	}

	if completionDue(w) {
		if err := s.userRepo.AppendMessage(ctx, w.OwnerID, completionMessage(w)); err != nil {
			return fmt.Errorf("notify owner: %w", err)
		}
	}
	joined := domain.Message{Text: fmt.Sprintf("%s has joined your WTM %s", u.Username, w.Name), EventID: w.Identifier}
	if err := s.userRepo.AppendMessage(ctx, w.OwnerID, joined); err != nil {
		return fmt.Errorf("notify owner: %w", err)
	}

	if err := s.wtmRepo.Save(ctx, w); err != nil {
		return fmt.Errorf("save wtm: %w", err)
	}
	if err := s.userRepo.Save(ctx, u); err != nil {
		return fmt.Errorf("save guest: %w", err)
	}
	return nil
}

func (s *wtmService) Decline(ctx context.Context, identifier int, actorID string) error {
	w, u, err := s.loadGuest(ctx, identifier, actorID)
	if err != nil {
		return err
	}
	if !contains(w.Invited, u.ID) {
		return domain.ErrNotInvited
	}

	w.Invited = removeID(w.Invited, u.ID)
	w.Rejected = append(w.Rejected, u.ID)
	u.InvitedWTMs = removeID(u.InvitedWTMs, w.ID)

	declined := domain.Message{Text: fmt.Sprintf("%s has declined your WTM invite for %s", u.Username, w.Name), EventID: w.Identifier}
	if err := s.userRepo.AppendMessage(ctx, w.OwnerID, declined); err != nil {
		return fmt.Errorf("notify owner: %w", err)
	}
	if completionDue(w) {
		if err := s.userRepo.AppendMessage(ctx, w.OwnerID, completionMessage(w)); err != nil {
			return fmt.Errorf("notify owner: %w", err)
		}
	}

	if err := s.wtmRepo.Save(ctx, w); err != nil {
		return fmt.Errorf("save wtm: %w", err)
	}
	if err := s.userRepo.Save(ctx, u); err != nil {
		return fmt.Errorf("save guest: %w", err)
	}
	return nil
}

func (s *wtmService) Leave(ctx context.Context, identifier int, actorID string) error {
	w, u, err := s.loadGuest(ctx, identifier, actorID)
	if err != nil {
		return err
	}
	if !contains(w.Accepted, u.ID) {
		return domain.ErrAlreadyLeft
	}

	// Leaving returns the guest to none, not rejected: they can be invited
	// again without clearing anything.
	w.Accepted = removeID(w.Accepted, u.ID)
	u.ParticipantWTMs = removeID(u.ParticipantWTMs, w.ID)

	left := domain.Message{Text: fmt.Sprintf("%s has left your WTM %s", u.Username, w.Name), EventID: w.Identifier}
	if err := s.userRepo.AppendMessage(ctx, w.OwnerID, left); err != nil {
		return fmt.Errorf("notify owner: %w", err)
	}

	if err := s.wtmRepo.Save(ctx, w); err != nil {
		return fmt.Errorf("save wtm: %w", err)
	}
	if err := s.userRepo.Save(ctx, u); err != nil {
		return fmt.Errorf("save guest: %w", err)
	}
	return nil
}

func (s *wtmService) Respond(ctx context.Context, identifier int, actorID string, times []domain.ResponseTime) (*domain.WTM, error) {
	w, err := s.wtmRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get wtm: %w", err)
	}

	// At most one response per responder: drop any previous entry before
	// appending, so re-submission replaces.
	for i, resp := range w.Responses {
		if resp.Responder == actorID {
			w.Responses = append(w.Responses[:i], w.Responses[i+1:]...)
			break
		}
	}
	w.Responses = append(w.Responses, domain.WTMResponse{Responder: actorID, Times: times})

	if err := s.wtmRepo.Save(ctx, w); err != nil {
		return nil, fmt.Errorf("save wtm: %w", err)
	}

	// The response is committed; the owner notification is best-effort and
	// must never fail the write.
	if completionDue(w) {
		if err := s.userRepo.AppendMessage(ctx, w.OwnerID, completionMessage(w)); err != nil {
			s.logger.WarnContext(ctx, "completion notification failed", "wtm", w.Identifier, "err", err)
		}
	}
	return w, nil
}

func (s *wtmService) Delete(ctx context.Context, identifier int, actorID string) error {
	// The owner filter on the delete is the authorization check: a non-owner
	// matches nothing and gets a plain not-found.
	w, err := s.wtmRepo.RemoveByIdentifierAndOwner(ctx, identifier, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove wtm: %w", err)
	}

	// Best-effort cascade: each member update is independent and safe to
	// re-run; the first failure is surfaced with the rest left as is.
	owner, err := s.userRepo.GetByID(ctx, w.OwnerID)
	if err == nil {
		owner.OwnedWTMs = removeID(owner.OwnedWTMs, w.ID)
		if err := s.userRepo.Save(ctx, owner); err != nil {
			return fmt.Errorf("save owner: %w", err)
		}
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("get owner: %w", err)
	}

	deleted := domain.Message{Text: fmt.Sprintf("The WTM %s has been deleted.", w.Name), EventID: w.Identifier}
	if err := s.cascadeRemoval(ctx, w.Accepted, w.ID, deleted, participantWTMs); err != nil {
		return err
	}
	if err := s.cascadeRemoval(ctx, w.Invited, w.ID, deleted, invitedWTMs); err != nil {
		return err
	}
	return nil
}

// Which user-side mirror list a cascade touches.
type mirrorList int

const (
	participantWTMs mirrorList = iota
	invitedWTMs
)

func (s *wtmService) cascadeRemoval(ctx context.Context, memberIDs []string, wtmID string, msg domain.Message, list mirrorList) error {
	for _, id := range memberIDs {
		u, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return fmt.Errorf("get member: %w", err)
		}
		switch list {
		case participantWTMs:
			u.ParticipantWTMs = removeID(u.ParticipantWTMs, wtmID)
		case invitedWTMs:
			u.InvitedWTMs = removeID(u.InvitedWTMs, wtmID)
		}
		u.Messages = append(u.Messages, msg)
		if err := s.userRepo.Save(ctx, u); err != nil {
			return fmt.Errorf("save member %q: %w", u.Username, err)
		}
	}
	return nil
}

func (s *wtmService) Remind(ctx context.Context, identifier int, actorID string) error {
	w, err := s.wtmRepo.GetByIdentifierAndOwner(ctx, identifier, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get wtm: %w", err)
	}
	owner, err := s.userRepo.GetByID(ctx, w.OwnerID)
	if err != nil {
		return fmt.Errorf("get owner: %w", err)
	}
	msg := domain.Message{
		Text:    fmt.Sprintf("%s has sent you a reminder to update/finalize your availability poll for the WTM: %s", owner.Username, w.Name),
		EventID: w.Identifier,
	}
	for _, id := range append(append([]string{}, w.Invited...), w.Accepted...) {
		if err := s.userRepo.AppendMessage(ctx, id, msg); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return fmt.Errorf("remind member: %w", err)
		}
	}
	return nil
}

func (s *wtmService) Members(ctx context.Context, identifier int) (*domain.EventMembers, error) {
	w, err := s.wtmRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get wtm: %w", err)
	}
	names, err := s.usernamesByID(ctx, append(append(append([]string{}, w.Invited...), w.Accepted...), w.Rejected...))
	if err != nil {
		return nil, err
	}
	return &domain.EventMembers{
		Invited:  resolveNames(w.Invited, names),
		Accepted: resolveNames(w.Accepted, names),
		Rejected: resolveNames(w.Rejected, names),
	}, nil
}

func (s *wtmService) Retrieve(ctx context.Context, identifier int, actorID string) (*domain.WTMInfo, error) {
	w, err := s.wtmRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get wtm: %w", err)
	}
	owner, err := s.userRepo.GetByID(ctx, w.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}

	responderIDs := make([]string, 0, len(w.Responses))
	for _, resp := range w.Responses {
		responderIDs = append(responderIDs, resp.Responder)
	}
	names, err := s.usernamesByID(ctx, responderIDs)
	if err != nil {
		return nil, err
	}

	info := &domain.WTMInfo{
		Name:       w.Name,
		Owner:      owner.Username,
		Identifier: w.Identifier,
		Dates:      w.Dates,
		StartTime:  w.StartTime,
		EndTime:    w.EndTime,
		Responses:  []domain.NamedResponse{},
		Invited:    w.Invited,
		IsOwner:    actorID == w.OwnerID,
	}
	for _, resp := range w.Responses {
		named := domain.NamedResponse{Responder: names[resp.Responder], Times: resp.Times}
		info.Responses = append(info.Responses, named)
		if resp.Responder == actorID {
			info.PersonalResponse = named
		}
	}
	return info, nil
}

func (s *wtmService) usernamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

// resolveNames maps ids to usernames in list order, skipping ids that no
// longer resolve to a user.
func resolveNames(ids []string, names map[string]string) []string {
	out := []string{}
	for _, id := range ids {
		if name, ok := names[id]; ok {
			out = append(out, name)
		}
	}
	return out
}

func (s *wtmService) loadGuest(ctx context.Context, identifier int, actorID string) (*domain.WTM, *domain.User, error) {
	w, err := s.wtmRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get wtm: %w", err)
	}
	if actorID == w.OwnerID {
		return nil, nil, domain.ErrForbidden
	}
	u, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	return w, u, nil
}

func (s *wtmService) sendInvitationEmail(ctx context.Context, target *domain.User, w *domain.WTM) {
	if s.emailService == nil {
		return
	}
	data := &domain.InvitationEmailData{
		Email:      target.Email,
		Username:   target.Username,
		EventName:  w.Name,
		Identifier: w.Identifier,
	}
	if err := s.emailService.SendInvitation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "invitation email failed", "email", target.Email, "wtm", w.Identifier, "err", err)
	}
}

func inviteMessage(w *domain.WTM) domain.Message {
	return domain.Message{
		Text:    fmt.Sprintf("You have been invited to %s. Click to accept/decline", w.Name),
		EventID: w.Identifier,
	}
}

func completionMessage(w *domain.WTM) domain.Message {
	return domain.Message{
		Text:    fmt.Sprintf("All guests have responded to your WTM: %s", w.Name),
		EventID: w.Identifier,
	}
}
