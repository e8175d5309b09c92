package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"whentomeet/internal/domain"
)

type appointmentService struct {
	apptRepo     domain.AppointmentRepository
	userRepo     domain.UserRepository
	emailService domain.EmailService
	logger       *slog.Logger
}

// NewAppointmentService creates an AppointmentService with the given
// repositories and ports.
func NewAppointmentService(apptRepo domain.AppointmentRepository, userRepo domain.UserRepository, emailService domain.EmailService, logger *slog.Logger) domain.AppointmentService {
	return &appointmentService{
		apptRepo:     apptRepo,
		userRepo:     userRepo,
		emailService: emailService,
		logger:       logger,
	}
}

// Appointments have no per-slot responses, so the completion notification is
// keyed on the invited list emptying alone.
func appointmentComplete(a *domain.Appointment) bool {
	return len(a.Invited) == 0
}

func (s *appointmentService) Create(ctx context.Context, ownerID, name string, start time.Time, end *time.Time, destination domain.GeoPoint) (*domain.Appointment, error) {
	if end != nil && start.After(*end) {
		return nil, fmt.Errorf("start time is later than end time")
	}
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}

	now := time.Now()
	a := &domain.Appointment{
		Name:        name,
		OwnerID:     owner.ID,
		StartTime:   start,
		EndTime:     end,
		Destination: &destination,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for range identifierAttempts {
		a.Identifier = randomIdentifier()
		err = s.apptRepo.Create(ctx, a)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateIdentifier) {
			continue
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", domain.ErrDuplicateIdentifier)
	}

	owner.OwnedAppointments = append(owner.OwnedAppointments, a.ID)
	if err := s.userRepo.Save(ctx, owner); err != nil {
		return nil, fmt.Errorf("save owner: %w", err)
	}
	return a, nil
}

func (s *appointmentService) Modify(ctx context.Context, identifier int, actorID, name string, start time.Time, end *time.Time, destination domain.GeoPoint) error {
	if end != nil && start.After(*end) {
		return fmt.Errorf("start time is later than end time")
	}
	// Lookup by identifier and owner: a non-owner gets a plain not-found.
	a, err := s.apptRepo.GetByIdentifierAndOwner(ctx, identifier, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get appointment: %w", err)
	}
	a.Name = name
	a.StartTime = start
	a.EndTime = end
	a.Destination = &destination
	if err := s.apptRepo.Save(ctx, a); err != nil {
		return fmt.Errorf("save appointment: %w", err)
	}
	return nil
}

func (s *appointmentService) Invite(ctx context.Context, identifier int, actorID, username string) error {
	a, err := s.apptRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get appointment: %w", err)
	}
	if actorID != a.OwnerID {
		return domain.ErrForbidden
	}
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if target.ID == a.OwnerID {
		return domain.ErrSelfInvite
	}
	if contains(a.Invited, target.ID) {
		return domain.ErrAlreadyInvited
	}
	if a.GuestIndex(target.ID) != -1 {
		return domain.ErrAlreadyAccepted
	}
	a.Rejected = removeID(a.Rejected, target.ID)
	a.Invited = append(a.Invited, target.ID)
	target.InvitedAppointments = append(target.InvitedAppointments, a.ID)
	target.Messages = append(target.Messages, domain.Message{
		Text:    fmt.Sprintf("You have been invited to %s. Click to accept/decline", a.Name),
		EventID: a.Identifier,
	})

	if err := s.apptRepo.Save(ctx, a); err != nil {
		return fmt.Errorf("save appointment: %w", err)
	}
	if err := s.userRepo.Save(ctx, target); err != nil {
		return fmt.Errorf("save invitee: %w", err)
	}
	if s.emailService != nil {
		data := &domain.InvitationEmailData{
			Email:      target.Email,
			Username:   target.Username,
			EventName:  a.Name,
			Identifier: a.Identifier,
		}
		if err := s.emailService.SendInvitation(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "invitation email failed", "email", target.Email, "appointment", a.Identifier, "err", err)
		}
	}
	return nil
}

func (s *appointmentService) Accept(ctx context.Context, identifier int, actorID string) error {
	a, u, err := s.loadGuest(ctx, identifier, actorID)
	if err != nil {
		return err
	}
	if contains(a.Rejected, u.ID) {
		return domain.ErrAlreadyRejected
	}
	if !contains(a.Invited, u.ID) {
		return domain.ErrNotInvited
	}

	a.Invited = removeID(a.Invited, u.ID)
	// The accepted entry snapshots the guest's departure point on record at
	// accept time; updating the profile later does not move it.
	a.Accepted = append(a.Accepted, domain.AppointmentGuest{MemberID: u.ID, Departure: u.Departure})
	u.InvitedAppointments = removeID(u.InvitedAppointments, a.ID)
	if !contains(u.ParticipantAppointments, a.ID) {
		u.ParticipantAppointments = append(u.ParticipantAppointments, a.ID)
	}

	if appointmentComplete(a) {
		if err := s.userRepo.AppendMessage(ctx, a.OwnerID, appointmentCompletionMessage(a)); err != nil {
			return fmt.Errorf("notify owner: %w", err)
		}
	}
	joined := domain.Message{Text: fmt.Sprintf("%s has joined your appointment %s", u.Username, a.Name), EventID: a.Identifier}
	if err := s.userRepo.AppendMessage(ctx, a.OwnerID, joined); err != nil {
		return fmt.Errorf("notify owner: %w", err)
	}

	if err := s.apptRepo.Save(ctx, a); err != nil {
		return fmt.Errorf("save appointment: %w", err)
	}
	if err := s.userRepo.Save(ctx, u); err != nil {
		return fmt.Errorf("save guest: %w", err)
	}
	return nil
}

func (s *appointmentService) Reject(ctx context.Context, identifier int, actorID string) error {
	a, u, err := s.loadGuest(ctx, identifier, actorID)
	if err != nil {
		return err
	}
	if !contains(a.Invited, u.ID) {
		return domain.ErrNotInvited
	}

	a.Invited = removeID(a.Invited, u.ID)
	a.Rejected = append(a.Rejected, u.ID)
	u.InvitedAppointments = removeID(u.InvitedAppointments, a.ID)

	declined := domain.Message{Text: fmt.Sprintf("%s has declined your appointment invite for %s", u.Username, a.Name), EventID: a.Identifier}
	if err := s.userRepo.AppendMessage(ctx, a.OwnerID, declined); err != nil {
		return fmt.Errorf("notify owner: %w", err)
	}
	if appointmentComplete(a) {
		if err := s.userRepo.AppendMessage(ctx, a.OwnerID, appointmentCompletionMessage(a)); err != nil {
			return fmt.Errorf("notify owner: %w", err)
		}
	}

	if err := s.apptRepo.Save(ctx, a); err != nil {
		return fmt.Errorf("save appointment: %w", err)
	}
	if err := s.userRepo.Save(ctx, u); err != nil {
		return fmt.Errorf("save guest: %w", err)
	}
	return nil
}

func (s *appointmentService) Delete(ctx context.Context, identifier int, actorID string) error {
	a, err := s.apptRepo.RemoveByIdentifierAndOwner(ctx, identifier, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove appointment: %w", err)
	}

	owner, err := s.userRepo.GetByID(ctx, a.OwnerID)
	if err == nil {
		owner.OwnedAppointments = removeID(owner.OwnedAppointments, a.ID)
		if err := s.userRepo.Save(ctx, owner); err != nil {
			return fmt.Errorf("save owner: %w", err)
		}
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("get owner: %w", err)
	}

	deleted := domain.Message{Text: fmt.Sprintf("The appointment %s has been deleted.", a.Name), EventID: a.Identifier}
	for _, g := range a.Accepted {
		if err := s.removeMemberRef(ctx, g.MemberID, a.ID, deleted, true); err != nil {
			return err
		}
	}
	for _, id := range a.Invited {
		if err := s.removeMemberRef(ctx, id, a.ID, deleted, false); err != nil {
			return err
		}
	}
	return nil
}

func (s *appointmentService) removeMemberRef(ctx context.Context, userID, apptID string, msg domain.Message, accepted bool) error {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("get member: %w", err)
	}
	if accepted {
		u.ParticipantAppointments = removeID(u.ParticipantAppointments, apptID)
	} else {
		u.InvitedAppointments = removeID(u.InvitedAppointments, apptID)
	}
	u.Messages = append(u.Messages, msg)
	if err := s.userRepo.Save(ctx, u); err != nil {
		return fmt.Errorf("save member %q: %w", u.Username, err)
	}
	return nil
}

func (s *appointmentService) Members(ctx context.Context, identifier int) (*domain.EventMembers, error) {
	a, err := s.apptRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	acceptedIDs := make([]string, 0, len(a.Accepted))
	for _, g := range a.Accepted {
		acceptedIDs = append(acceptedIDs, g.MemberID)
	}
	all := append(append(append([]string{}, a.Invited...), acceptedIDs...), a.Rejected...)
	users, err := s.userRepo.ListByIDs(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return &domain.EventMembers{
		Invited:  resolveNames(a.Invited, names),
		Accepted: resolveNames(acceptedIDs, names),
		Rejected: resolveNames(a.Rejected, names),
	}, nil
}

func (s *appointmentService) Retrieve(ctx context.Context, identifier int) (*domain.AppointmentInfo, error) {
	a, err := s.apptRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	owner, err := s.userRepo.GetByID(ctx, a.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	return &domain.AppointmentInfo{
		Name:        a.Name,
		Owner:       owner.Username,
		Identifier:  a.Identifier,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		Destination: a.Destination,
	}, nil
}

func (s *appointmentService) loadGuest(ctx context.Context, identifier int, actorID string) (*domain.Appointment, *domain.User, error) {
	a, err := s.apptRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get appointment: %w", err)
	}
	if actorID == a.OwnerID {
		return nil, nil, domain.ErrForbidden
	}
	u, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	return a, u, nil
}

func appointmentCompletionMessage(a *domain.Appointment) domain.Message {
	return domain.Message{
		Text:    fmt.Sprintf("All guests have responded to your appointment: %s", a.Name),
		EventID: a.Identifier,
	}
}
