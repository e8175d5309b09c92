package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"whentomeet/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	userRepo     domain.UserRepository
	wtmRepo      domain.WTMRepository
	hasher       domain.PasswordHasher
	emailService domain.EmailService
	logger       *slog.Logger
}

// NewUserService creates a UserService with the given repositories and ports.
// emailService may be nil, in which case no emails are sent.
func NewUserService(userRepo domain.UserRepository, wtmRepo domain.WTMRepository, hasher domain.PasswordHasher, emailService domain.EmailService, logger *slog.Logger) domain.UserService {
	return &userService{
		userRepo:     userRepo,
		wtmRepo:      wtmRepo,
		hasher:       hasher,
		emailService: emailService,
		logger:       logger,
	}
}

func (s *userService) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup username: %w", err)
	}
	return true, nil
}

func (s *userService) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup email: %w", err)
	}
	return true, nil
}

func (s *userService) SignUp(ctx context.Context, email, username, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("invalid email format")
	}
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(email, username, hash, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Duplicate email/username is a user-facing conflict, not an
		// infrastructure failure.
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeEmailData{Email: user.Email, Username: user.Username}
		if err := s.emailService.SendWelcome(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "welcome email failed", "email", user.Email, "err", err)
		}
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) ResetPassword(ctx context.Context, userID, newPassword string) (bool, error) {
	if len(newPassword) < minPasswordLen {
		return false, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("update password: %w", err)
	}
	return true, nil
}

func (s *userService) GetMessages(ctx context.Context, userID string) ([]domain.Message, error) {
	msgs, err := s.userRepo.DrainMessages(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("drain messages: %w", err)
	}
	return msgs, nil
}

func (s *userService) ClearMessages(ctx context.Context, userID string) error {
	if err := s.userRepo.ClearMessages(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}

func (s *userService) UpdateDeparture(ctx context.Context, userID string, departure domain.GeoPoint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	user.Departure = &departure
	if err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *userService) OwnedWTMs(ctx context.Context, userID string) ([]domain.EventRef, error) {
	wtms, err := s.wtmRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned wtms: %w", err)
	}
	refs := make([]domain.EventRef, 0, len(wtms))
	for _, w := range wtms {
		refs = append(refs, domain.EventRef{Name: w.Name, Identifier: w.Identifier})
	}
	return refs, nil
}

func (s *userService) GuestWTMs(ctx context.Context, userID string) (*domain.GuestWTMs, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	invited, err := s.eventRefs(ctx, user.InvitedWTMs)
	if err != nil {
		return nil, err
	}
	accepted, err := s.eventRefs(ctx, user.ParticipantWTMs)
	if err != nil {
		return nil, err
	}
	return &domain.GuestWTMs{Invited: invited, Accepted: accepted}, nil
}

func (s *userService) eventRefs(ctx context.Context, ids []string) ([]domain.EventRef, error) {
	wtms, err := s.wtmRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list wtms: %w", err)
	}
	refs := make([]domain.EventRef, 0, len(wtms))
	for _, w := range wtms {
		refs = append(refs, domain.EventRef{Name: w.Name, Identifier: w.Identifier})
	}
	return refs, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
