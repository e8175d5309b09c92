package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"whentomeet/internal/domain"
)

const userColumns = `id, email, username, password_hash, departure,
		owned_wtms, participant_wtms, invited_wtms,
		owned_appts, participant_appts, invited_appts,
		messages, created_at, updated_at`

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns a UserRepository backed by Postgres. The record
// is document-shaped: membership lists are uuid[] columns, the departure
// point and inbox are jsonb.
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Email, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		return mapUserConstraint(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.DB.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.DB.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.DB.QueryRowContext(ctx, query, username))
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Save(ctx context.Context, u *domain.User) error {
	departure, err := marshalJSON(geoOrNil(u.Departure))
	if err != nil {
		return err
	}
	messages, err := marshalJSON(nonNilMessages(u.Messages))
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	query := `
		UPDATE users
		SET email = $1, username = $2, password_hash = $3, departure = $4,
			owned_wtms = $5, participant_wtms = $6, invited_wtms = $7,
			owned_appts = $8, participant_appts = $9, invited_appts = $10,
			messages = $11, updated_at = $12
		WHERE id = $13
	`
	res, err := r.DB.ExecContext(ctx, query,
		u.Email, u.Username, u.PasswordHash, departure,
		pq.Array(u.OwnedWTMs), pq.Array(u.ParticipantWTMs), pq.Array(u.InvitedWTMs),
		pq.Array(u.OwnedAppointments), pq.Array(u.ParticipantAppointments), pq.Array(u.InvitedAppointments),
		messages, u.UpdatedAt, u.ID,
	)
	if err != nil {
		return mapUserConstraint(err)
	}
	return requireUserRow(res)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	return requireUserRow(res)
}

func (r *userRepository) AppendMessage(ctx context.Context, id string, msg domain.Message) error {
	raw, err := marshalJSON(msg)
	if err != nil {
		return err
	}
	query := `UPDATE users SET messages = messages || $1::jsonb, updated_at = now() WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, raw, id)
	if err != nil {
		return err
	}
	return requireUserRow(res)
}

func (r *userRepository) DrainMessages(ctx context.Context, id string) ([]domain.Message, error) {
	// Single statement so a message appended between the read and the clear
	// cannot be lost; prev is locked until the update commits.
	query := `
		UPDATE users u
		SET messages = '[]'::jsonb, updated_at = now()
		FROM (SELECT id, messages FROM users WHERE id = $1 FOR UPDATE) prev
		WHERE u.id = prev.id
		RETURNING prev.messages
	`
	var raw []byte
	if err := r.DB.QueryRowContext(ctx, query, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	msgs := []domain.Message{}
	if err := unmarshalJSON(raw, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

func (r *userRepository) ClearMessages(ctx context.Context, id string) error {
	query := `UPDATE users SET messages = '[]'::jsonb, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireUserRow(res)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var departure, messages []byte
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &departure,
		pq.Array(&u.OwnedWTMs), pq.Array(&u.ParticipantWTMs), pq.Array(&u.InvitedWTMs),
		pq.Array(&u.OwnedAppointments), pq.Array(&u.ParticipantAppointments), pq.Array(&u.InvitedAppointments),
		&messages, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if len(departure) > 0 {
		u.Departure = &domain.GeoPoint{}
		if err := unmarshalJSON(departure, u.Departure); err != nil {
			return nil, fmt.Errorf("decode departure: %w", err)
		}
	}
	u.Messages = []domain.Message{}
	if err := unmarshalJSON(messages, &u.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return u, nil
}

func mapUserConstraint(err error) error {
	switch {
	case isUniqueViolation(err, "email"):
		return domain.ErrDuplicateEmail
	case isUniqueViolation(err, "username"):
		return domain.ErrDuplicateUsername
	default:
		return err
	}
}

func requireUserRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func nonNilMessages(msgs []domain.Message) []domain.Message {
	if msgs == nil {
		return []domain.Message{}
	}
	return msgs
}
