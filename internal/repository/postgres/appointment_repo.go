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

const appointmentColumns = `id, name, owner_id, identifier, start_time, end_time,
		destination, invited, accepted, rejected, created_at, updated_at`

type appointmentRepository struct {
	DB *sql.DB
}

// NewAppointmentRepository returns an AppointmentRepository backed by
// Postgres. Appointment identifiers live in their own unique index,
// independent of the WTM namespace.
func NewAppointmentRepository(db *sql.DB) domain.AppointmentRepository {
	return &appointmentRepository{DB: db}
}

func (r *appointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	destination, err := marshalJSON(geoOrNil(a.Destination))
	if err != nil {
		return err
	}
	accepted, err := marshalJSON(nonNilGuests(a.Accepted))
	if err != nil {
		return err
	}
	query := `
		INSERT INTO appointments (name, owner_id, identifier, start_time, end_time,
			destination, invited, accepted, rejected, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err = r.DB.QueryRowContext(ctx, query,
		a.Name, a.OwnerID, a.Identifier, a.StartTime, a.EndTime,
		destination, pq.Array(a.Invited), accepted, pq.Array(a.Rejected),
		a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err, "identifier") {
			return domain.ErrDuplicateIdentifier
		}
		return err
	}
	return nil
}

func (r *appointmentRepository) GetByIdentifier(ctx context.Context, identifier int) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE identifier = $1`
	return scanAppointment(r.DB.QueryRowContext(ctx, query, identifier))
}

func (r *appointmentRepository) GetByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE identifier = $1 AND owner_id = $2`
	return scanAppointment(r.DB.QueryRowContext(ctx, query, identifier, ownerID))
}

func (r *appointmentRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Appointment, error) {
	if len(ids) == 0 {
		return []*domain.Appointment{}, nil
	}
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ANY($1)`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := []*domain.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *appointmentRepository) Save(ctx context.Context, a *domain.Appointment) error {
	destination, err := marshalJSON(geoOrNil(a.Destination))
	if err != nil {
		return err
	}
	accepted, err := marshalJSON(nonNilGuests(a.Accepted))
	if err != nil {
		return err
	}
	a.UpdatedAt = time.Now()
	query := `
		UPDATE appointments
		SET name = $1, start_time = $2, end_time = $3, destination = $4,
			invited = $5, accepted = $6, rejected = $7, updated_at = $8
		WHERE id = $9
	`
	res, err := r.DB.ExecContext(ctx, query,
		a.Name, a.StartTime, a.EndTime, destination,
		pq.Array(a.Invited), accepted, pq.Array(a.Rejected),
		a.UpdatedAt, a.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) RemoveByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*domain.Appointment, error) {
	query := `
		DELETE FROM appointments
		WHERE identifier = $1 AND owner_id = $2
		RETURNING ` + appointmentColumns
	return scanAppointment(r.DB.QueryRowContext(ctx, query, identifier, ownerID))
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	a := &domain.Appointment{}
	var destination, accepted []byte
	var endTime sql.NullTime
	err := row.Scan(
		&a.ID, &a.Name, &a.OwnerID, &a.Identifier, &a.StartTime, &endTime,
		&destination, pq.Array(&a.Invited), &accepted, pq.Array(&a.Rejected),
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if endTime.Valid {
		t := endTime.Time
		a.EndTime = &t
	}
	if len(destination) > 0 {
		a.Destination = &domain.GeoPoint{}
		if err := unmarshalJSON(destination, a.Destination); err != nil {
			return nil, fmt.Errorf("decode destination: %w", err)
		}
	}
	a.Accepted = []domain.AppointmentGuest{}
	if err := unmarshalJSON(accepted, &a.Accepted); err != nil {
		return nil, fmt.Errorf("decode accepted: %w", err)
	}
	return a, nil
}

func geoOrNil(p *domain.GeoPoint) any {
	if p == nil {
		return nil
	}
	return p
}

func nonNilGuests(gs []domain.AppointmentGuest) []domain.AppointmentGuest {
	if gs == nil {
		return []domain.AppointmentGuest{}
	}
	return gs
}
