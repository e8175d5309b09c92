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

const wtmColumns = `id, name, owner_id, identifier, dates, start_time, end_time,
		invited, accepted, rejected, responses, created_at, updated_at`

type wtmRepository struct {
	DB *sql.DB
}

// NewWTMRepository returns a WTMRepository backed by Postgres.
func NewWTMRepository(db *sql.DB) domain.WTMRepository {
	return &wtmRepository{DB: db}
}

func (r *wtmRepository) Create(ctx context.Context, w *domain.WTM) error {
	dates, err := marshalJSON(w.Dates)
	if err != nil {
		return err
	}
	responses, err := marshalJSON(nonNilResponses(w.Responses))
	if err != nil {
		return err
	}
	query := `
		INSERT INTO wtms (name, owner_id, identifier, dates, start_time, end_time,
			invited, accepted, rejected, responses, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err = r.DB.QueryRowContext(ctx, query,
		w.Name, w.OwnerID, w.Identifier, dates, w.StartTime, w.EndTime,
		pq.Array(w.Invited), pq.Array(w.Accepted), pq.Array(w.Rejected),
		responses, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
	if err != nil {
		if isUniqueViolation(err, "identifier") {
			return domain.ErrDuplicateIdentifier
		}
		return err
	}
	return nil
}

func (r *wtmRepository) GetByIdentifier(ctx context.Context, identifier int) (*domain.WTM, error) {
	query := `SELECT ` + wtmColumns + ` FROM wtms WHERE identifier = $1`
	return scanWTM(r.DB.QueryRowContext(ctx, query, identifier))
}

func (r *wtmRepository) GetByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*domain.WTM, error) {
	query := `SELECT ` + wtmColumns + ` FROM wtms WHERE identifier = $1 AND owner_id = $2`
	return scanWTM(r.DB.QueryRowContext(ctx, query, identifier, ownerID))
}

func (r *wtmRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.WTM, error) {
	query := `SELECT ` + wtmColumns + ` FROM wtms WHERE owner_id = $1 ORDER BY created_at`
	return r.list(ctx, query, ownerID)
}

func (r *wtmRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.WTM, error) {
	if len(ids) == 0 {
		return []*domain.WTM{}, nil
	}
	query := `SELECT ` + wtmColumns + ` FROM wtms WHERE id = ANY($1)`
	return r.list(ctx, query, pq.Array(ids))
}

func (r *wtmRepository) list(ctx context.Context, query string, arg any) ([]*domain.WTM, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wtms := []*domain.WTM{}
	for rows.Next() {
		w, err := scanWTM(rows)
		if err != nil {
			return nil, err
		}
		wtms = append(wtms, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return wtms, nil
}

func (r *wtmRepository) Save(ctx context.Context, w *domain.WTM) error {
	dates, err := marshalJSON(w.Dates)
	if err != nil {
		return err
	}
	responses, err := marshalJSON(nonNilResponses(w.Responses))
	if err != nil {
		return err
	}
	w.UpdatedAt = time.Now()
	query := `
		UPDATE wtms
		SET name = $1, dates = $2, start_time = $3, end_time = $4,
			invited = $5, accepted = $6, rejected = $7, responses = $8, updated_at = $9
		WHERE id = $10
	`
	res, err := r.DB.ExecContext(ctx, query,
		w.Name, dates, w.StartTime, w.EndTime,
		pq.Array(w.Invited), pq.Array(w.Accepted), pq.Array(w.Rejected),
		responses, w.UpdatedAt, w.ID,
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

func (r *wtmRepository) RemoveByIdentifierAndOwner(ctx context.Context, identifier int, ownerID string) (*domain.WTM, error) {
	query := `
		DELETE FROM wtms
		WHERE identifier = $1 AND owner_id = $2
		RETURNING ` + wtmColumns
	return scanWTM(r.DB.QueryRowContext(ctx, query, identifier, ownerID))
}

func scanWTM(row rowScanner) (*domain.WTM, error) {
	w := &domain.WTM{}
	var dates, responses []byte
	err := row.Scan(
		&w.ID, &w.Name, &w.OwnerID, &w.Identifier, &dates, &w.StartTime, &w.EndTime,
		pq.Array(&w.Invited), pq.Array(&w.Accepted), pq.Array(&w.Rejected),
		&responses, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := unmarshalJSON(dates, &w.Dates); err != nil {
		return nil, fmt.Errorf("decode dates: %w", err)
	}
	w.Responses = []domain.WTMResponse{}
	if err := unmarshalJSON(responses, &w.Responses); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	return w, nil
}

func nonNilResponses(rs []domain.WTMResponse) []domain.WTMResponse {
	if rs == nil {
		return []domain.WTMResponse{}
	}
	return rs
}
