package schedules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, ownerID, id string) (*Schedule, error)
	// FindByIdentity resolves a schedule by its owner, title, and current
	// start time. Returns nil when no live schedule matches.
	FindByIdentity(ctx context.Context, ownerID, title string, startTime time.Time) (*Schedule, error)
	// FindByTitle resolves the most recently created live schedule with the
	// given title. Returns nil when none matches.
	FindByTitle(ctx context.Context, ownerID, title string) (*Schedule, error)
	// Update applies the non-nil fields and reports how many rows changed.
	Update(ctx context.Context, ownerID, id string, fields UpdateFields) (int64, error)
	// SoftDelete marks the schedule deleted and reports how many rows changed.
	SoftDelete(ctx context.Context, ownerID, id string) (int64, error)
	ListRange(ctx context.Context, ownerID string, from, to time.Time) ([]*Schedule, error)
	ListRecent(ctx context.Context, ownerID string, limit int) ([]*Schedule, error)
	// ListDue returns pending schedules starting at or before the cutoff
	// that have not yet been notified, across all owners.
	ListDue(ctx context.Context, cutoff time.Time, limit int) ([]*Schedule, error)
	MarkNotified(ctx context.Context, id string, at time.Time) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const scheduleColumns = `id, owner_user_id, title, start_time, end_time, recurrence,
	status, event_id, image, notified_at, created_at, updated_at, deleted_at`

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	err := row.Scan(
		&s.ID, &s.OwnerUserID, &s.Title, &s.StartTime, &s.EndTime, &s.Recurrence,
		&s.Status, &s.EventID, &s.Image, &s.NotifiedAt, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning schedule: %w", err)
	}
	return &s, nil
}

func (r *pgRepository) Create(ctx context.Context, s *Schedule) error {
	query := `
		INSERT INTO schedules (id, owner_user_id, title, start_time, end_time, recurrence,
			status, event_id, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.OwnerUserID, s.Title, s.StartTime, s.EndTime, s.Recurrence,
		s.Status, s.EventID, s.Image, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting schedule: %w", err)
	}
	return nil
}

func (r *pgRepository) GetByID(ctx context.Context, ownerID, id string) (*Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE id = $1 AND owner_user_id = $2 AND deleted_at IS NULL`

	return scanSchedule(r.pool.QueryRow(ctx, query, id, ownerID))
}

func (r *pgRepository) FindByIdentity(ctx context.Context, ownerID, title string, startTime time.Time) (*Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE owner_user_id = $1 AND title = $2 AND start_time = $3 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`

	return scanSchedule(r.pool.QueryRow(ctx, query, ownerID, title, startTime))
}

func (r *pgRepository) FindByTitle(ctx context.Context, ownerID, title string) (*Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE owner_user_id = $1 AND title = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`

	return scanSchedule(r.pool.QueryRow(ctx, query, ownerID, title))
}

func (r *pgRepository) Update(ctx context.Context, ownerID, id string, fields UpdateFields) (int64, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id, ownerID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if fields.Title != nil {
		sets = append(sets, "title = "+arg(*fields.Title))
	}
	if fields.StartTime != nil {
		sets = append(sets, "start_time = "+arg(*fields.StartTime))
	}
	if fields.EndTime != nil {
		sets = append(sets, "end_time = "+arg(*fields.EndTime))
	}
	if fields.Recurrence != nil {
		sets = append(sets, "recurrence = "+arg(*fields.Recurrence))
	}
	if fields.Status != nil {
		sets = append(sets, "status = "+arg(*fields.Status))
	}
	if fields.Image != nil {
		sets = append(sets, "image = "+arg(*fields.Image))
	}

	query := fmt.Sprintf(`
		UPDATE schedules
		SET %s
		WHERE id = $1 AND owner_user_id = $2 AND deleted_at IS NULL`,
		strings.Join(sets, ", "))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("updating schedule: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgRepository) SoftDelete(ctx context.Context, ownerID, id string) (int64, error) {
	query := `
		UPDATE schedules
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND owner_user_id = $2 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("deleting schedule: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgRepository) ListRange(ctx context.Context, ownerID string, from, to time.Time) ([]*Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE owner_user_id = $1 AND start_time >= $2 AND start_time < $3 AND deleted_at IS NULL
		ORDER BY start_time ASC`

	rows, err := r.pool.Query(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing schedules in range: %w", err)
	}
	defer rows.Close()

	return collectSchedules(rows)
}

func (r *pgRepository) ListRecent(ctx context.Context, ownerID string, limit int) ([]*Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE owner_user_id = $1 AND deleted_at IS NULL
		ORDER BY start_time DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent schedules: %w", err)
	}
	defer rows.Close()

	return collectSchedules(rows)
}

func (r *pgRepository) ListDue(ctx context.Context, cutoff time.Time, limit int) ([]*Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE status = $1 AND start_time <= $2 AND notified_at IS NULL AND deleted_at IS NULL
		ORDER BY start_time ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, StatusPending, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("listing due schedules: %w", err)
	}
	defer rows.Close()

	return collectSchedules(rows)
}

func (r *pgRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE schedules
		SET notified_at = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	if _, err := r.pool.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("marking schedule notified: %w", err)
	}
	return nil
}

func collectSchedules(rows pgx.Rows) ([]*Schedule, error) {
	var out []*Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedules: %w", err)
	}
	return out, nil
}
