package assistants

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, a *Assistant) error
	GetByID(ctx context.Context, ownerID, id string) (*Assistant, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Assistant, error)
	Update(ctx context.Context, a *Assistant) (int64, error)
	Delete(ctx context.Context, ownerID, id string) (int64, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Create(ctx context.Context, a *Assistant) error {
	query := `
		INSERT INTO assistants (id, owner_user_id, name, voice, language, personality, image,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.OwnerUserID, a.Name, a.Voice, a.Language, a.Personality, a.Image,
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting assistant: %w", err)
	}
	return nil
}

func (r *pgRepository) GetByID(ctx context.Context, ownerID, id string) (*Assistant, error) {
	query := `
		SELECT id, owner_user_id, name, voice, language, personality, image, created_at, updated_at
		FROM assistants
		WHERE id = $1 AND owner_user_id = $2`

	var a Assistant
	err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(
		&a.ID, &a.OwnerUserID, &a.Name, &a.Voice, &a.Language, &a.Personality, &a.Image,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying assistant: %w", err)
	}
	return &a, nil
}

func (r *pgRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Assistant, error) {
	query := `
		SELECT id, owner_user_id, name, voice, language, personality, image, created_at, updated_at
		FROM assistants
		WHERE owner_user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing assistants: %w", err)
	}
	defer rows.Close()

	var out []*Assistant
	for rows.Next() {
		var a Assistant
		if err := rows.Scan(
			&a.ID, &a.OwnerUserID, &a.Name, &a.Voice, &a.Language, &a.Personality, &a.Image,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning assistant: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assistants: %w", err)
	}
	return out, nil
}

func (r *pgRepository) Update(ctx context.Context, a *Assistant) (int64, error) {
	query := `
		UPDATE assistants
		SET name = $3, voice = $4, language = $5, personality = $6, image = $7, updated_at = now()
		WHERE id = $1 AND owner_user_id = $2`

	tag, err := r.pool.Exec(ctx, query,
		a.ID, a.OwnerUserID, a.Name, a.Voice, a.Language, a.Personality, a.Image)
	if err != nil {
		return 0, fmt.Errorf("updating assistant: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgRepository) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM assistants WHERE id = $1 AND owner_user_id = $2`, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("deleting assistant: %w", err)
	}
	return tag.RowsAffected(), nil
}
