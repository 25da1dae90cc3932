package chats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, chat *ChatSession) error
	GetByID(ctx context.Context, ownerID, id string) (*ChatSession, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*ChatSession, error)
	// ListByOwnerAfter returns the owner's sessions touched after the given
	// instant, newest first.
	ListByOwnerAfter(ctx context.Context, ownerID string, after time.Time, limit int) ([]*ChatSession, error)
	// Save persists the mutable parts of a session: message window, summary,
	// mode, and pending schedule.
	Save(ctx context.Context, chat *ChatSession) error
	Delete(ctx context.Context, ownerID, id string) (int64, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Create(ctx context.Context, chat *ChatSession) error {
	messages, err := json.Marshal(chat.Messages)
	if err != nil {
		return fmt.Errorf("marshaling messages: %w", err)
	}
	pending, err := marshalPending(chat.PendingSchedule)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO chats (id, owner_user_id, assistant_id, title, messages, summary_so_far,
			conversation_mode, pending_schedule, pending_schedule_step, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.pool.Exec(ctx, query,
		chat.ID, chat.OwnerUserID, chat.AssistantID, chat.Title, messages, chat.SummarySoFar,
		chat.Mode, pending, chat.PendingScheduleStep, chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting chat: %w", err)
	}
	return nil
}

func (r *pgRepository) GetByID(ctx context.Context, ownerID, id string) (*ChatSession, error) {
	query := `
		SELECT id, owner_user_id, assistant_id, title, messages, summary_so_far,
			conversation_mode, pending_schedule, pending_schedule_step, created_at, updated_at
		FROM chats
		WHERE id = $1 AND owner_user_id = $2`

	return scanChat(r.pool.QueryRow(ctx, query, id, ownerID))
}

func (r *pgRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*ChatSession, error) {
	query := `
		SELECT id, owner_user_id, assistant_id, title, messages, summary_so_far,
			conversation_mode, pending_schedule, pending_schedule_step, created_at, updated_at
		FROM chats
		WHERE owner_user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	defer rows.Close()

	var out []*ChatSession
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chats: %w", err)
	}
	return out, nil
}

func (r *pgRepository) ListByOwnerAfter(ctx context.Context, ownerID string, after time.Time, limit int) ([]*ChatSession, error) {
	query := `
		SELECT id, owner_user_id, assistant_id, title, messages, summary_so_far,
			conversation_mode, pending_schedule, pending_schedule_step, created_at, updated_at
		FROM chats
		WHERE owner_user_id = $1 AND updated_at > $2
		ORDER BY updated_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, ownerID, after, limit)
	if err != nil {
		return nil, fmt.Errorf("listing chats after %s: %w", after, err)
	}
	defer rows.Close()

	var out []*ChatSession
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chats: %w", err)
	}
	return out, nil
}

func (r *pgRepository) Save(ctx context.Context, chat *ChatSession) error {
	messages, err := json.Marshal(chat.Messages)
	if err != nil {
		return fmt.Errorf("marshaling messages: %w", err)
	}
	pending, err := marshalPending(chat.PendingSchedule)
	if err != nil {
		return err
	}

	query := `
		UPDATE chats
		SET title = $3, messages = $4, summary_so_far = $5, conversation_mode = $6,
			pending_schedule = $7, pending_schedule_step = $8, updated_at = now()
		WHERE id = $1 AND owner_user_id = $2`

	_, err = r.pool.Exec(ctx, query,
		chat.ID, chat.OwnerUserID, chat.Title, messages, chat.SummarySoFar, chat.Mode, pending,
		chat.PendingScheduleStep)
	if err != nil {
		return fmt.Errorf("saving chat: %w", err)
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM chats WHERE id = $1 AND owner_user_id = $2`, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("deleting chat: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanChat(row pgx.Row) (*ChatSession, error) {
	var chat ChatSession
	var messages []byte
	var pending []byte

	err := row.Scan(
		&chat.ID, &chat.OwnerUserID, &chat.AssistantID, &chat.Title, &messages, &chat.SummarySoFar,
		&chat.Mode, &pending, &chat.PendingScheduleStep, &chat.CreatedAt, &chat.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chat: %w", err)
	}

	if err := json.Unmarshal(messages, &chat.Messages); err != nil {
		return nil, fmt.Errorf("unmarshaling messages: %w", err)
	}
	if len(pending) > 0 {
		if err := json.Unmarshal(pending, &chat.PendingSchedule); err != nil {
			return nil, fmt.Errorf("unmarshaling pending schedule: %w", err)
		}
	}
	return &chat, nil
}

func marshalPending(pending map[string]any) ([]byte, error) {
	if pending == nil {
		return nil, nil
	}
	b, err := json.Marshal(pending)
	if err != nil {
		return nil, fmt.Errorf("marshaling pending schedule: %w", err)
	}
	return b, nil
}
