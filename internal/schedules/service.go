package schedules

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/CommanderOutpost/remindria/internal/api"
	"github.com/CommanderOutpost/remindria/internal/events"
)

type Service struct {
	repo      Repository
	publisher *events.Publisher
}

func NewService(repo Repository, publisher *events.Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

type CreateInput struct {
	Title      string
	StartTime  time.Time
	EndTime    *time.Time
	Recurrence string
	EventID    string
	Image      string
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*Schedule, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, api.NewBadRequestError("invalid owner id")
	}

	now := time.Now()
	sched := &Schedule{
		ID:          uuid.New(),
		OwnerUserID: owner,
		Title:       in.Title,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Recurrence:  in.Recurrence,
		Status:      StatusPending,
		EventID:     in.EventID,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, sched); err != nil {
		return nil, err
	}

	s.publisher.PublishScheduleCreated(ctx, events.ScheduleEvent{
		ScheduleID: sched.ID.String(),
		OwnerID:    ownerID,
		Title:      sched.Title,
		StartTime:  sched.StartTime,
		OccurredAt: now,
	})

	return sched, nil
}

func (s *Service) GetByID(ctx context.Context, ownerID, id string) (*Schedule, error) {
	sched, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, api.ErrScheduleNotFound
	}
	return sched, nil
}

func (s *Service) Update(ctx context.Context, ownerID, id string, fields UpdateFields) (*Schedule, error) {
	if fields.Empty() {
		return nil, api.NewBadRequestError("no fields to update")
	}

	affected, err := s.repo.Update(ctx, ownerID, id, fields)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, api.ErrScheduleNotFound
	}

	sched, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if sched != nil {
		s.publisher.PublishScheduleUpdated(ctx, events.ScheduleEvent{
			ScheduleID: sched.ID.String(),
			OwnerID:    ownerID,
			Title:      sched.Title,
			StartTime:  sched.StartTime,
			OccurredAt: time.Now(),
		})
	}
	return sched, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	sched, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if sched == nil {
		return api.ErrScheduleNotFound
	}

	affected, err := s.repo.SoftDelete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return api.ErrScheduleNotFound
	}

	s.publisher.PublishScheduleDeleted(ctx, events.ScheduleEvent{
		ScheduleID: sched.ID.String(),
		OwnerID:    ownerID,
		Title:      sched.Title,
		StartTime:  sched.StartTime,
		OccurredAt: time.Now(),
	})
	return nil
}

func (s *Service) ListRange(ctx context.Context, ownerID string, from, to time.Time) ([]*Schedule, error) {
	return s.repo.ListRange(ctx, ownerID, from, to)
}

func (s *Service) ListRecent(ctx context.Context, ownerID string, limit int) ([]*Schedule, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, ownerID, limit)
}
