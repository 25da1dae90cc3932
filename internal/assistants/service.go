package assistants

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/CommanderOutpost/remindria/internal/api"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	Name        string
	Voice       string
	Language    string
	Personality string
	Image       string
}

func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*Assistant, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, api.NewBadRequestError("invalid owner id")
	}

	now := time.Now()
	a := &Assistant{
		ID:          uuid.New(),
		OwnerUserID: owner,
		Name:        in.Name,
		Voice:       in.Voice,
		Language:    in.Language,
		Personality: in.Personality,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, ownerID, id string) (*Assistant, error) {
	a, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, api.ErrAssistantNotFound
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]*Assistant, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, ownerID, id string, in Input) (*Assistant, error) {
	a, err := s.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		a.Name = in.Name
	}
	if in.Voice != "" {
		a.Voice = in.Voice
	}
	if in.Language != "" {
		a.Language = in.Language
	}
	if in.Personality != "" {
		a.Personality = in.Personality
	}
	if in.Image != "" {
		a.Image = in.Image
	}

	affected, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, api.ErrAssistantNotFound
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	affected, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return api.ErrAssistantNotFound
	}
	return nil
}
