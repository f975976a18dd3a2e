package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/campmeet-api/internal/domain"
)

type PlatoonRepository interface {
	Create(ctx context.Context, platoon domain.Platoon) (domain.Platoon, error)
	Update(ctx context.Context, platoon domain.Platoon) (domain.Platoon, error)
	FindByID(ctx context.Context, id uint) (domain.Platoon, error)
	FindAll(ctx context.Context) ([]domain.Platoon, error)
}

type PlatoonService struct {
	repo PlatoonRepository
}

func NewPlatoonService(repo PlatoonRepository) *PlatoonService {
	return &PlatoonService{
		repo: repo,
	}
}

func (s *PlatoonService) CreatePlatoon(ctx context.Context, platoon domain.Platoon) (domain.Platoon, error) {
	created, err := s.repo.Create(ctx, platoon)
	if err != nil {
		return domain.Platoon{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *PlatoonService) UpdatePlatoon(ctx context.Context, platoon domain.Platoon) (domain.Platoon, error) {
	updated, err := s.repo.Update(ctx, platoon)
	if err != nil {
		return domain.Platoon{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *PlatoonService) GetPlatoon(ctx context.Context, id uint) (domain.Platoon, error) {
	platoon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Platoon{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return platoon, nil
}

func (s *PlatoonService) GetPlatoons(ctx context.Context) ([]domain.Platoon, error) {
	platoons, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return platoons, nil
}
