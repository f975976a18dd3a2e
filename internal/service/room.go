package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/campmeet-api/internal/domain"
)

type RoomRepository interface {
	Create(ctx context.Context, room domain.Room) (domain.Room, error)
	Update(ctx context.Context, room domain.Room) (domain.Room, error)
	FindByID(ctx context.Context, id uint) (domain.Room, error)
	FindAll(ctx context.Context) ([]domain.Room, error)
}

type RoomService struct {
	repo RoomRepository
}

func NewRoomService(repo RoomRepository) *RoomService {
	return &RoomService{
		repo: repo,
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, room domain.Room) (domain.Room, error) {
	created, err := s.repo.Create(ctx, room)
	if err != nil {
		return domain.Room{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *RoomService) UpdateRoom(ctx context.Context, room domain.Room) (domain.Room, error) {
	updated, err := s.repo.Update(ctx, room)
	if err != nil {
		return domain.Room{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id uint) (domain.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Room{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return room, nil
}

func (s *RoomService) GetRooms(ctx context.Context) ([]domain.Room, error) {
	rooms, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return rooms, nil
}
