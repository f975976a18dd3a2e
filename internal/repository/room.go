package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/repository/dao"
)

var (
	ErrRoomNotFound       = dao.ErrRoomNotFound
	ErrAllocationConflict = dao.ErrAllocationConflict
)

type RoomDAO interface {
	Insert(ctx context.Context, room dao.Room) (dao.Room, error)
	Update(ctx context.Context, room dao.Room) (dao.Room, error)
	FindByID(ctx context.Context, id uint) (dao.Room, error)
	FindByIDs(ctx context.Context, ids []uint) ([]dao.Room, error)
	FindAll(ctx context.Context) ([]dao.Room, error)
	AllocateAll(ctx context.Context, assignments []dao.RoomAssignment) error
	RemoveByRegistrationID(ctx context.Context, registrationID uint) (bool, error)
	ClearRoom(ctx context.Context, roomID uint) ([]uint, error)
	ClearAll(ctx context.Context) ([]uint, error)
	HasAllocation(ctx context.Context, registrationID uint) (bool, error)
}

type RoomRepository struct {
	dao RoomDAO
}

func NewRoomRepository(dao RoomDAO) *RoomRepository {
	return &RoomRepository{
		dao: dao,
	}
}

func (r *RoomRepository) Create(ctx context.Context, room domain.Room) (domain.Room, error) {
	created, err := r.dao.Insert(ctx, dao.Room{
		Name:     room.Name,
		Gender:   string(room.Gender),
		Capacity: room.Capacity,
		IsActive: room.IsActive,
	})
	if err != nil {
		return domain.Room{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RoomRepository) Update(ctx context.Context, room domain.Room) (domain.Room, error) {
	updated, err := r.dao.Update(ctx, dao.Room{
		ID:       room.ID,
		Name:     room.Name,
		Gender:   string(room.Gender),
		Capacity: room.Capacity,
		IsActive: room.IsActive,
	})
	if err != nil {
		return domain.Room{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *RoomRepository) FindByID(ctx context.Context, id uint) (domain.Room, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Room{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RoomRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Room, error) {
	found, err := r.dao.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByIDs -> %w", err)
	}

	rooms := make([]domain.Room, 0, len(found))
	for _, room := range found {
		rooms = append(rooms, r.daoToDomain(room))
	}

	return rooms, nil
}

func (r *RoomRepository) FindAll(ctx context.Context) ([]domain.Room, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	rooms := make([]domain.Room, 0, len(found))
	for _, room := range found {
		rooms = append(rooms, r.daoToDomain(room))
	}

	return rooms, nil
}

func (r *RoomRepository) AllocateAll(ctx context.Context, assignments []domain.RoomAllocation) error {
	rows := make([]dao.RoomAssignment, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, dao.RoomAssignment{
			RegistrationID: a.RegistrationID,
			RoomID:         a.RoomID,
		})
	}

	if err := r.dao.AllocateAll(ctx, rows); err != nil {
		return fmt.Errorf("r.dao.AllocateAll -> %w", err)
	}

	return nil
}

func (r *RoomRepository) RemoveByRegistrationID(ctx context.Context, registrationID uint) (bool, error) {
	removed, err := r.dao.RemoveByRegistrationID(ctx, registrationID)
	if err != nil {
		return false, fmt.Errorf("r.dao.RemoveByRegistrationID -> %w", err)
	}

	return removed, nil
}

func (r *RoomRepository) ClearRoom(ctx context.Context, roomID uint) ([]uint, error) {
	affected, err := r.dao.ClearRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ClearRoom -> %w", err)
	}

	return affected, nil
}

func (r *RoomRepository) ClearAll(ctx context.Context) ([]uint, error) {
	affected, err := r.dao.ClearAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ClearAll -> %w", err)
	}

	return affected, nil
}

func (r *RoomRepository) HasAllocation(ctx context.Context, registrationID uint) (bool, error) {
	has, err := r.dao.HasAllocation(ctx, registrationID)
	if err != nil {
		return false, fmt.Errorf("r.dao.HasAllocation -> %w", err)
	}

	return has, nil
}

func (r *RoomRepository) daoToDomain(room dao.Room) domain.Room {
	out := domain.Room{
		ID:        room.ID,
		Name:      room.Name,
		Gender:    domain.Gender(room.Gender),
		Capacity:  room.Capacity,
		IsActive:  room.IsActive,
		Occupancy: len(room.Allocations),
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}

	now := time.Now()
	for _, alloc := range room.Allocations {
		occupant := domain.Registration{DateOfBirth: alloc.Registration.DateOfBirth}
		out.OccupantAges = append(out.OccupantAges, occupant.Age(now))
	}

	return out
}
