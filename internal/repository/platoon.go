package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/repository/dao"
)

var ErrPlatoonNotFound = dao.ErrPlatoonNotFound

type PlatoonDAO interface {
	Insert(ctx context.Context, platoon dao.Platoon) (dao.Platoon, error)
	Update(ctx context.Context, platoon dao.Platoon) (dao.Platoon, error)
	FindByID(ctx context.Context, id uint) (dao.Platoon, error)
	FindByIDs(ctx context.Context, ids []uint) ([]dao.Platoon, error)
	FindAll(ctx context.Context) ([]dao.Platoon, error)
	AllocateAll(ctx context.Context, assignments []dao.PlatoonAssignment) error
	RemoveByRegistrationID(ctx context.Context, registrationID uint) (bool, error)
	ClearPlatoon(ctx context.Context, platoonID uint) ([]uint, error)
	ClearAll(ctx context.Context) ([]uint, error)
}

type PlatoonRepository struct {
	dao PlatoonDAO
}

func NewPlatoonRepository(dao PlatoonDAO) *PlatoonRepository {
	return &PlatoonRepository{
		dao: dao,
	}
}

func (r *PlatoonRepository) Create(ctx context.Context, platoon domain.Platoon) (domain.Platoon, error) {
	created, err := r.dao.Insert(ctx, dao.Platoon{
		Name:        platoon.Name,
		Label:       platoon.Label,
		LeaderName:  platoon.LeaderName,
		LeaderPhone: platoon.LeaderPhone,
		Capacity:    platoon.Capacity,
	})
	if err != nil {
		return domain.Platoon{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *PlatoonRepository) Update(ctx context.Context, platoon domain.Platoon) (domain.Platoon, error) {
	updated, err := r.dao.Update(ctx, dao.Platoon{
		ID:          platoon.ID,
		Name:        platoon.Name,
		Label:       platoon.Label,
		LeaderName:  platoon.LeaderName,
		LeaderPhone: platoon.LeaderPhone,
		Capacity:    platoon.Capacity,
	})
	if err != nil {
		return domain.Platoon{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *PlatoonRepository) FindByID(ctx context.Context, id uint) (domain.Platoon, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Platoon{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *PlatoonRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Platoon, error) {
	found, err := r.dao.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByIDs -> %w", err)
	}

	platoons := make([]domain.Platoon, 0, len(found))
	for _, platoon := range found {
		platoons = append(platoons, r.daoToDomain(platoon))
	}

	return platoons, nil
}

func (r *PlatoonRepository) FindAll(ctx context.Context) ([]domain.Platoon, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	platoons := make([]domain.Platoon, 0, len(found))
	for _, platoon := range found {
		platoons = append(platoons, r.daoToDomain(platoon))
	}

	return platoons, nil
}

func (r *PlatoonRepository) AllocateAll(ctx context.Context, assignments []domain.PlatoonParticipant) error {
	rows := make([]dao.PlatoonAssignment, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, dao.PlatoonAssignment{
			RegistrationID: a.RegistrationID,
			PlatoonID:      a.PlatoonID,
		})
	}

	if err := r.dao.AllocateAll(ctx, rows); err != nil {
		return fmt.Errorf("r.dao.AllocateAll -> %w", err)
	}

	return nil
}

func (r *PlatoonRepository) RemoveByRegistrationID(ctx context.Context, registrationID uint) (bool, error) {
	removed, err := r.dao.RemoveByRegistrationID(ctx, registrationID)
	if err != nil {
		return false, fmt.Errorf("r.dao.RemoveByRegistrationID -> %w", err)
	}

	return removed, nil
}

func (r *PlatoonRepository) ClearPlatoon(ctx context.Context, platoonID uint) ([]uint, error) {
	affected, err := r.dao.ClearPlatoon(ctx, platoonID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ClearPlatoon -> %w", err)
	}

	return affected, nil
}

func (r *PlatoonRepository) ClearAll(ctx context.Context) ([]uint, error) {
	affected, err := r.dao.ClearAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ClearAll -> %w", err)
	}

	return affected, nil
}

func (r *PlatoonRepository) daoToDomain(platoon dao.Platoon) domain.Platoon {
	return domain.Platoon{
		ID:          platoon.ID,
		Name:        platoon.Name,
		Label:       platoon.Label,
		LeaderName:  platoon.LeaderName,
		LeaderPhone: platoon.LeaderPhone,
		Capacity:    platoon.Capacity,
		Occupancy:   len(platoon.Participants),
		CreatedAt:   platoon.CreatedAt,
		UpdatedAt:   platoon.UpdatedAt,
	}
}
