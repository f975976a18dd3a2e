package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/repository/dao"
)

var (
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
	ErrAlreadyVerified      = dao.ErrAlreadyVerified
	ErrNotVerified          = dao.ErrNotVerified
	ErrStorageUnavailable   = dao.ErrStorageUnavailable
)

type RegistrationDAO interface {
	Insert(ctx context.Context, reg dao.Registration) (dao.Registration, error)
	FindByID(ctx context.Context, id uint) (dao.Registration, error)
	FindByIDs(ctx context.Context, ids []uint) ([]dao.Registration, error)
	List(ctx context.Context, limit, offset int) ([]dao.Registration, error)
	FindVerifiedUnallocated(ctx context.Context, kind string) ([]dao.Registration, error)
	MarkVerified(ctx context.Context, id uint, method, device, operator string, at time.Time) (dao.Registration, error)
	MarkUnverified(ctx context.Context, id uint) (dao.Registration, error)
	UpdateQRCode(ctx context.Context, id uint, code string) error
	CountByStatus(ctx context.Context) (total, verified int64, err error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Insert(ctx, dao.Registration{
		FullName:    reg.FullName,
		Gender:      string(reg.Gender),
		DateOfBirth: reg.DateOfBirth,
		Phone:       reg.Phone,
		QRCode:      reg.QRCode,
	})
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id uint) (domain.Registration, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Registration, error) {
	found, err := r.dao.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByIDs -> %w", err)
	}

	regs := make([]domain.Registration, 0, len(found))
	for _, reg := range found {
		regs = append(regs, r.daoToDomain(reg))
	}

	return regs, nil
}

func (r *RegistrationRepository) List(ctx context.Context, limit, offset int) ([]domain.Registration, error) {
	found, err := r.dao.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	regs := make([]domain.Registration, 0, len(found))
	for _, reg := range found {
		regs = append(regs, r.daoToDomain(reg))
	}

	return regs, nil
}

func (r *RegistrationRepository) FindVerifiedUnallocated(ctx context.Context, kind string) ([]domain.Registration, error) {
	found, err := r.dao.FindVerifiedUnallocated(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindVerifiedUnallocated -> %w", err)
	}

	regs := make([]domain.Registration, 0, len(found))
	for _, reg := range found {
		regs = append(regs, r.daoToDomain(reg))
	}

	return regs, nil
}

func (r *RegistrationRepository) MarkVerified(ctx context.Context, id uint, method, device, operator string, at time.Time) (domain.Registration, error) {
	updated, err := r.dao.MarkVerified(ctx, id, method, device, operator, at)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.MarkVerified -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *RegistrationRepository) MarkUnverified(ctx context.Context, id uint) (domain.Registration, error) {
	updated, err := r.dao.MarkUnverified(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.MarkUnverified -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *RegistrationRepository) UpdateQRCode(ctx context.Context, id uint, code string) error {
	if err := r.dao.UpdateQRCode(ctx, id, code); err != nil {
		return fmt.Errorf("r.dao.UpdateQRCode -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) CountByStatus(ctx context.Context) (total, verified int64, err error) {
	total, verified, err = r.dao.CountByStatus(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("r.dao.CountByStatus -> %w", err)
	}

	return total, verified, nil
}

func (r *RegistrationRepository) daoToDomain(reg dao.Registration) domain.Registration {
	out := domain.Registration{
		ID:                   reg.ID,
		FullName:             reg.FullName,
		Gender:               domain.Gender(reg.Gender),
		DateOfBirth:          reg.DateOfBirth,
		Phone:                reg.Phone,
		IsVerified:           reg.IsVerified,
		VerifiedAt:           reg.VerifiedAt,
		VerificationMethod:   reg.VerificationMethod,
		VerificationDevice:   reg.VerificationDevice,
		VerificationOperator: reg.VerificationOperator,
		QRCode:               reg.QRCode,
		CreatedAt:            reg.CreatedAt,
		UpdatedAt:            reg.UpdatedAt,
	}

	if reg.RoomAllocation != nil {
		roomID := reg.RoomAllocation.RoomID
		out.RoomID = &roomID
	}
	if reg.PlatoonParticipant != nil {
		platoonID := reg.PlatoonParticipant.PlatoonID
		out.PlatoonID = &platoonID
	}

	return out
}
