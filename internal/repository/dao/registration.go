package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyVerified      = errors.New("registration already verified")
	ErrNotVerified          = errors.New("registration not verified")
)

type Registration struct {
	ID uint `gorm:"primaryKey"`

	FullName    string    `gorm:"not null"`
	Gender      string    `gorm:"not null;index"`
	DateOfBirth time.Time `gorm:"not null"`
	Phone       string

	IsVerified           bool `gorm:"not null;default:false;index"`
	VerifiedAt           *time.Time
	VerificationMethod   string
	VerificationDevice   string
	VerificationOperator string

	// Opaque scan token value. Regenerated after every successful
	// verification so a consumed code cannot be replayed.
	QRCode string `gorm:"not null;index"`

	RoomAllocation     *RoomAllocation     `gorm:"foreignKey:RegistrationID"`
	PlatoonParticipant *PlatoonParticipant `gorm:"foreignKey:RegistrationID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

func (d *RegistrationDAO) Insert(ctx context.Context, reg Registration) (Registration, error) {
	result := d.db.WithContext(ctx).Create(&reg)
	if result.Error != nil {
		if isUndefinedTable(result.Error) {
			return Registration{}, ErrStorageUnavailable
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id uint) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).
		Preload("RoomAllocation").
		Preload("PlatoonParticipant").
		First(&reg, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByIDs(ctx context.Context, ids []uint) ([]Registration, error) {
	var regs []Registration

	result := d.db.WithContext(ctx).
		Preload("RoomAllocation").
		Preload("PlatoonParticipant").
		Find(&regs, ids)
	if result.Error != nil {
		return nil, result.Error
	}

	return regs, nil
}

func (d *RegistrationDAO) List(ctx context.Context, limit, offset int) ([]Registration, error) {
	var regs []Registration

	result := d.db.WithContext(ctx).
		Preload("RoomAllocation").
		Preload("PlatoonParticipant").
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&regs)
	if result.Error != nil {
		if isUndefinedTable(result.Error) {
			return nil, ErrStorageUnavailable
		}

		return nil, result.Error
	}

	return regs, nil
}

// FindVerifiedUnallocated returns verified registrations that have no join
// row for the given allocation kind. The allocation engine uses this as its
// candidate pool.
func (d *RegistrationDAO) FindVerifiedUnallocated(ctx context.Context, kind string) ([]Registration, error) {
	joinTable := "room_allocations"
	if kind == "platoon" {
		joinTable = "platoon_participants"
	}

	var regs []Registration

	result := d.db.WithContext(ctx).
		Where("is_verified = ?", true).
		Where("id NOT IN (?)", d.db.Table(joinTable).Select("registration_id")).
		Order("id").
		Find(&regs)
	if result.Error != nil {
		if isUndefinedTable(result.Error) {
			return nil, ErrStorageUnavailable
		}

		return nil, result.Error
	}

	return regs, nil
}

// MarkVerified flips is_verified in a single conditional UPDATE. Two
// concurrent calls race on the WHERE clause instead of on a read-then-write,
// so exactly one of them wins and the loser gets ErrAlreadyVerified.
func (d *RegistrationDAO) MarkVerified(ctx context.Context, id uint, method, device, operator string, at time.Time) (Registration, error) {
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ? AND is_verified = ?", id, false).
		Updates(map[string]interface{}{
			"is_verified":           true,
			"verified_at":           at,
			"verification_method":   method,
			"verification_device":   device,
			"verification_operator": operator,
		})
	if result.Error != nil {
		return Registration{}, result.Error
	}

	if result.RowsAffected == 0 {
		// Either the row does not exist or it was already verified.
		if _, err := d.FindByID(ctx, id); err != nil {
			return Registration{}, err
		}

		return Registration{}, ErrAlreadyVerified
	}

	return d.FindByID(ctx, id)
}

// MarkUnverified reverts is_verified with the same conditional-update shape
// as MarkVerified. The caller is responsible for rejecting the transition
// while a room allocation exists.
func (d *RegistrationDAO) MarkUnverified(ctx context.Context, id uint) (Registration, error) {
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ? AND is_verified = ?", id, true).
		Updates(map[string]interface{}{
			"is_verified":           false,
			"verified_at":           nil,
			"verification_method":   "",
			"verification_device":   "",
			"verification_operator": "",
		})
	if result.Error != nil {
		return Registration{}, result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, id); err != nil {
			return Registration{}, err
		}

		return Registration{}, ErrNotVerified
	}

	return d.FindByID(ctx, id)
}

// UpdateQRCode swaps in a freshly generated code value. Called from the
// detached regeneration task after a successful verification.
func (d *RegistrationDAO) UpdateQRCode(ctx context.Context, id uint, code string) error {
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ?", id).
		Update("qr_code", code)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

// CountByStatus returns total and verified registration counts for the
// dashboard polling fallback.
func (d *RegistrationDAO) CountByStatus(ctx context.Context) (total, verified int64, err error) {
	if err = d.db.WithContext(ctx).Model(&Registration{}).Count(&total).Error; err != nil {
		if isUndefinedTable(err) {
			return 0, 0, ErrStorageUnavailable
		}

		return 0, 0, err
	}

	if err = d.db.WithContext(ctx).Model(&Registration{}).Where("is_verified = ?", true).Count(&verified).Error; err != nil {
		return 0, 0, err
	}

	return total, verified, nil
}
