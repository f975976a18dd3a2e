package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPlatoonNotFound = errors.New("platoon not found")

type Platoon struct {
	ID uint `gorm:"primaryKey"`

	Name        string `gorm:"not null"`
	Label       string
	LeaderName  string
	LeaderPhone string
	Capacity    int `gorm:"not null"`

	Participants []PlatoonParticipant `gorm:"foreignKey:PlatoonID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type PlatoonParticipant struct {
	ID uint `gorm:"primaryKey"`

	PlatoonID uint `gorm:"not null;index"`

	// One platoon per registration, same shape as room allocations.
	RegistrationID uint `gorm:"not null;uniqueIndex:idx_platoon_participants_registration"`

	Registration Registration `gorm:"foreignKey:RegistrationID"`

	CreatedAt time.Time `gorm:"not null"`
}

type PlatoonDAO struct {
	db *gorm.DB
}

func NewPlatoonDAO(db *gorm.DB) *PlatoonDAO {
	return &PlatoonDAO{
		db: db,
	}
}

func (d *PlatoonDAO) Insert(ctx context.Context, platoon Platoon) (Platoon, error) {
	result := d.db.WithContext(ctx).Create(&platoon)
	if result.Error != nil {
		return Platoon{}, result.Error
	}

	return platoon, nil
}

func (d *PlatoonDAO) Update(ctx context.Context, platoon Platoon) (Platoon, error) {
	result := d.db.WithContext(ctx).
		Model(&Platoon{ID: platoon.ID}).
		Updates(map[string]interface{}{
			"name":         platoon.Name,
			"label":        platoon.Label,
			"leader_name":  platoon.LeaderName,
			"leader_phone": platoon.LeaderPhone,
			"capacity":     platoon.Capacity,
		})
	if result.Error != nil {
		return Platoon{}, result.Error
	}

	if result.RowsAffected == 0 {
		return Platoon{}, ErrPlatoonNotFound
	}

	return d.FindByID(ctx, platoon.ID)
}

func (d *PlatoonDAO) FindByID(ctx context.Context, id uint) (Platoon, error) {
	var platoon Platoon

	result := d.db.WithContext(ctx).
		Preload("Participants.Registration").
		First(&platoon, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Platoon{}, ErrPlatoonNotFound
		}

		return Platoon{}, result.Error
	}

	return platoon, nil
}

func (d *PlatoonDAO) FindByIDs(ctx context.Context, ids []uint) ([]Platoon, error) {
	var platoons []Platoon

	result := d.db.WithContext(ctx).
		Preload("Participants.Registration").
		Find(&platoons, ids)
	if result.Error != nil {
		return nil, result.Error
	}

	return platoons, nil
}

func (d *PlatoonDAO) FindAll(ctx context.Context) ([]Platoon, error) {
	var platoons []Platoon

	result := d.db.WithContext(ctx).
		Preload("Participants.Registration").
		Order("id").
		Find(&platoons)
	if result.Error != nil {
		if isUndefinedTable(result.Error) {
			return nil, ErrStorageUnavailable
		}

		return nil, result.Error
	}

	return platoons, nil
}

type PlatoonAssignment struct {
	RegistrationID uint
	PlatoonID      uint
}

// AllocateAll mirrors RoomDAO.AllocateAll for platoons: one transaction,
// capacity re-checked under lock, all-or-nothing.
func (d *PlatoonDAO) AllocateAll(ctx context.Context, assignments []PlatoonAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	perPlatoon := make(map[uint]int)
	for _, a := range assignments {
		perPlatoon[a.PlatoonID]++
	}

	platoonIDs := make([]uint, 0, len(perPlatoon))
	for id := range perPlatoon {
		platoonIDs = append(platoonIDs, id)
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(statementTimeout).Error; err != nil {
			return err
		}

		var platoons []Platoon
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Find(&platoons, platoonIDs).Error; err != nil {
			return err
		}
		if len(platoons) != len(platoonIDs) {
			return ErrPlatoonNotFound
		}

		for _, platoon := range platoons {
			var occupancy int64
			if err := tx.Model(&PlatoonParticipant{}).Where("platoon_id = ?", platoon.ID).Count(&occupancy).Error; err != nil {
				return err
			}

			if int(occupancy)+perPlatoon[platoon.ID] > platoon.Capacity {
				return ErrAllocationConflict
			}
		}

		rows := make([]PlatoonParticipant, 0, len(assignments))
		for _, a := range assignments {
			rows = append(rows, PlatoonParticipant{
				PlatoonID:      a.PlatoonID,
				RegistrationID: a.RegistrationID,
			})
		}

		if err := tx.Create(&rows).Error; err != nil {
			if isUniqueViolation(err, "idx_platoon_participants_registration") {
				return ErrAllocationConflict
			}

			return err
		}

		return nil
	})

	return err
}

func (d *PlatoonDAO) RemoveByRegistrationID(ctx context.Context, registrationID uint) (bool, error) {
	result := d.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Delete(&PlatoonParticipant{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (d *PlatoonDAO) ClearPlatoon(ctx context.Context, platoonID uint) ([]uint, error) {
	var affected []uint

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var platoon Platoon
		if err := tx.First(&platoon, platoonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlatoonNotFound
			}

			return err
		}

		if err := tx.Model(&PlatoonParticipant{}).
			Where("platoon_id = ?", platoonID).
			Pluck("registration_id", &affected).Error; err != nil {
			return err
		}

		return tx.Where("platoon_id = ?", platoonID).Delete(&PlatoonParticipant{}).Error
	})
	if err != nil {
		return nil, err
	}

	return affected, nil
}

func (d *PlatoonDAO) ClearAll(ctx context.Context) ([]uint, error) {
	var affected []uint

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&PlatoonParticipant{}).
			Pluck("registration_id", &affected).Error; err != nil {
			return err
		}

		return tx.Where("1 = 1").Delete(&PlatoonParticipant{}).Error
	})
	if err != nil {
		return nil, err
	}

	return affected, nil
}
