package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRoomNotFound = errors.New("room not found")

	// ErrAllocationConflict is returned when a commit loses a race: either a
	// candidate acquired an allocation elsewhere between read and commit, or
	// a concurrent commit consumed the container's remaining capacity. The
	// transaction rolls back completely, so retrying is always safe.
	ErrAllocationConflict = errors.New("allocation conflict")
)

// statementTimeout bounds every allocation transaction so a stuck commit
// cannot hold a container's capacity hostage.
const statementTimeout = "SET LOCAL statement_timeout = '5s'"

type Room struct {
	ID uint `gorm:"primaryKey"`

	Name     string `gorm:"not null"`
	Gender   string `gorm:"not null;index"`
	Capacity int    `gorm:"not null"`
	IsActive bool   `gorm:"not null;default:true"`

	Allocations []RoomAllocation `gorm:"foreignKey:RoomID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type RoomAllocation struct {
	ID uint `gorm:"primaryKey"`

	RoomID uint `gorm:"not null;index"`

	// One room per registration, enforced by the database so concurrent
	// commits cannot double-book.
	RegistrationID uint `gorm:"not null;uniqueIndex:idx_room_allocations_registration"`

	Registration Registration `gorm:"foreignKey:RegistrationID"`

	CreatedAt time.Time `gorm:"not null"`
}

type RoomDAO struct {
	db *gorm.DB
}

func NewRoomDAO(db *gorm.DB) *RoomDAO {
	return &RoomDAO{
		db: db,
	}
}

func (d *RoomDAO) Insert(ctx context.Context, room Room) (Room, error) {
	result := d.db.WithContext(ctx).Create(&room)
	if result.Error != nil {
		return Room{}, result.Error
	}

	return room, nil
}

func (d *RoomDAO) Update(ctx context.Context, room Room) (Room, error) {
	result := d.db.WithContext(ctx).
		Model(&Room{ID: room.ID}).
		Updates(map[string]interface{}{
			"name":      room.Name,
			"gender":    room.Gender,
			"capacity":  room.Capacity,
			"is_active": room.IsActive,
		})
	if result.Error != nil {
		return Room{}, result.Error
	}

	if result.RowsAffected == 0 {
		return Room{}, ErrRoomNotFound
	}

	return d.FindByID(ctx, room.ID)
}

func (d *RoomDAO) FindByID(ctx context.Context, id uint) (Room, error) {
	var room Room

	result := d.db.WithContext(ctx).
		Preload("Allocations.Registration").
		First(&room, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Room{}, ErrRoomNotFound
		}

		return Room{}, result.Error
	}

	return room, nil
}

func (d *RoomDAO) FindByIDs(ctx context.Context, ids []uint) ([]Room, error) {
	var rooms []Room

	result := d.db.WithContext(ctx).
		Preload("Allocations.Registration").
		Find(&rooms, ids)
	if result.Error != nil {
		return nil, result.Error
	}

	return rooms, nil
}

func (d *RoomDAO) FindAll(ctx context.Context) ([]Room, error) {
	var rooms []Room

	result := d.db.WithContext(ctx).
		Preload("Allocations.Registration").
		Order("id").
		Find(&rooms)
	if result.Error != nil {
		if isUndefinedTable(result.Error) {
			return nil, ErrStorageUnavailable
		}

		return nil, result.Error
	}

	return rooms, nil
}

// RoomAssignment is one row the commit step wants to insert.
type RoomAssignment struct {
	RegistrationID uint
	RoomID         uint
}

// AllocateAll inserts every assignment in one transaction. Target rooms are
// locked and their occupancy re-checked inside the transaction; any capacity
// breach or unique-constraint violation rolls the whole commit back and is
// reported as ErrAllocationConflict.
func (d *RoomDAO) AllocateAll(ctx context.Context, assignments []RoomAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	perRoom := make(map[uint]int)
	for _, a := range assignments {
		perRoom[a.RoomID]++
	}

	roomIDs := make([]uint, 0, len(perRoom))
	for id := range perRoom {
		roomIDs = append(roomIDs, id)
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(statementTimeout).Error; err != nil {
			return err
		}

		var rooms []Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Find(&rooms, roomIDs).Error; err != nil {
			return err
		}
		if len(rooms) != len(roomIDs) {
			return ErrRoomNotFound
		}

		for _, room := range rooms {
			var occupancy int64
			if err := tx.Model(&RoomAllocation{}).Where("room_id = ?", room.ID).Count(&occupancy).Error; err != nil {
				return err
			}

			if int(occupancy)+perRoom[room.ID] > room.Capacity {
				return ErrAllocationConflict
			}
		}

		rows := make([]RoomAllocation, 0, len(assignments))
		for _, a := range assignments {
			rows = append(rows, RoomAllocation{
				RoomID:         a.RoomID,
				RegistrationID: a.RegistrationID,
			})
		}

		if err := tx.Create(&rows).Error; err != nil {
			if isUniqueViolation(err, "idx_room_allocations_registration") {
				return ErrAllocationConflict
			}

			return err
		}

		return nil
	})

	return err
}

// RemoveByRegistrationID deletes the registration's room allocation, if any.
func (d *RoomDAO) RemoveByRegistrationID(ctx context.Context, registrationID uint) (bool, error) {
	result := d.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Delete(&RoomAllocation{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// ClearRoom removes every allocation of one room and returns the affected
// registration IDs so the caller can emit one deallocation event each.
func (d *RoomDAO) ClearRoom(ctx context.Context, roomID uint) ([]uint, error) {
	var affected []uint

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}

			return err
		}

		if err := tx.Model(&RoomAllocation{}).
			Where("room_id = ?", roomID).
			Pluck("registration_id", &affected).Error; err != nil {
			return err
		}

		return tx.Where("room_id = ?", roomID).Delete(&RoomAllocation{}).Error
	})
	if err != nil {
		return nil, err
	}

	return affected, nil
}

// ClearAll removes every room allocation across all rooms.
func (d *RoomDAO) ClearAll(ctx context.Context) ([]uint, error) {
	var affected []uint

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&RoomAllocation{}).
			Pluck("registration_id", &affected).Error; err != nil {
			return err
		}

		return tx.Where("1 = 1").Delete(&RoomAllocation{}).Error
	})
	if err != nil {
		return nil, err
	}

	return affected, nil
}

// HasAllocation reports whether the registration currently occupies a room.
func (d *RoomDAO) HasAllocation(ctx context.Context, registrationID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&RoomAllocation{}).
		Where("registration_id = ?", registrationID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}
