package dao

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrStorageUnavailable signals that the underlying table has not been
// migrated yet. Read paths degrade to empty results on it, write paths
// surface it immediately.
var ErrStorageUnavailable = errors.New("storage unavailable")

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Registration{},
		&Room{},
		&RoomAllocation{},
		&Platoon{},
		&PlatoonParticipant{},
	)
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}

	return constraint == "" || pgErr.ConstraintName == constraint
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}
