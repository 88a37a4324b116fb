package db

import (
	"errors"
	"math"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsNotFound reports whether err means no row matched.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation recognises duplicate-key failures from Postgres and from
// gorm's translated errors.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Count narrows a 64-bit aggregate coming out of the database to int. Counts in
// this domain stay far below the int range; the clamp only guards 32-bit builds.
func Count(n int64) int {
	if n > math.MaxInt {
		return math.MaxInt
	}
	if n < 0 {
		return 0
	}
	return int(n)
}

// TotalPages returns ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
