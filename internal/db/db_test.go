package db_test

import (
	"document-archive/internal/db"
	"document-archive/internal/db/dbtest"
	"document-archive/internal/domain"
	"errors"
	"math"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestCount(t *testing.T) {
	assert.Equal(t, 0, db.Count(-3))
	assert.Equal(t, 42, db.Count(42))
	assert.Equal(t, math.MaxInt, db.Count(math.MaxInt64))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, db.TotalPages(0, 10))
	assert.Equal(t, 1, db.TotalPages(10, 10))
	assert.Equal(t, 2, db.TotalPages(11, 10))
	assert.Equal(t, 0, db.TotalPages(5, 0))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, db.IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, db.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, db.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, db.IsUniqueViolation(errors.New("boom")))
}

func TestIsNotFound(t *testing.T) {
	gdb := dbtest.Open(t)

	var doc domain.Document
	err := gdb.First(&doc, 99).Error
	assert.True(t, db.IsNotFound(err))
}

func TestSeedAdmin_Idempotent(t *testing.T) {
	gdb := dbtest.Open(t)
	logger := zap.NewNop()

	first, err := db.SeedAdmin(gdb, logger, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, first.Role)

	second, err := db.SeedAdmin(gdb, logger, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, gdb.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
