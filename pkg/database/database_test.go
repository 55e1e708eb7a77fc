package database

import (
	"errors"
	"testing"

	"bookshelf/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpenMemoryMigrates(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasTable("book_authors"))
	assert.NoError(t, Ping(db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)

	_, err = Open(Config{Driver: DriverSQLite})
	assert.Error(t, err)
}

func TestUniqueViolationIsTranslated(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Author{FullName: "Test Author"}).Error)
	err = db.Create(&models.Author{FullName: "TEST AUTHOR"}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	err = db.Omit("User").Create(&models.Book{UserID: 99, Title: "Orphan", TotalPages: 10}).Error
	assert.Error(t, err)
}

func TestSeedUsersIsIdempotent(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	require.NoError(t, SeedUsers(db, []string{"alice", "bob", " "}))
	require.NoError(t, SeedUsers(db, []string{"alice"}))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(2), count)
}
