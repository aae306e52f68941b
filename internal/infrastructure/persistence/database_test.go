package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fincore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock
}

func TestDatabase_Ping(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy", func(t *testing.T) {
		db, mock := newMockDatabase(t)
		mock.ExpectPing()
		assert.NoError(t, db.Ping(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unreachable", func(t *testing.T) {
		db, mock := newMockDatabase(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		assert.EqualError(t, db.Ping(ctx), "connection refused")
	})
}

func TestDatabase_Close(t *testing.T) {
	db, mock := newMockDatabase(t)
	mock.ExpectClose()
	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigurePool(t *testing.T) {
	db, _ := newMockDatabase(t)
	sqlDB, err := db.SQL()
	require.NoError(t, err)

	configurePool(sqlDB, &config.DatabaseConfig{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetime: 5})
	assert.Equal(t, 7, sqlDB.Stats().MaxOpenConnections)
}

func TestNewDatabase_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	start := time.Now()
	_, err := NewDatabase(&config.DatabaseConfig{
		Host:    "127.0.0.1",
		Port:    1,
		User:    "fincore",
		DBName:  "fincore",
		SSLMode: "disable",
	}, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}
