// Package integration runs the repositories and services against a real
// PostgreSQL started with testcontainers and migrated with golang-migrate.
package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/fincore/backend/internal/infrastructure/migration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const postgresImage = "postgres:16-alpine"

// sharedPG is the package-wide container; tests keep apart by tenant id
var sharedPG struct {
	sync.Mutex
	container testcontainers.Container
	dsn       string
}

// TestDB is a migrated ledger database
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

// NewTestDB starts a container owned by the calling test, for tests that
// change the schema
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	requireDocker(t)

	container, dsn := startPostgres(t, "fincore_test")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})
	tdb := open(t, dsn)
	require.NoError(t, tdb.Migrator().Up(), "apply migrations")
	return tdb
}

// NewSharedTestDB connects to the package container, migrating it on first use
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	requireDocker(t)

	sharedPG.Lock()
	if sharedPG.container == nil {
		container, dsn := startPostgres(t, "fincore_shared_test")
		sharedPG.container, sharedPG.dsn = container, dsn
		tdb := open(t, dsn)
		require.NoError(t, tdb.Migrator().Up(), "apply migrations")
	}
	dsn := sharedPG.dsn
	sharedPG.Unlock()

	return open(t, dsn)
}

// CleanupSharedContainer stops the package container; TestMain calls it
func CleanupSharedContainer() {
	sharedPG.Lock()
	defer sharedPG.Unlock()
	if sharedPG.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = sharedPG.container.Terminate(ctx)
	sharedPG.container, sharedPG.dsn = nil, ""
}

func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs docker")
	}
}

func startPostgres(t *testing.T, dbName string) (testcontainers.Container, string) {
	t.Helper()
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("fincore"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "postgres connection string")
	return container, dsn
}

// open connects to dsn and closes the pool when the test ends. Set
// TEST_DB_DEBUG to see the SQL.
func open(t *testing.T, dsn string) *TestDB {
	t.Helper()
	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "connect to postgres")

	pool, err := db.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(5)
	pool.SetMaxIdleConns(2)
	t.Cleanup(func() { _ = pool.Close() })

	return &TestDB{DB: db, SqlDB: pool, DSN: dsn, t: t}
}

// Migrator binds the application migrator to this database
func (tdb *TestDB) Migrator() *migration.Migrator {
	tdb.t.Helper()
	m, err := migration.New(tdb.SqlDB, migrationsDir(tdb.t), zap.NewNop())
	require.NoError(tdb.t, err, "create migrator")
	return m
}

// CreateHeadOffice inserts the root office of tenantID
func (tdb *TestDB) CreateHeadOffice(tenantID uuid.UUID) uuid.UUID {
	tdb.t.Helper()
	id := uuid.New()
	require.NoError(tdb.t, tdb.DB.Exec(
		`INSERT INTO offices (id, tenant_id, name, hierarchy, opening_date) VALUES (?, ?, 'Head Office', ?, DATE '2020-01-01')`,
		id, tenantID, "."+id.String()+".",
	).Error, "create head office")
	return id
}

// migrationsDir finds the repository's migrations directory above this file
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	for dir := filepath.Dir(file); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	t.Fatal("migrations directory not found")
	return ""
}
