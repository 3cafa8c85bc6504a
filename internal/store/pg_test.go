package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	testDB      *gorm.DB
	pgContainer *postgres.PostgresContainer
)

// TestMain sets up the test database before running tests.
// When neither TEST_DB_HOST nor a container runtime is available the database tests are skipped.
func TestMain(m *testing.M) {
	ctx := context.Background()

	dsn, err := testDSN(ctx)
	if err != nil {
		fmt.Printf("Database unavailable, store tests will be skipped: %v\n", err)
		os.Exit(m.Run())
	}

	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err == nil {
		err = Migrate(testDB)
	}
	if err != nil {
		fmt.Printf("Failed to prepare database: %v\n", err)
		terminateContainer(ctx)
		os.Exit(1)
	}

	code := m.Run()

	terminateContainer(ctx)
	os.Exit(code)
}

// testDSN returns a connection string for an external database (TEST_DB_*) or a fresh container
func testDSN(ctx context.Context) (string, error) {
	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host,
			envOr("TEST_DB_PORT", "5432"),
			envOr("TEST_DB_USER", "postgres"),
			envOr("TEST_DB_PASSWORD", "postgres"),
			envOr("TEST_DB_NAME", "test_db"),
		), nil
	}

	var err error
	pgContainer, err = runPostgresContainer(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminateContainer(ctx)
		return "", fmt.Errorf("failed to get connection string: %w", err)
	}

	return dsn, nil
}

// runPostgresContainer starts the container, turning a missing docker host panic into an error
func runPostgresContainer(ctx context.Context) (container *postgres.PostgresContainer, err error) {
	defer func() {
		if r := recover(); r != nil {
			container = nil
			err = fmt.Errorf("container runtime unavailable: %v", r)
		}
	}()

	return postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func terminateContainer(ctx context.Context) {
	if pgContainer == nil {
		return
	}
	if err := pgContainer.Terminate(ctx); err != nil {
		fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
	}
	pgContainer = nil
}

// beginTestTx opens a transaction that is rolled back when the test ends
func beginTestTx(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("database not available")
	}

	tx := testDB.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() {
		tx.Rollback()
	})
	return tx
}

func initPGTestDB(t *testing.T) Store {
	return NewPGStore(beginTestTx(t))
}

func strPtr(s string) *string { return &s }

const (
	testCID  = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	testHash = "0x7a2a4a2a0e0a8e4f1f6b4c3d2e1f0a9b8c7d6e5f4a3b2c1d0e9f8a7b6c5d4e3f"
	testIPID = "0x1234567890abcdef1234567890abcdef12345678"
)

func TestUpsertRegistration_CreatesRecord(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	reg, err := s.UpsertRegistration(ctx, UpsertRegistrationInput{
		CID:             testCID,
		CIDHash:         testHash,
		CIDHashSupplied: true,
		Title:           strPtr("Poster"),
	})
	require.NoError(t, err)
	require.NotNil(t, reg)

	assert.Equal(t, testCID, reg.CID)
	assert.Equal(t, testHash, reg.CIDHash)
	assert.Nil(t, reg.IPID)
	assert.Nil(t, reg.AnchorTxHash)
	assert.Nil(t, reg.AnchorConfirmedAt)
	assert.Equal(t, "Poster", *reg.Title)
	assert.False(t, reg.CreatedAt.IsZero())
}

func TestUpsertRegistration_MergesWithoutClearing(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.UpsertRegistration(ctx, UpsertRegistrationInput{
		CID:             testCID,
		CIDHash:         testHash,
		CIDHashSupplied: true,
		Title:           strPtr("Poster"),
		Now:             t0,
	})
	require.NoError(t, err)

	// Second write knows the ip id and anchor tx but not the title
	second, err := s.UpsertRegistration(ctx, UpsertRegistrationInput{
		CID:          testCID,
		CIDHash:      "0xshouldnotbeused",
		IPID:         strPtr(testIPID),
		AnchorTxHash: strPtr("0xaaa"),
		Now:          t0.Add(time.Minute),
	})
	require.NoError(t, err)

	assert.Equal(t, testHash, second.CIDHash)
	assert.Equal(t, testIPID, *second.IPID)
	assert.Equal(t, "0xaaa", *second.AnchorTxHash)
	assert.Equal(t, "Poster", *second.Title)
	require.NotNil(t, second.AnchorConfirmedAt)
	assert.True(t, second.AnchorConfirmedAt.Equal(t0.Add(time.Minute)))

	// Third write has a different anchor tx: hash is replaced, timestamp is not
	third, err := s.UpsertRegistration(ctx, UpsertRegistrationInput{
		CID:          testCID,
		AnchorTxHash: strPtr("0xbbb"),
		Now:          t0.Add(2 * time.Minute),
	})
	require.NoError(t, err)

	assert.Equal(t, "0xbbb", *third.AnchorTxHash)
	assert.True(t, third.AnchorConfirmedAt.Equal(t0.Add(time.Minute)))
	assert.Equal(t, testIPID, *third.IPID)
	assert.True(t, third.CreatedAt.Equal(t0))

	// A bare write is a no-op for every field
	fourth, err := s.UpsertRegistration(ctx, UpsertRegistrationInput{CID: testCID, Now: t0.Add(3 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, testIPID, *fourth.IPID)
	assert.Equal(t, "0xbbb", *fourth.AnchorTxHash)
	assert.Equal(t, "Poster", *fourth.Title)
	assert.Equal(t, testHash, fourth.CIDHash)
}

func TestUpsertRegistration_SuppliedHashOverwrites(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	_, err := s.UpsertRegistration(ctx, UpsertRegistrationInput{CID: testCID, CIDHash: "0xdead", CIDHashSupplied: true})
	require.NoError(t, err)

	reg, err := s.UpsertRegistration(ctx, UpsertRegistrationInput{CID: testCID, CIDHash: testHash, CIDHashSupplied: true})
	require.NoError(t, err)
	assert.Equal(t, testHash, reg.CIDHash)
}

func TestUpsertRegistration_MetadataFirstWriteWins(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	_, err := s.UpsertRegistration(ctx, UpsertRegistrationInput{
		CID:             testCID,
		CIDHash:         testHash,
		CIDHashSupplied: true,
		Metadata:        []byte(`{"title":"first"}`),
	})
	require.NoError(t, err)

	reg, err := s.UpsertRegistration(ctx, UpsertRegistrationInput{CID: testCID, Metadata: []byte(`{"title":"second"}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"first"}`, string(reg.Metadata))
}

func TestUpsertRegistration_RequiresCID(t *testing.T) {
	s := initPGTestDB(t)

	reg, err := s.UpsertRegistration(context.Background(), UpsertRegistrationInput{})
	assert.Error(t, err)
	assert.Nil(t, reg)
}

func TestGetRegistrationByCID(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	missing, err := s.GetRegistrationByCID(ctx, testCID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = s.UpsertRegistration(ctx, UpsertRegistrationInput{CID: testCID, CIDHash: testHash, CIDHashSupplied: true, IPID: strPtr(testIPID)})
	require.NoError(t, err)

	found, err := s.GetRegistrationByCID(ctx, testCID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, testIPID, *found.IPID)
}

func TestGetRegistrationsByCIDHashes(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	for i, cid := range []string{"QmA", "QmB", "QmC"} {
		_, err := s.UpsertRegistration(ctx, UpsertRegistrationInput{
			CID:             cid,
			CIDHash:         fmt.Sprintf("0x%064d", i),
			CIDHashSupplied: true,
		})
		require.NoError(t, err)
	}

	regs, err := s.GetRegistrationsByCIDHashes(ctx, []string{fmt.Sprintf("0x%064d", 0), fmt.Sprintf("0x%064d", 2), "0xunknown"})
	require.NoError(t, err)
	require.Len(t, regs, 2)

	cids := []string{regs[0].CID, regs[1].CID}
	assert.ElementsMatch(t, []string{"QmA", "QmC"}, cids)

	empty, err := s.GetRegistrationsByCIDHashes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListUnanchoredRegistrations(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()
	old := time.Now().Add(-time.Hour)

	_, err := s.UpsertRegistration(ctx, UpsertRegistrationInput{CID: "QmPending", CIDHash: "0x01", CIDHashSupplied: true, Now: old})
	require.NoError(t, err)
	_, err = s.UpsertRegistration(ctx, UpsertRegistrationInput{
		CID: "QmDone", CIDHash: "0x02", CIDHashSupplied: true,
		IPID: strPtr(testIPID), AnchorTxHash: strPtr("0xaaa"), Now: old,
	})
	require.NoError(t, err)
	_, err = s.UpsertRegistration(ctx, UpsertRegistrationInput{CID: "QmFresh", CIDHash: "0x03", CIDHashSupplied: true, Now: time.Now()})
	require.NoError(t, err)

	_, err = s.UpsertRegistration(ctx, UpsertRegistrationInput{CID: "QmAbandoned", CIDHash: "0x04", CIDHashSupplied: true, Now: time.Now().Add(-30 * 24 * time.Hour)})
	require.NoError(t, err)

	regs, err := s.ListUnanchoredRegistrations(ctx, time.Now().Add(-7*24*time.Hour), time.Now().Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "QmPending", regs[0].CID)
}

func TestCursorStore(t *testing.T) {
	cs := NewCursorStore(beginTestTx(t))
	ctx := context.Background()

	block, err := cs.GetBlockCursor(ctx, "remixhub")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), block)

	require.NoError(t, cs.SetBlockCursor(ctx, "remixhub", 100))
	require.NoError(t, cs.SetBlockCursor(ctx, "remixhub", 250))

	block, err = cs.GetBlockCursor(ctx, "remixhub")
	require.NoError(t, err)
	assert.Equal(t, uint64(250), block)
}

func TestPing(t *testing.T) {
	s := initPGTestDB(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestNormalizeConnectionPoolSettings(t *testing.T) {
	open, idle, lifetime, idleTime := NormalizeConnectionPoolSettings(0, 0, 0, 0)
	assert.Equal(t, 20, open)
	assert.Equal(t, 5, idle)
	assert.Equal(t, 5*time.Minute, lifetime)
	assert.Equal(t, 10*time.Minute, idleTime)

	open, idle, _, _ = NormalizeConnectionPoolSettings(3, 10, time.Hour, time.Minute)
	assert.Equal(t, 3, open)
	assert.Equal(t, 3, idle)
}
