package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/remixhub/registry/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// UpsertRegistration inserts the registration or merges it into the existing row for the same cid.
//
// Merge rules:
//   - ip_id, tx_hash, anchor_tx_hash, title: supplied values win, absent values keep the stored one
//   - cid_hash: replaced only when the caller supplied one
//   - anchor_confirmed_at, metadata: the first non-null value is kept forever
func (s *pgStore) UpsertRegistration(ctx context.Context, input UpsertRegistrationInput) (*schema.Registration, error) {
	if input.CID == "" {
		return nil, errors.New("cid is required")
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	reg := schema.Registration{
		CID:          input.CID,
		CIDHash:      input.CIDHash,
		IPID:         input.IPID,
		TxHash:       input.TxHash,
		AnchorTxHash: input.AnchorTxHash,
		Title:        input.Title,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.AnchorTxHash != nil {
		reg.AnchorConfirmedAt = &now
	}
	if len(input.Metadata) > 0 {
		reg.Metadata = datatypes.JSON(input.Metadata)
	}

	err := s.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "cid"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"cid_hash":            gorm.Expr("CASE WHEN ? THEN EXCLUDED.cid_hash ELSE registrations.cid_hash END", input.CIDHashSupplied),
					"ip_id":               gorm.Expr("COALESCE(EXCLUDED.ip_id, registrations.ip_id)"),
					"tx_hash":             gorm.Expr("COALESCE(EXCLUDED.tx_hash, registrations.tx_hash)"),
					"anchor_tx_hash":      gorm.Expr("COALESCE(EXCLUDED.anchor_tx_hash, registrations.anchor_tx_hash)"),
					"anchor_confirmed_at": gorm.Expr("COALESCE(registrations.anchor_confirmed_at, EXCLUDED.anchor_confirmed_at)"),
					"title":               gorm.Expr("COALESCE(EXCLUDED.title, registrations.title)"),
					"metadata":            gorm.Expr("COALESCE(registrations.metadata, EXCLUDED.metadata)"),
					"updated_at":          gorm.Expr("EXCLUDED.updated_at"),
				}),
			},
			clause.Returning{},
		).
		Create(&reg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert registration: %w", err)
	}

	return &reg, nil
}

// GetRegistrationByCID retrieves a registration by its cid
func (s *pgStore) GetRegistrationByCID(ctx context.Context, cid string) (*schema.Registration, error) {
	var reg schema.Registration
	err := s.db.WithContext(ctx).Where("cid = ?", cid).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	return &reg, nil
}

// GetRegistrationsByCIDHashes retrieves registrations for a set of lowercase cid hashes
func (s *pgStore) GetRegistrationsByCIDHashes(ctx context.Context, hashes []string) ([]schema.Registration, error) {
	if len(hashes) == 0 {
		return []schema.Registration{}, nil
	}

	var regs []schema.Registration
	err := s.db.WithContext(ctx).
		Where("cid_hash IN ?", hashes).
		Order("updated_at ASC").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations by cid hashes: %w", err)
	}

	return regs, nil
}

// ListUnanchoredRegistrations lists registrations still waiting for an ip id or an anchor transaction
func (s *pgStore) ListUnanchoredRegistrations(ctx context.Context, createdAfter, createdBefore time.Time, limit int) ([]schema.Registration, error) {
	var regs []schema.Registration
	err := s.db.WithContext(ctx).
		Where("(ip_id IS NULL OR anchor_tx_hash IS NULL) AND created_at > ? AND created_at < ?", createdAfter, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unanchored registrations: %w", err)
	}

	return regs, nil
}

// Ping checks database connectivity
func (s *pgStore) Ping(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
