package store

import (
	"context"
	"time"

	"github.com/remixhub/registry/internal/store/schema"
)

// UpsertRegistrationInput carries the fields of a registration merge-upsert.
// Nil pointers leave the stored value untouched.
type UpsertRegistrationInput struct {
	CID string
	// CIDHash is stored on insert. On update it replaces the stored hash only when CIDHashSupplied is set.
	CIDHash         string
	CIDHashSupplied bool
	IPID            *string
	TxHash          *string
	AnchorTxHash    *string
	Title           *string
	// Metadata is kept from the first write that provides it
	Metadata []byte
	// Now stamps anchor_confirmed_at when AnchorTxHash is set and no earlier anchor was recorded
	Now time.Time
}

// Store defines the interface for registration cache operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// UpsertRegistration creates or merges the registration for input.CID in one statement and returns the stored row
	UpsertRegistration(ctx context.Context, input UpsertRegistrationInput) (*schema.Registration, error)
	// GetRegistrationByCID returns the registration for cid, or nil when none exists
	GetRegistrationByCID(ctx context.Context, cid string) (*schema.Registration, error)
	// GetRegistrationsByCIDHashes returns every registration whose cid hash is in hashes, oldest update first
	GetRegistrationsByCIDHashes(ctx context.Context, hashes []string) ([]schema.Registration, error)
	// ListUnanchoredRegistrations returns rows created between createdAfter and createdBefore that still lack an ip id or anchor tx
	ListUnanchoredRegistrations(ctx context.Context, createdAfter, createdBefore time.Time, limit int) ([]schema.Registration, error)
	// Ping checks that the database is reachable
	Ping(ctx context.Context) error
}
