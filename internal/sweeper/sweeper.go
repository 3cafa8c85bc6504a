package sweeper

import (
	"context"
)

// Sweeper is a periodic background repair task
//
//go:generate mockgen -source=sweeper.go -destination=../mocks/sweeper.go -package=mocks -mock_names=Sweeper=MockSweeper
type Sweeper interface {
	// Start runs cycles every interval until the context is canceled or Stop is called
	Start(ctx context.Context) error

	// Stop waits for the running cycle to finish or ctx to expire
	Stop(ctx context.Context) error

	// RunCycle performs a single pass and returns the number of repaired rows
	RunCycle(ctx context.Context) (int, error)

	// Name identifies the sweeper in logs
	Name() string
}
