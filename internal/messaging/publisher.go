package messaging

import (
	"context"

	"github.com/remixhub/registry/internal/domain"
)

// Publisher defines the interface for publishing registration events to a message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishRegistrationEvent publishes a registration event
	PublishRegistrationEvent(ctx context.Context, event *domain.RegistrationEvent) error
	// Close closes the connection
	Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event, used when no broker is configured
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishRegistrationEvent(context.Context, *domain.RegistrationEvent) error {
	return nil
}

func (noopPublisher) Close() {}
