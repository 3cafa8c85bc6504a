package domain

import "time"

// RegistrationEventType represents the kind of registration change published to the broker
type RegistrationEventType string

const (
	RegistrationEventAnchored  RegistrationEventType = "anchored"
	RegistrationEventPublished RegistrationEventType = "published"
	RegistrationEventRemixed   RegistrationEventType = "remixed"
	RegistrationEventRepaired  RegistrationEventType = "repaired"
)

// RegistrationEvent is emitted after a registration gains an on-chain identifier
type RegistrationEvent struct {
	ID         string                `json:"id"`
	Type       RegistrationEventType `json:"type"`
	CID        string                `json:"cid"`
	CIDHash    string                `json:"cidHash"`
	IPID       string                `json:"ipId"`
	TxHash     *string               `json:"txHash,omitempty"`
	ParentIPID *string               `json:"parentIpId,omitempty"`
	OccurredAt time.Time             `json:"occurredAt"`
}
