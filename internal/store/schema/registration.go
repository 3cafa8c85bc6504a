package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Registration maps a pinned design cid to its on-chain registration.
// One row per cid; fields are only ever added or refined, never cleared.
type Registration struct {
	CID               string         `gorm:"column:cid;primaryKey;type:text"`
	CIDHash           string         `gorm:"column:cid_hash;type:text;not null;index:idx_registrations_cid_hash"`
	IPID              *string        `gorm:"column:ip_id;type:text"`
	TxHash            *string        `gorm:"column:tx_hash;type:text"`
	AnchorTxHash      *string        `gorm:"column:anchor_tx_hash;type:text"`
	AnchorConfirmedAt *time.Time     `gorm:"column:anchor_confirmed_at;type:timestamptz"`
	Title             *string        `gorm:"column:title;type:text"`
	Metadata          datatypes.JSON `gorm:"column:metadata;type:jsonb"`
	CreatedAt         time.Time      `gorm:"column:created_at;type:timestamptz;not null;autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (Registration) TableName() string {
	return "registrations"
}
