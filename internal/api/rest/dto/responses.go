package dto

import "github.com/remixhub/registry/internal/domain"

// AnchorResponse is the envelope returned by the anchor endpoint
type AnchorResponse struct {
	Success bool                 `json:"success"`
	Record  *domain.Registration `json:"record"`
}

// BatchLookupResponse maps each requested hash to its registration or null
type BatchLookupResponse struct {
	Success bool                           `json:"success"`
	Map     map[string]*domain.LookupEntry `json:"map"`
}

// RegistrationResponse wraps a single registration lookup
type RegistrationResponse struct {
	Success bool                 `json:"success"`
	Record  *domain.Registration `json:"record"`
}

// HashResponse is the content hash of a cid
type HashResponse struct {
	CID     string `json:"cid"`
	CIDHash string `json:"cidHash"`
}

// IPAssetResponse reports whether an ip id is registered on the ledger
type IPAssetResponse struct {
	IPID       string `json:"ipId"`
	Registered bool   `json:"registered"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}
