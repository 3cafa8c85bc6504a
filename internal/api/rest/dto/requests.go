package dto

import (
	"fmt"
	"strings"

	"github.com/remixhub/registry/internal/domain"
)

// PublishRequest is the body of POST /api/v1/designs
type PublishRequest struct {
	CID   string  `json:"cid"`
	Title *string `json:"title"`
}

// Validate checks the request and trims its fields in place
func (r *PublishRequest) Validate() error {
	r.CID = strings.TrimSpace(r.CID)
	if r.CID == "" {
		return fmt.Errorf("cid is required")
	}
	if !domain.IsValidCID(r.CID) {
		return fmt.Errorf("cid %q is not a valid IPFS CID", r.CID)
	}
	return nil
}

// RemixRequest is the body of POST /api/v1/remixes
type RemixRequest struct {
	OriginalCID string  `json:"originalCid"`
	RemixCID    string  `json:"remixCid"`
	Title       *string `json:"title"`
}

// Validate checks the request and trims its fields in place
func (r *RemixRequest) Validate() error {
	r.OriginalCID = strings.TrimSpace(r.OriginalCID)
	r.RemixCID = strings.TrimSpace(r.RemixCID)
	if r.OriginalCID == "" || r.RemixCID == "" {
		return fmt.Errorf("originalCid and remixCid are required")
	}
	return nil
}

// AnchorRequest is the body of POST /api/v1/registrations/anchor
type AnchorRequest struct {
	CID          string  `json:"cid"`
	IPID         *string `json:"ipId"`
	CIDHash      *string `json:"cidHash"`
	TxHash       *string `json:"txHash"`
	AnchorTxHash *string `json:"anchorTxHash"`
	Title        *string `json:"title"`
}

// Validate checks the request
func (r *AnchorRequest) Validate() error {
	if strings.TrimSpace(r.CID) == "" {
		return fmt.Errorf("cid is required")
	}
	if r.IPID != nil {
		if ipID := strings.TrimSpace(*r.IPID); ipID != "" && !domain.IsValidIPID(ipID) {
			return fmt.Errorf("ipId %q is not a valid address", ipID)
		}
	}
	return nil
}

// BatchLookupRequest is the body of POST /api/v1/registrations/lookup/batch
type BatchLookupRequest struct {
	CIDHashes []string `json:"cidHashes"`
}
