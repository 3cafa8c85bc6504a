package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

var (
	cidV0Regex = regexp.MustCompile(`^Qm[1-9A-HJ-NP-Za-km-z]{44}$`)
	cidV1Regex = regexp.MustCompile(`^b[a-z2-7]{58,}$`)
	ipIDRegex  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	hashRegex  = regexp.MustCompile(`^0x[0-9a-f]{64}$`)
)

// CIDHash computes the content hash of a cid: keccak256 over its UTF-8 bytes,
// rendered as "0x" followed by 64 lowercase hex digits.
// The ledger indexes records by this value, so every read path must derive it the same way.
func CIDHash(cid string) string {
	return strings.ToLower(crypto.Keccak256Hash([]byte(cid)).Hex())
}

// CIDHashBytes returns the 32-byte form of CIDHash for contract calls
func CIDHashBytes(cid string) [32]byte {
	return crypto.Keccak256Hash([]byte(cid))
}

// NormalizeHash lowercases and trims a hex hash so lookups are case-insensitive
func NormalizeHash(hash string) string {
	return strings.ToLower(strings.TrimSpace(hash))
}

// IsValidHash checks whether a normalized value is a 0x-prefixed 32-byte hex string
func IsValidHash(hash string) bool {
	return hashRegex.MatchString(hash)
}

// IsValidCID checks whether a string looks like a CIDv0 (Qm...) or base32 CIDv1 (b...)
func IsValidCID(cid string) bool {
	return cidV0Regex.MatchString(cid) || cidV1Regex.MatchString(cid)
}

// IsValidIPID checks whether a string is a 0x-prefixed 20-byte hex address
func IsValidIPID(ipID string) bool {
	return ipIDRegex.MatchString(ipID)
}

// Registration is the cached mapping from a cid to its on-chain registration
type Registration struct {
	CID                   string     `json:"cid"`
	CIDHash               string     `json:"cidHash"`
	IPID                  *string    `json:"ipId"`
	TransactionHash       *string    `json:"txHash"`
	AnchorTransactionHash *string    `json:"anchorTxHash"`
	AnchorConfirmedAt     *time.Time `json:"anchorConfirmedAt"`
	Title                 *string    `json:"title"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// Anchored reports whether the registration is usable as a derivative parent
func (r *Registration) Anchored() bool {
	return r != nil && r.IPID != nil && *r.IPID != ""
}

// LookupEntry is the public projection returned by batch lookups
type LookupEntry struct {
	CID    string  `json:"cid"`
	IPID   *string `json:"ipId"`
	TxHash *string `json:"txHash"`
	Title  *string `json:"title"`
}

// DesignMetadata is the JSON document pinned alongside a design file.
// Optional fields serialize as null rather than being omitted.
type DesignMetadata struct {
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	FigmaURL    *string `json:"figmaUrl"`
	FigFile     *string `json:"figFile"`
	FigFileName *string `json:"figFileName"`
	Preview     *string `json:"preview"`
	CreatedAt   int64   `json:"createdAt"` // unix millis
}

// OriginalRegistered is a RemixHub OriginalRegistered event decoded from the ledger
type OriginalRegistered struct {
	IPID        string `json:"ipId"`
	Owner       string `json:"owner"`
	PresetID    uint16 `json:"presetId"`
	CIDHash     string `json:"cidHash"`
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
}
