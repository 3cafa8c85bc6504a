package domain

import "errors"

var (
	// ErrInvalidCID is returned when a value does not look like an IPFS CID
	ErrInvalidCID = errors.New("invalid cid")
)
