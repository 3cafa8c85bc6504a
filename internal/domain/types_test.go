package domain

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCIDHash(t *testing.T) {
	tests := []struct {
		name string
		cid  string
		want string
	}{
		{
			name: "empty string",
			cid:  "",
			want: "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		},
		{
			name: "ascii input",
			cid:  "hello",
			want: "0x1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CIDHash(tt.cid))
		})
	}
}

func TestCIDHash_Deterministic(t *testing.T) {
	cid := "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	first := CIDHash(cid)

	for range 10 {
		assert.Equal(t, first, CIDHash(cid))
	}
	assert.Len(t, first, 66)
	assert.True(t, strings.HasPrefix(first, "0x"))
	assert.Equal(t, strings.ToLower(first), first)
	assert.True(t, IsValidHash(first))
}

func TestCIDHash_DistinctInputs(t *testing.T) {
	assert.NotEqual(t, CIDHash("QmAbc"), CIDHash("QmAbd"))
	// Case matters: the hash is over the raw text, not a normalized cid
	assert.NotEqual(t, CIDHash("QmAbc"), CIDHash("qmabc"))
}

func TestCIDHashBytes_MatchesHex(t *testing.T) {
	b := CIDHashBytes("QmAbc")
	assert.Equal(t, CIDHash("QmAbc")[2:], hex.EncodeToString(b[:]))
}

func TestNormalizeHash(t *testing.T) {
	assert.Equal(t, "0xabcdef", NormalizeHash("  0xABCdef "))
}

func TestIsValidCID(t *testing.T) {
	tests := []struct {
		cid  string
		want bool
	}{
		{"QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", true},
		{"bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi", true},
		{"QmAbc", false},
		{"", false},
		{"https://ipfs.io/ipfs/QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", false},
		{"QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbd0", false},
	}

	for _, tt := range tests {
		t.Run(tt.cid, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCID(tt.cid))
		})
	}
}

func TestIsValidIPID(t *testing.T) {
	assert.True(t, IsValidIPID("0x1234567890abcdef1234567890ABCDEF12345678"))
	assert.False(t, IsValidIPID("1234567890abcdef1234567890abcdef12345678"))
	assert.False(t, IsValidIPID("0x1234"))
	assert.False(t, IsValidIPID("0xZZ34567890abcdef1234567890abcdef12345678"))
}

func TestRegistrationAnchored(t *testing.T) {
	var nilReg *Registration
	assert.False(t, nilReg.Anchored())

	empty := ""
	assert.False(t, (&Registration{CID: "QmAbc"}).Anchored())
	assert.False(t, (&Registration{CID: "QmAbc", IPID: &empty}).Anchored())

	ipID := "0x1234567890abcdef1234567890abcdef12345678"
	assert.True(t, (&Registration{CID: "QmAbc", IPID: &ipID}).Anchored())
}
