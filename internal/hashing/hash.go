// Package hashing provides the two digest families used to anchor
// supply-chain records: Keccak-256 for hashes that must be verifiable
// on-chain (Solidity's keccak256), and SHA-256 for internal chaining
// such as merkle nodes and commit-reveal hashes.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Digest is a "0x"-prefixed, lowercase hex-encoded 256-bit hash.
// The algorithm family is determined by the constructor that produced
// it; both families share the same wire format so digests can be
// compared against values already anchored on-chain.
type Digest string

// Keccak256 returns the Solidity-compatible Keccak-256 digest of data.
func Keccak256(data []byte) Digest {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return Digest("0x" + hex.EncodeToString(h.Sum(nil)))
}

// SHA256 returns the general-purpose SHA-256 digest of data.
func SHA256(data []byte) Digest {
	sum := sha256.Sum256(data)
	return Digest("0x" + hex.EncodeToString(sum[:]))
}

// Join builds the canonical hash input for a stage: its fields joined
// with "-" in the caller's order. Field order and the delimiter are
// part of the reproducibility contract — reordering changes the digest.
func Join(fields ...string) []byte {
	return []byte(strings.Join(fields, "-"))
}

// Float renders a float in its shortest round-trip decimal form for
// use as a hash input field.
func Float(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// OptFloat renders an optional float for use as a hash input field.
// Absent values render as "none" so they remain distinguishable from
// an explicit zero.
func OptFloat(f *float64) string {
	if f == nil {
		return "none"
	}
	return Float(*f)
}
