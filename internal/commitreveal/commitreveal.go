// Package commitreveal implements the two-stage commit-reveal scheme
// used to anchor AI quality scores before they are disclosed: the
// commit hash can be published immediately, and the payload plus nonce
// later prove the score was fixed in advance.
package commitreveal

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/agritrace/provchain/internal/hashing"
)

// nonceBytes is the nonce length in bytes. 16 bytes gives 128 bits of
// entropy, the minimum for the commit hash to reveal nothing about the
// payload.
const nonceBytes = 16

// Pair holds one commit-reveal binding.
//
// Invariant: CommitHash = SHA256(RevealHash || Nonce) and
// RevealHash = SHA256(payload), where "||" is string concatenation of
// the digest's hex form and the nonce's hex form.
type Pair struct {
	Nonce      string         `json:"nonce"`
	RevealHash hashing.Digest `json:"reveal_hash"`
	CommitHash hashing.Digest `json:"commit_hash"`
}

// Commit generates a fresh random nonce and derives the reveal and
// commit hashes for payload. An entropy source failure fails the
// whole operation; there is no fallback to a weaker source.
func Commit(payload []byte) (Pair, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return Pair{}, fmt.Errorf("generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	reveal := hashing.SHA256(payload)
	commit := hashing.SHA256([]byte(string(reveal) + nonce))

	return Pair{
		Nonce:      nonce,
		RevealHash: reveal,
		CommitHash: commit,
	}, nil
}

// Verify recomputes the reveal hash from payload and the commit hash
// from (reveal, nonce), and reports whether both match the stored pair.
func Verify(p Pair, payload []byte) bool {
	reveal := hashing.SHA256(payload)
	if reveal != p.RevealHash {
		return false
	}
	commit := hashing.SHA256([]byte(string(reveal) + p.Nonce))
	return commit == p.CommitHash
}
