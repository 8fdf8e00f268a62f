// Package journal provides an append-only, hash-chained audit log of
// anchoring operations. Each successful anchor appends one entry; the
// chain makes after-the-fact tampering with the local audit trail
// detectable without consulting the storage backend.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agritrace/provchain/internal/hashing"
)

// GenesisHash is the canonical well-known hash of the genesis entry.
// All subsequent entry hashes chain from this constant rather than
// from a computed value.
const GenesisHash hashing.Digest = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Entry is a single audit record in the anchoring journal.
type Entry struct {
	Index      int            `json:"index"`
	Timestamp  time.Time      `json:"timestamp"`
	Stage      string         `json:"stage"` // stage name, or "genesis"
	CID        string         `json:"cid"`
	RecordHash hashing.Digest `json:"record_hash"` // SHA-256 of the anchored envelope
	PrevHash   hashing.Digest `json:"prev_hash"`
	Hash       hashing.Digest `json:"hash"`
}

// Journal is the interface for the append-only audit chain.
type Journal interface {
	// Append adds a new entry chained to the previous one. record is
	// JSON-marshalled and its SHA-256 is stored as RecordHash.
	Append(ctx context.Context, stage, cid string, record any) (*Entry, error)

	// Get returns the entry at the given zero-based index.
	Get(ctx context.Context, index int) (*Entry, error)

	// Len returns the total number of entries (including genesis).
	Len(ctx context.Context) (int, error)

	// Verify walks the entire chain and checks hash consistency.
	Verify(ctx context.Context) error

	// Root returns the hash of the most recent entry (the chain tip).
	Root(ctx context.Context) (hashing.Digest, error)
}

// hashEntry computes a deterministic digest over an entry's fields.
// Never called on the genesis entry (index 0).
func hashEntry(e *Entry) hashing.Digest {
	return hashing.SHA256(fmt.Appendf(nil, "%d|%s|%s|%s|%s|%s",
		e.Index, e.Timestamp.Format(time.RFC3339Nano),
		e.Stage, e.CID, e.RecordHash, e.PrevHash,
	))
}

// recordHash returns the digest of the JSON form of record.
func recordHash(record any) (hashing.Digest, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return hashing.SHA256(data), nil
}
