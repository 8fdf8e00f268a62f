package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agritrace/provchain/internal/hashing"
)

// MemoryJournal is an in-memory, thread-safe Journal implementation
// for single-process deployments. The chain does not survive a
// restart; the anchored content itself lives in the storage backend.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries []*Entry
}

// New creates a MemoryJournal initialised with the canonical genesis
// entry at index 0.
func New() *MemoryJournal {
	j := &MemoryJournal{}
	genesis := &Entry{
		Index:      0,
		Timestamp:  time.Now().UTC(),
		Stage:      "genesis",
		RecordHash: GenesisHash,
		PrevHash:   GenesisHash,
		Hash:       GenesisHash, // genesis hash is the well-known constant, not computed
	}
	j.entries = append(j.entries, genesis)
	return j
}

// Append implements Journal.
func (j *MemoryJournal) Append(_ context.Context, stage, cid string, record any) (*Entry, error) {
	rh, err := recordHash(record)
	if err != nil {
		return nil, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	prev := j.entries[len(j.entries)-1]
	entry := &Entry{
		Index:      len(j.entries),
		Timestamp:  time.Now().UTC(),
		Stage:      stage,
		CID:        cid,
		RecordHash: rh,
		PrevHash:   prev.Hash,
	}
	entry.Hash = hashEntry(entry)
	j.entries = append(j.entries, entry)
	return entry, nil
}

// Get implements Journal.
func (j *MemoryJournal) Get(_ context.Context, index int) (*Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if index < 0 || index >= len(j.entries) {
		return nil, fmt.Errorf("index %d out of range", index)
	}
	return j.entries[index], nil
}

// Len implements Journal.
func (j *MemoryJournal) Len(_ context.Context) (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries), nil
}

// Verify implements Journal. It walks the chain and checks that all
// hashes are consistent; genesis is validated against GenesisHash.
func (j *MemoryJournal) Verify(_ context.Context) error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	for i, curr := range j.entries {
		if i == 0 {
			if curr.Hash != GenesisHash {
				return fmt.Errorf("genesis entry has wrong hash: got %q", curr.Hash)
			}
			continue
		}

		prev := j.entries[i-1]
		if curr.PrevHash != prev.Hash {
			return fmt.Errorf("hash chain broken at index %d", curr.Index)
		}
		if curr.Hash != hashEntry(curr) {
			return fmt.Errorf("entry %d has invalid hash", curr.Index)
		}
	}
	return nil
}

// Root implements Journal.
func (j *MemoryJournal) Root(_ context.Context) (hashing.Digest, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.entries[len(j.entries)-1].Hash, nil
}
