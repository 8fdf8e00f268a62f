package storage

import (
	"context"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"sync"
)

// MemoryGateway is an in-process Gateway used by tests and the
// storage.backend=memory development mode. Addresses are derived from
// a content hash plus an insertion counter, so identical bytes
// uploaded twice get distinct addresses — callers must not assume
// address-from-content determinism, and this keeps them honest.
type MemoryGateway struct {
	mu      sync.RWMutex
	objects map[string][]byte
	pins    map[string]bool
	seq     int
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		objects: make(map[string][]byte),
		pins:    make(map[string]bool),
	}
}

// Upload stores data and returns a synthetic content address.
func (m *MemoryGateway) Upload(_ context.Context, data []byte) (AddResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	sum := sha256.Sum256(append([]byte(fmt.Sprintf("%d|", m.seq)), data...))
	cid := "mem" + base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:20])

	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[cid] = stored

	return AddResult{CID: cid, Size: int64(len(data))}, nil
}

// Fetch returns the bytes stored at cid.
func (m *MemoryGateway) Fetch(_ context.Context, cid string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[cid]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", cid, ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Pin marks cid as pinned. Pinning unknown content fails.
func (m *MemoryGateway) Pin(_ context.Context, cid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[cid]; !ok {
		return &PinError{CID: cid, Err: ErrNotFound}
	}
	m.pins[cid] = true
	return nil
}

// Unpin removes the pin from cid. Unpinning unpinned content is a no-op.
func (m *MemoryGateway) Unpin(_ context.Context, cid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pins, cid)
	return nil
}

// IsPinned reports whether cid is pinned.
func (m *MemoryGateway) IsPinned(_ context.Context, cid string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pins[cid], nil
}

// Len returns the number of stored objects.
func (m *MemoryGateway) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
