// Package storage defines the content-addressed storage boundary of
// the anchoring pipeline and its adapters. The pipeline only ever
// talks to the Gateway interface; IPFSGateway and MemoryGateway
// implement it.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// AddResult is returned by a successful upload.
type AddResult struct {
	// CID is the content address of the stored bytes. Re-uploading
	// identical bytes may or may not yield the same CID depending on
	// the backend; callers must not rely on it.
	CID string

	// Size is the stored size in bytes as reported by the backend.
	Size int64
}

// Gateway is the storage collaborator contract. Implementations must
// be safe for concurrent use; the pipeline does not serialize access.
type Gateway interface {
	// Upload stores data and returns its content address.
	Upload(ctx context.Context, data []byte) (AddResult, error)

	// Fetch returns the bytes stored at cid. Returns an error wrapping
	// ErrNotFound when the address is unknown.
	Fetch(ctx context.Context, cid string) ([]byte, error)

	// Pin marks cid as protected from garbage collection. Pinning is
	// idempotent: re-pinning already-pinned content succeeds.
	Pin(ctx context.Context, cid string) error

	// Unpin removes the durability pin from cid.
	Unpin(ctx context.Context, cid string) error

	// IsPinned reports whether cid is currently pinned.
	IsPinned(ctx context.Context, cid string) (bool, error)
}

// ErrNotFound indicates a fetch of an unknown content address.
var ErrNotFound = errors.New("content not found")

// UnavailableError indicates the storage backend could not be reached
// or failed a persist/fetch call. It is transient: the caller may
// retry the whole operation.
type UnavailableError struct {
	Op  string // "upload", "fetch", "pin/ls", ...
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// PinError indicates content was persisted but the durability pin
// failed. It is distinct from UnavailableError so callers can retry
// the pin alone — the upload is already complete and idempotent
// against re-pinning.
type PinError struct {
	CID string
	Err error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("pin failed for %s: %v", e.CID, e.Err)
}

func (e *PinError) Unwrap() error { return e.Err }
