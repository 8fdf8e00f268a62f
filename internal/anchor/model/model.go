// Package model defines the payloads accepted by the anchoring
// pipeline, the canonical records it persists to content-addressed
// storage, and the receipts it returns.
//
// Every stage follows the same shape: a Request (validated business
// payload), a Record (the persisted JSON envelope — payload plus
// derived hashes plus timestamp, with the content address empty until
// persistence succeeds), and a Receipt (the only artifact callers see,
// constructed solely on the success path).
package model

import (
	"github.com/google/uuid"
)

// Record is the common interface over the per-stage persisted
// envelopes. Seal is called exactly once, after the envelope's bytes
// have been durably stored: it sets the content address and computes
// any digest that depends on it.
type Record interface {
	// Stage names the record type, e.g. "farmer_registration".
	Stage() string

	// Seal stores the content address on the record and finalizes
	// address-dependent digests.
	Seal(cid string)
}

// NewDID generates a decentralized identifier with the given method
// prefix, e.g. NewDID("farmer") → "did:farmer:<uuid>".
func NewDID(prefix string) string {
	return "did:" + prefix + ":" + uuid.NewString()
}

// GPSCoordinates is a geographic position attached to registrations
// and logistics milestones.
type GPSCoordinates struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
}
