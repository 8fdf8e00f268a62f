package model

import (
	"time"

	"github.com/agritrace/provchain/internal/hashing"
)

// MilestoneType classifies a logistics event.
type MilestoneType string

const (
	MilestonePickedUp     MilestoneType = "picked_up"
	MilestoneInTransit    MilestoneType = "in_transit"
	MilestoneAtCheckpoint MilestoneType = "at_checkpoint"
	MilestoneDelivered    MilestoneType = "delivered"
	MilestoneDelayed      MilestoneType = "delayed"
	MilestoneIncident     MilestoneType = "incident"
)

// valid reports whether t is a known milestone type.
func (t MilestoneType) valid() bool {
	switch t {
	case MilestonePickedUp, MilestoneInTransit, MilestoneAtCheckpoint,
		MilestoneDelivered, MilestoneDelayed, MilestoneIncident:
		return true
	}
	return false
}

// ShockEvent is a transport shock recorded by an impact sensor.
type ShockEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	GForce    float64         `json:"g_force"`
	Location  *GPSCoordinates `json:"location,omitempty"`
}

// LogisticsMilestoneRequest is the business payload for stage 4: a
// shipment reaching a tracked milestone.
type LogisticsMilestoneRequest struct {
	ShipmentID      string         `json:"shipment_id" binding:"required"`
	CurrentLocation string         `json:"current_location" binding:"required"`
	GPSCoordinates  GPSCoordinates `json:"gps_coordinates"`
	MilestoneType   MilestoneType  `json:"milestone_type" binding:"required"`

	// Full GPS trace kept off-chain.
	GPSHistoryURL string `json:"gps_history_url,omitempty"`

	CarrierName string `json:"carrier_name"`
	VehicleID   string `json:"vehicle_id"`
	DriverName  string `json:"driver_name,omitempty"`

	// Environmental conditions during transport.
	TemperatureLog string       `json:"temperature_log,omitempty"`
	ShockEvents    []ShockEvent `json:"shock_events,omitempty"`

	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	IsDelivered      bool       `json:"is_delivered"`
}

// Validate checks required fields and the milestone type.
func (r *LogisticsMilestoneRequest) Validate() error {
	if r.ShipmentID == "" {
		return &ErrValidation{Msg: "shipment_id is required"}
	}
	if r.CurrentLocation == "" {
		return &ErrValidation{Msg: "current_location is required"}
	}
	if !r.MilestoneType.valid() {
		return &ErrValidation{Msg: "milestone_type is not a recognised value"}
	}
	return nil
}

// LogisticsMilestoneRecord is the persisted milestone envelope.
type LogisticsMilestoneRecord struct {
	ShipmentID    string                    `json:"shipment_id"`
	LocationHash  hashing.Digest            `json:"location_hash"`
	MilestoneData LogisticsMilestoneRequest `json:"milestone_data"`
	RecordedAt    time.Time                 `json:"recorded_at"`
	IPFSCID       string                    `json:"ipfs_cid"`
}

// NewLogisticsMilestoneRecord builds the milestone envelope with its
// pre-persist location hash:
// keccak256("{shipment_id}-{location}-{latitude}-{longitude}").
func NewLogisticsMilestoneRecord(req LogisticsMilestoneRequest, at time.Time) *LogisticsMilestoneRecord {
	m := &LogisticsMilestoneRecord{
		ShipmentID:    req.ShipmentID,
		MilestoneData: req,
		RecordedAt:    at.UTC(),
	}
	m.LocationHash = hashing.Keccak256(hashing.Join(
		req.ShipmentID,
		req.CurrentLocation,
		hashing.Float(req.GPSCoordinates.Latitude),
		hashing.Float(req.GPSCoordinates.Longitude),
	))
	return m
}

func (m *LogisticsMilestoneRecord) Stage() string { return "logistics_milestone" }

func (m *LogisticsMilestoneRecord) Seal(cid string) { m.IPFSCID = cid }

// Receipt returns the caller-visible milestone result.
func (m *LogisticsMilestoneRecord) Receipt() LogisticsMilestoneReceipt {
	return LogisticsMilestoneReceipt{
		ShipmentID:   m.ShipmentID,
		LocationHash: m.LocationHash,
		IPFSCID:      m.IPFSCID,
		RecordedAt:   m.RecordedAt,
	}
}

// LogisticsMilestoneReceipt is the stage 4 response.
type LogisticsMilestoneReceipt struct {
	ShipmentID   string         `json:"shipment_id"`
	LocationHash hashing.Digest `json:"location_hash"`
	IPFSCID      string         `json:"ipfs_cid"`
	RecordedAt   time.Time      `json:"recorded_at"`
}
