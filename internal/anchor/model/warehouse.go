package model

import (
	"time"

	"github.com/agritrace/provchain/internal/hashing"
)

// PestInspection captures a warehouse pest-control check.
type PestInspection struct {
	InspectedAt      time.Time `json:"inspected_at"`
	PestFound        bool      `json:"pest_found"`
	PestType         string    `json:"pest_type,omitempty"`
	TreatmentApplied string    `json:"treatment_applied,omitempty"`
}

// WarehouseUpdateRequest is the business payload for stage 3: a
// warehouse reporting the stored state of a batch, including IoT
// sensor readings.
type WarehouseUpdateRequest struct {
	WarehouseID     string `json:"warehouse_id" binding:"required"`
	BatchID         string `json:"batch_id" binding:"required"`
	StorageLocation string `json:"storage_location"`

	// IoT sensor data.
	TemperatureCelsius *float64 `json:"temperature_celsius,omitempty"`
	HumidityPercentage *float64 `json:"humidity_percentage,omitempty"`
	CO2LevelPPM        *float64 `json:"co2_level_ppm,omitempty"`

	// Continuous monitoring references.
	IoTLogsURL        string   `json:"iot_logs_url,omitempty"`
	InspectionReports []string `json:"inspection_reports,omitempty"`

	PestInspection     *PestInspection `json:"pest_inspection,omitempty"`
	QualityDegradation *float64        `json:"quality_degradation,omitempty"`
}

// Validate checks required fields.
func (r *WarehouseUpdateRequest) Validate() error {
	if r.WarehouseID == "" {
		return &ErrValidation{Msg: "warehouse_id is required"}
	}
	if r.BatchID == "" {
		return &ErrValidation{Msg: "batch_id is required"}
	}
	return nil
}

// WarehouseStateRecord is the persisted warehouse envelope. Its state
// hash includes the content address, so it is the one record whose
// primary digest can only be derived after persistence (in Seal).
type WarehouseStateRecord struct {
	WarehouseID   string                 `json:"warehouse_id"`
	StateHash     hashing.Digest         `json:"state_hash"`
	WarehouseData WarehouseUpdateRequest `json:"warehouse_data"`
	UpdatedAt     time.Time              `json:"updated_at"`
	IPFSCID       string                 `json:"ipfs_cid"`
}

// NewWarehouseStateRecord builds the warehouse envelope. StateHash
// stays empty until Seal.
func NewWarehouseStateRecord(req WarehouseUpdateRequest, at time.Time) *WarehouseStateRecord {
	return &WarehouseStateRecord{
		WarehouseID:   req.WarehouseID,
		WarehouseData: req,
		UpdatedAt:     at.UTC(),
	}
}

func (m *WarehouseStateRecord) Stage() string { return "warehouse_state" }

// Seal sets the content address and derives the state hash from it:
// keccak256("{warehouse_id}-{batch_id}-{temperature}-{humidity}-{cid}").
func (m *WarehouseStateRecord) Seal(cid string) {
	m.IPFSCID = cid
	m.StateHash = hashing.Keccak256(hashing.Join(
		m.WarehouseData.WarehouseID,
		m.WarehouseData.BatchID,
		hashing.OptFloat(m.WarehouseData.TemperatureCelsius),
		hashing.OptFloat(m.WarehouseData.HumidityPercentage),
		cid,
	))
}

// Receipt returns the caller-visible warehouse update result.
func (m *WarehouseStateRecord) Receipt() WarehouseUpdateReceipt {
	return WarehouseUpdateReceipt{
		WarehouseID: m.WarehouseID,
		StateHash:   m.StateHash,
		IPFSCID:     m.IPFSCID,
		UpdatedAt:   m.UpdatedAt,
	}
}

// WarehouseUpdateReceipt is the stage 3 response.
type WarehouseUpdateReceipt struct {
	WarehouseID string         `json:"warehouse_id"`
	StateHash   hashing.Digest `json:"state_hash"`
	IPFSCID     string         `json:"ipfs_cid"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
