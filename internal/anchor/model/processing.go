package model

import (
	"time"

	"github.com/agritrace/provchain/internal/hashing"
)

// ProcessingType classifies the transformation applied to a batch.
type ProcessingType string

const (
	ProcessingCleaning   ProcessingType = "cleaning"
	ProcessingDrying     ProcessingType = "drying"
	ProcessingMilling    ProcessingType = "milling"
	ProcessingExtraction ProcessingType = "extraction"
	ProcessingRefining   ProcessingType = "refining"
	ProcessingBlending   ProcessingType = "blending"
)

// valid reports whether t is a known processing type.
func (t ProcessingType) valid() bool {
	switch t {
	case ProcessingCleaning, ProcessingDrying, ProcessingMilling,
		ProcessingExtraction, ProcessingRefining, ProcessingBlending:
		return true
	}
	return false
}

// ProcessingParameters captures the physical process settings.
type ProcessingParameters struct {
	TemperatureCelsius *float64 `json:"temperature_celsius,omitempty"`
	PressureBar        *float64 `json:"pressure_bar,omitempty"`
	DurationMinutes    uint32   `json:"duration_minutes,omitempty"`
	Method             string   `json:"method"`
}

// ProcessBatchRequest is the business payload for stage 5: processing
// an input batch into one or more output batches.
type ProcessBatchRequest struct {
	InputBatchID   string         `json:"input_batch_id" binding:"required"`
	ProcessorName  string         `json:"processor_name" binding:"required"`
	ProcessingType ProcessingType `json:"processing_type" binding:"required"`

	InputQuantityKg  float64 `json:"input_quantity_kg"`
	OutputQuantityKg float64 `json:"output_quantity_kg"`

	YieldPercentage float64 `json:"yield_percentage"`
	WastePercentage float64 `json:"waste_percentage"`

	// Lab results and certifications kept off-chain.
	LabResultsURL  []string `json:"lab_results_url,omitempty"`
	Certifications []string `json:"certifications,omitempty"`

	// Output batches, for splitting/transformation.
	OutputBatchIDs []string `json:"output_batch_ids"`

	ProcessingParameters *ProcessingParameters `json:"processing_parameters,omitempty"`
}

// Validate checks required fields, the processing type, and that at
// least one output batch is declared.
func (r *ProcessBatchRequest) Validate() error {
	if r.InputBatchID == "" {
		return &ErrValidation{Msg: "input_batch_id is required"}
	}
	if r.ProcessorName == "" {
		return &ErrValidation{Msg: "processor_name is required"}
	}
	if !r.ProcessingType.valid() {
		return &ErrValidation{Msg: "processing_type is not a recognised value"}
	}
	if len(r.OutputBatchIDs) == 0 {
		return &ErrValidation{Msg: "at least one output_batch_id is required"}
	}
	return nil
}

// ProcessBatchRecord is the persisted processing envelope. A single
// processing call derives three independent hash families: the input
// batch hash, one hash per output batch, and the transform hash.
type ProcessBatchRecord struct {
	InputBatchHash    hashing.Digest      `json:"input_batch_hash"`
	TransformHash     hashing.Digest      `json:"transform_hash"`
	OutputBatchHashes []hashing.Digest    `json:"output_batch_hashes"`
	ProcessData       ProcessBatchRequest `json:"process_data"`
	ProcessedAt       time.Time           `json:"processed_at"`
	IPFSCID           string              `json:"ipfs_cid"`
}

// NewProcessBatchRecord builds the processing envelope with all three
// pre-persist hash families:
//
//	input:     keccak256("{input_batch_id}-{processor_name}-{input_quantity_kg}")
//	output[i]: keccak256("{output_batch_ids[i]}-{output_quantity_kg}")
//	transform: keccak256("{processing_type}-{yield_percentage}-{waste_percentage}")
func NewProcessBatchRecord(req ProcessBatchRequest, at time.Time) *ProcessBatchRecord {
	m := &ProcessBatchRecord{
		ProcessData: req,
		ProcessedAt: at.UTC(),
	}

	m.InputBatchHash = hashing.Keccak256(hashing.Join(
		req.InputBatchID,
		req.ProcessorName,
		hashing.Float(req.InputQuantityKg),
	))

	m.OutputBatchHashes = make([]hashing.Digest, 0, len(req.OutputBatchIDs))
	for _, id := range req.OutputBatchIDs {
		m.OutputBatchHashes = append(m.OutputBatchHashes, hashing.Keccak256(hashing.Join(
			id,
			hashing.Float(req.OutputQuantityKg),
		)))
	}

	m.TransformHash = hashing.Keccak256(hashing.Join(
		string(req.ProcessingType),
		hashing.Float(req.YieldPercentage),
		hashing.Float(req.WastePercentage),
	))

	return m
}

func (m *ProcessBatchRecord) Stage() string { return "process_batch" }

func (m *ProcessBatchRecord) Seal(cid string) { m.IPFSCID = cid }

// Receipt returns the caller-visible processing result.
func (m *ProcessBatchRecord) Receipt() ProcessBatchReceipt {
	return ProcessBatchReceipt{
		InputBatchHash:    m.InputBatchHash,
		TransformHash:     m.TransformHash,
		OutputBatchHashes: m.OutputBatchHashes,
		IPFSCID:           m.IPFSCID,
		ProcessedAt:       m.ProcessedAt,
	}
}

// ProcessBatchReceipt is the stage 5 response.
type ProcessBatchReceipt struct {
	InputBatchHash    hashing.Digest   `json:"input_batch_hash"`
	TransformHash     hashing.Digest   `json:"transform_hash"`
	OutputBatchHashes []hashing.Digest `json:"output_batch_hashes"`
	IPFSCID           string           `json:"ipfs_cid"`
	ProcessedAt       time.Time        `json:"processed_at"`
}
