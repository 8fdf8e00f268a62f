package model

import (
	"time"

	"github.com/agritrace/provchain/internal/hashing"
)

// FPOPurchaseRequest is the business payload for stage 2: a farmer
// producer organisation purchasing a batch from a farmer.
type FPOPurchaseRequest struct {
	FarmerDID    string  `json:"farmer_did" binding:"required"`
	FPOName      string  `json:"fpo_name" binding:"required"`
	BatchID      string  `json:"batch_id" binding:"required"`
	QuantityKg   float64 `json:"quantity_kg"`
	PricePerKg   float64 `json:"price_per_kg"`
	QualityGrade string  `json:"quality_grade"`

	// Off-chain document references.
	QualityReportURL    string   `json:"quality_report_url,omitempty"`
	WeightSlipURL       string   `json:"weight_slip_url,omitempty"`
	Photos              []string `json:"photos,omitempty"`
	MoistureContent     *float64 `json:"moisture_content,omitempty"`
	ImpurityPercentage  *float64 `json:"impurity_percentage,omitempty"`
	PaymentReference    string   `json:"payment_reference,omitempty"`
}

// Validate checks required fields.
func (r *FPOPurchaseRequest) Validate() error {
	if r.FarmerDID == "" {
		return &ErrValidation{Msg: "farmer_did is required"}
	}
	if r.FPOName == "" {
		return &ErrValidation{Msg: "fpo_name is required"}
	}
	if r.BatchID == "" {
		return &ErrValidation{Msg: "batch_id is required"}
	}
	if r.QuantityKg <= 0 {
		return &ErrValidation{Msg: "quantity_kg must be positive"}
	}
	return nil
}

// FPOPurchaseRecord is the persisted purchase envelope.
type FPOPurchaseRecord struct {
	BatchHash    hashing.Digest     `json:"batch_hash"`
	PurchaseData FPOPurchaseRequest `json:"purchase_data"`
	PurchasedAt  time.Time          `json:"purchased_at"`
	IPFSCID      string             `json:"ipfs_cid"`
}

// NewFPOPurchaseRecord builds the purchase envelope with its pre-persist
// batch hash: keccak256("{farmer_did}-{batch_id}-{quantity_kg}-{fpo_name}").
func NewFPOPurchaseRecord(req FPOPurchaseRequest, at time.Time) *FPOPurchaseRecord {
	m := &FPOPurchaseRecord{
		PurchaseData: req,
		PurchasedAt:  at.UTC(),
	}
	m.BatchHash = hashing.Keccak256(hashing.Join(
		req.FarmerDID,
		req.BatchID,
		hashing.Float(req.QuantityKg),
		req.FPOName,
	))
	return m
}

func (m *FPOPurchaseRecord) Stage() string { return "fpo_purchase" }

func (m *FPOPurchaseRecord) Seal(cid string) { m.IPFSCID = cid }

// Receipt returns the caller-visible purchase result.
func (m *FPOPurchaseRecord) Receipt() FPOPurchaseReceipt {
	return FPOPurchaseReceipt{
		BatchHash:   m.BatchHash,
		IPFSCID:     m.IPFSCID,
		PurchasedAt: m.PurchasedAt,
	}
}

// FPOPurchaseReceipt is the stage 2 response.
type FPOPurchaseReceipt struct {
	BatchHash   hashing.Digest `json:"batch_hash"`
	IPFSCID     string         `json:"ipfs_cid"`
	PurchasedAt time.Time      `json:"purchased_at"`
}
