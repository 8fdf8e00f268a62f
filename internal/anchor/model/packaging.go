package model

import (
	"time"

	"github.com/agritrace/provchain/internal/hashing"
)

// CreateSKURequest is the business payload for stage 6: packaging a
// batch into a consumer SKU.
type CreateSKURequest struct {
	SKUID         string `json:"sku_id" binding:"required"`
	ParentBatchID string `json:"parent_batch_id" binding:"required"`
	ProductName   string `json:"product_name" binding:"required"`

	Brand           string  `json:"brand"`
	UnitWeightGrams float64 `json:"unit_weight_grams"`
	UnitsPackaged   uint32  `json:"units_packaged"`

	PackageType string `json:"package_type"`
	Barcode     string `json:"barcode,omitempty"`
	QRCode      string `json:"qr_code,omitempty"`

	NutritionalInfoURL       string   `json:"nutritional_info_url,omitempty"`
	RegulatoryCertifications []string `json:"regulatory_certifications,omitempty"`

	// Consumer-facing data.
	LabelImages    []string   `json:"label_images,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	BestBeforeDate *time.Time `json:"best_before_date,omitempty"`

	// Optional merkle proof leaves for batch verification. When
	// absent, the merkle root is computed over the SKU ID alone.
	MerkleProof []string `json:"merkle_proof,omitempty"`
}

// Validate checks required fields.
func (r *CreateSKURequest) Validate() error {
	if r.SKUID == "" {
		return &ErrValidation{Msg: "sku_id is required"}
	}
	if r.ParentBatchID == "" {
		return &ErrValidation{Msg: "parent_batch_id is required"}
	}
	if r.ProductName == "" {
		return &ErrValidation{Msg: "product_name is required"}
	}
	return nil
}

// CreateSKURecord is the persisted packaging envelope.
type CreateSKURecord struct {
	SKUID           string           `json:"sku_id"`
	ParentBatchHash hashing.Digest   `json:"parent_batch_hash"`
	MerkleRoot      hashing.Digest   `json:"merkle_root"`
	SKUData         CreateSKURequest `json:"sku_data"`
	PackagedAt      time.Time        `json:"packaged_at"`
	IPFSCID         string           `json:"ipfs_cid"`
}

// NewCreateSKURecord builds the packaging envelope. The parent batch
// hash is keccak256("{parent_batch_id}-{product_name}"); the merkle
// root aggregates the supplied proof leaves, or the singleton SKU ID
// when no proof is given (in which case the root is the SKU ID
// verbatim, per the single-leaf rule).
func NewCreateSKURecord(req CreateSKURequest, at time.Time) *CreateSKURecord {
	m := &CreateSKURecord{
		SKUID:      req.SKUID,
		SKUData:    req,
		PackagedAt: at.UTC(),
	}
	m.ParentBatchHash = hashing.Keccak256(hashing.Join(
		req.ParentBatchID,
		req.ProductName,
	))

	leaves := req.MerkleProof
	if len(leaves) == 0 {
		leaves = []string{req.SKUID}
	}
	m.MerkleRoot = hashing.RootStrings(leaves)

	return m
}

func (m *CreateSKURecord) Stage() string { return "create_sku" }

func (m *CreateSKURecord) Seal(cid string) { m.IPFSCID = cid }

// Receipt returns the caller-visible packaging result.
func (m *CreateSKURecord) Receipt() CreateSKUReceipt {
	return CreateSKUReceipt{
		SKUID:           m.SKUID,
		ParentBatchHash: m.ParentBatchHash,
		MerkleRoot:      m.MerkleRoot,
		IPFSCID:         m.IPFSCID,
		PackagedAt:      m.PackagedAt,
	}
}

// CreateSKUReceipt is the stage 6 response.
type CreateSKUReceipt struct {
	SKUID           string         `json:"sku_id"`
	ParentBatchHash hashing.Digest `json:"parent_batch_hash"`
	MerkleRoot      hashing.Digest `json:"merkle_root"`
	IPFSCID         string         `json:"ipfs_cid"`
	PackagedAt      time.Time      `json:"packaged_at"`
}
