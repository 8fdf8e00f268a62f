package model

import (
	"time"

	"github.com/agritrace/provchain/internal/hashing"
)

// FarmerRegistrationRequest is the business payload for stage 1:
// registering a farmer and the crop they will supply.
type FarmerRegistrationRequest struct {
	FarmerName       string          `json:"farmer_name" binding:"required"`
	CropType         string          `json:"crop_type" binding:"required"`
	LandAreaHectares float64         `json:"land_area_hectares"`
	Location         string          `json:"location" binding:"required"`
	GPSCoordinates   *GPSCoordinates `json:"gps_coordinates,omitempty"`

	// Off-chain document references.
	KYCDocumentURL      string   `json:"kyc_document_url,omitempty"`
	LandOwnershipDocs   []string `json:"land_ownership_docs,omitempty"`
	SatelliteImageryURL string   `json:"satellite_imagery_url,omitempty"`
	SoilTestReport      string   `json:"soil_test_report,omitempty"`

	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Validate checks required fields.
func (r *FarmerRegistrationRequest) Validate() error {
	if r.FarmerName == "" {
		return &ErrValidation{Msg: "farmer_name is required"}
	}
	if r.CropType == "" {
		return &ErrValidation{Msg: "crop_type is required"}
	}
	if r.Location == "" {
		return &ErrValidation{Msg: "location is required"}
	}
	return nil
}

// FarmerRegistrationRecord is the persisted registration envelope.
type FarmerRegistrationRecord struct {
	FarmerDID        string                    `json:"farmer_did"`
	RegistrationData FarmerRegistrationRequest `json:"registration_data"`
	RegisteredAt     time.Time                 `json:"registered_at"`
	IPFSCID          string                    `json:"ipfs_cid"`
	CropIDHash       hashing.Digest            `json:"crop_id_hash"`
}

// NewFarmerRegistrationRecord builds the registration envelope and
// computes the crop ID hash. The hash input is fully known from the
// payload, so it is derived before persistence:
// keccak256("{did}-{crop_type}-{registered_at}").
func NewFarmerRegistrationRecord(req FarmerRegistrationRequest, did string, at time.Time) *FarmerRegistrationRecord {
	m := &FarmerRegistrationRecord{
		FarmerDID:        did,
		RegistrationData: req,
		RegisteredAt:     at.UTC(),
	}
	m.CropIDHash = hashing.Keccak256(hashing.Join(
		m.FarmerDID,
		req.CropType,
		m.RegisteredAt.Format(time.RFC3339Nano),
	))
	return m
}

func (m *FarmerRegistrationRecord) Stage() string { return "farmer_registration" }

func (m *FarmerRegistrationRecord) Seal(cid string) { m.IPFSCID = cid }

// Receipt returns the caller-visible registration result.
func (m *FarmerRegistrationRecord) Receipt() FarmerRegistrationReceipt {
	return FarmerRegistrationReceipt{
		FarmerDID:    m.FarmerDID,
		CropIDHash:   m.CropIDHash,
		IPFSCID:      m.IPFSCID,
		RegisteredAt: m.RegisteredAt,
	}
}

// FarmerRegistrationReceipt is the stage 1 response.
type FarmerRegistrationReceipt struct {
	FarmerDID    string         `json:"farmer_did"`
	CropIDHash   hashing.Digest `json:"crop_id_hash"`
	IPFSCID      string         `json:"ipfs_cid"`
	RegisteredAt time.Time      `json:"registered_at"`
}
