// Package client provides the Go SDK for the provenance anchoring
// service: the seven supply-chain stage endpoints plus the generic
// content-addressed storage endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a structured error response from the anchoring service.
// Kind mirrors the server's error_kind field: "validation" and
// "serialization" are final; "storage_unavailable" means retry the
// whole call; "pin_failed" means the content persisted and only the
// pin needs retrying against CID.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Kind    string `json:"error_kind"`
	CID     string `json:"cid,omitempty"`
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("anchord %d (%s): %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("anchord %d: %s", e.Status, e.Message)
}

// GPSCoordinates is a WGS84 point.
type GPSCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FarmerRegistration is the stage 1 request payload.
type FarmerRegistration struct {
	FarmerName       string          `json:"farmer_name"`
	CropType         string          `json:"crop_type"`
	LandAreaHectares float64         `json:"land_area_hectares,omitempty"`
	Location         string          `json:"location"`
	GPSCoordinates   *GPSCoordinates `json:"gps_coordinates,omitempty"`

	KYCDocumentURL      string   `json:"kyc_document_url,omitempty"`
	LandOwnershipDocs   []string `json:"land_ownership_docs,omitempty"`
	SatelliteImageryURL string   `json:"satellite_imagery_url,omitempty"`
	SoilTestReport      string   `json:"soil_test_report,omitempty"`

	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
}

// FarmerReceipt is the stage 1 response.
type FarmerReceipt struct {
	FarmerDID    string    `json:"farmer_did"`
	CropIDHash   string    `json:"crop_id_hash"`
	IPFSCID      string    `json:"ipfs_cid"`
	RegisteredAt time.Time `json:"registered_at"`
}

// FPOPurchase is the stage 2 request payload.
type FPOPurchase struct {
	FarmerDID    string  `json:"farmer_did"`
	FPOName      string  `json:"fpo_name"`
	BatchID      string  `json:"batch_id"`
	QuantityKg   float64 `json:"quantity_kg"`
	PricePerKg   float64 `json:"price_per_kg,omitempty"`
	QualityGrade string  `json:"quality_grade,omitempty"`

	QualityReportURL   string   `json:"quality_report_url,omitempty"`
	WeightSlipURL      string   `json:"weight_slip_url,omitempty"`
	Photos             []string `json:"photos,omitempty"`
	MoistureContent    *float64 `json:"moisture_content,omitempty"`
	ImpurityPercentage *float64 `json:"impurity_percentage,omitempty"`
	PaymentReference   string   `json:"payment_reference,omitempty"`
}

// PurchaseReceipt is the stage 2 response.
type PurchaseReceipt struct {
	BatchHash   string    `json:"batch_hash"`
	IPFSCID     string    `json:"ipfs_cid"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// PestInspection captures a warehouse pest-control check.
type PestInspection struct {
	InspectedAt      time.Time `json:"inspected_at"`
	PestFound        bool      `json:"pest_found"`
	PestType         string    `json:"pest_type,omitempty"`
	TreatmentApplied string    `json:"treatment_applied,omitempty"`
}

// WarehouseUpdate is the stage 3 request payload.
type WarehouseUpdate struct {
	WarehouseID     string `json:"warehouse_id"`
	BatchID         string `json:"batch_id"`
	StorageLocation string `json:"storage_location,omitempty"`

	TemperatureCelsius *float64 `json:"temperature_celsius,omitempty"`
	HumidityPercentage *float64 `json:"humidity_percentage,omitempty"`
	CO2LevelPPM        *float64 `json:"co2_level_ppm,omitempty"`

	IoTLogsURL        string   `json:"iot_logs_url,omitempty"`
	InspectionReports []string `json:"inspection_reports,omitempty"`

	PestInspection     *PestInspection `json:"pest_inspection,omitempty"`
	QualityDegradation *float64        `json:"quality_degradation,omitempty"`
}

// WarehouseReceipt is the stage 3 response.
type WarehouseReceipt struct {
	WarehouseID string    `json:"warehouse_id"`
	StateHash   string    `json:"state_hash"`
	IPFSCID     string    `json:"ipfs_cid"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ShockEvent is a transport shock recorded by an impact sensor.
type ShockEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	GForce    float64         `json:"g_force"`
	Location  *GPSCoordinates `json:"location,omitempty"`
}

// LogisticsMilestone is the stage 4 request payload. MilestoneType must
// be one of: picked_up, in_transit, at_checkpoint, delivered, delayed,
// incident.
type LogisticsMilestone struct {
	ShipmentID      string         `json:"shipment_id"`
	CurrentLocation string         `json:"current_location"`
	GPSCoordinates  GPSCoordinates `json:"gps_coordinates"`
	MilestoneType   string         `json:"milestone_type"`

	GPSHistoryURL string `json:"gps_history_url,omitempty"`

	CarrierName string `json:"carrier_name,omitempty"`
	VehicleID   string `json:"vehicle_id,omitempty"`
	DriverName  string `json:"driver_name,omitempty"`

	TemperatureLog string       `json:"temperature_log,omitempty"`
	ShockEvents    []ShockEvent `json:"shock_events,omitempty"`

	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	IsDelivered      bool       `json:"is_delivered,omitempty"`
}

// MilestoneReceipt is the stage 4 response.
type MilestoneReceipt struct {
	ShipmentID   string    `json:"shipment_id"`
	LocationHash string    `json:"location_hash"`
	IPFSCID      string    `json:"ipfs_cid"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// ProcessingParameters captures the physical process settings.
type ProcessingParameters struct {
	TemperatureCelsius *float64 `json:"temperature_celsius,omitempty"`
	PressureBar        *float64 `json:"pressure_bar,omitempty"`
	DurationMinutes    uint32   `json:"duration_minutes,omitempty"`
	Method             string   `json:"method,omitempty"`
}

// ProcessBatch is the stage 5 request payload. ProcessingType must be
// one of: cleaning, drying, milling, extraction, refining, blending.
type ProcessBatch struct {
	InputBatchID   string `json:"input_batch_id"`
	ProcessorName  string `json:"processor_name"`
	ProcessingType string `json:"processing_type"`

	InputQuantityKg  float64 `json:"input_quantity_kg"`
	OutputQuantityKg float64 `json:"output_quantity_kg"`

	YieldPercentage float64 `json:"yield_percentage,omitempty"`
	WastePercentage float64 `json:"waste_percentage,omitempty"`

	LabResultsURL  []string `json:"lab_results_url,omitempty"`
	Certifications []string `json:"certifications,omitempty"`

	OutputBatchIDs []string `json:"output_batch_ids"`

	ProcessingParameters *ProcessingParameters `json:"processing_parameters,omitempty"`
}

// ProcessReceipt is the stage 5 response.
type ProcessReceipt struct {
	InputBatchHash    string    `json:"input_batch_hash"`
	TransformHash     string    `json:"transform_hash"`
	OutputBatchHashes []string  `json:"output_batch_hashes"`
	IPFSCID           string    `json:"ipfs_cid"`
	ProcessedAt       time.Time `json:"processed_at"`
}

// CreateSKU is the stage 6 request payload.
type CreateSKU struct {
	SKUID         string `json:"sku_id"`
	ParentBatchID string `json:"parent_batch_id"`
	ProductName   string `json:"product_name"`

	Brand           string  `json:"brand,omitempty"`
	UnitWeightGrams float64 `json:"unit_weight_grams,omitempty"`
	UnitsPackaged   uint32  `json:"units_packaged,omitempty"`

	PackageType string `json:"package_type,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	QRCode      string `json:"qr_code,omitempty"`

	NutritionalInfoURL       string   `json:"nutritional_info_url,omitempty"`
	RegulatoryCertifications []string `json:"regulatory_certifications,omitempty"`

	LabelImages    []string   `json:"label_images,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	BestBeforeDate *time.Time `json:"best_before_date,omitempty"`

	MerkleProof []string `json:"merkle_proof,omitempty"`
}

// SKUReceipt is the stage 6 response.
type SKUReceipt struct {
	SKUID           string    `json:"sku_id"`
	ParentBatchHash string    `json:"parent_batch_hash"`
	MerkleRoot      string    `json:"merkle_root"`
	IPFSCID         string    `json:"ipfs_cid"`
	PackagedAt      time.Time `json:"packaged_at"`
}

// AIScore is the stage 7 request payload.
type AIScore struct {
	BatchID string `json:"batch_id"`

	QualityScore        float64 `json:"quality_score,omitempty"`
	SustainabilityScore float64 `json:"sustainability_score,omitempty"`
	TraceabilityScore   float64 `json:"traceability_score,omitempty"`

	ModelName    string `json:"model_name"`
	ModelVersion string `json:"model_version,omitempty"`

	Features    json.RawMessage `json:"features,omitempty"`
	Predictions json.RawMessage `json:"predictions,omitempty"`
	Confidence  float64         `json:"confidence,omitempty"`

	ModelArtifactsURL string `json:"model_artifacts_url,omitempty"`
	TrainingDataHash  string `json:"training_data_hash,omitempty"`
}

// ScoreReceipt is the stage 7 response. Keep Nonce: it is the only way
// to later prove the committed score.
type ScoreReceipt struct {
	BatchHash  string    `json:"batch_hash"`
	CommitHash string    `json:"commit_hash"`
	RevealHash string    `json:"reveal_hash"`
	Nonce      string    `json:"nonce"`
	IPFSCID    string    `json:"ipfs_cid"`
	ScoredAt   time.Time `json:"scored_at"`
}

// UploadReceipt is the generic storage upload response.
type UploadReceipt struct {
	CID    string `json:"cid"`
	Size   int64  `json:"size"`
	Pinned bool   `json:"pinned"`
}

// FetchReceipt is the generic storage fetch response.
type FetchReceipt struct {
	CID  string          `json:"cid"`
	Data json.RawMessage `json:"data"`
}

// PinReceipt is the generic pin/unpin response.
type PinReceipt struct {
	CID    string `json:"cid"`
	Pinned bool   `json:"pinned"`
}

// HealthStatus is the health endpoint response.
type HealthStatus struct {
	Healthy             bool      `json:"healthy"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastChecked         time.Time `json:"last_checked,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
}

// Client is the anchoring SDK entry point.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. The default is 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a new SDK Client connected to baseURL.
//
//	c := client.New("http://localhost:8080")
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RegisterFarmer anchors a stage 1 farmer registration.
func (c *Client) RegisterFarmer(ctx context.Context, req FarmerRegistration) (*FarmerReceipt, error) {
	var out FarmerReceipt
	if err := c.post(ctx, "/api/v1/farmer/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordPurchase anchors a stage 2 FPO purchase.
func (c *Client) RecordPurchase(ctx context.Context, req FPOPurchase) (*PurchaseReceipt, error) {
	var out PurchaseReceipt
	if err := c.post(ctx, "/api/v1/fpo/purchase", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateWarehouse anchors a stage 3 warehouse state update.
func (c *Client) UpdateWarehouse(ctx context.Context, req WarehouseUpdate) (*WarehouseReceipt, error) {
	var out WarehouseReceipt
	if err := c.post(ctx, "/api/v1/warehouse/update", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordMilestone anchors a stage 4 logistics milestone.
func (c *Client) RecordMilestone(ctx context.Context, req LogisticsMilestone) (*MilestoneReceipt, error) {
	var out MilestoneReceipt
	if err := c.post(ctx, "/api/v1/logistics/milestone", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProcessBatch anchors a stage 5 batch transformation.
func (c *Client) ProcessBatch(ctx context.Context, req ProcessBatch) (*ProcessReceipt, error) {
	var out ProcessReceipt
	if err := c.post(ctx, "/api/v1/processing/batch", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSKU anchors a stage 6 packaging record.
func (c *Client) CreateSKU(ctx context.Context, req CreateSKU) (*SKUReceipt, error) {
	var out SKUReceipt
	if err := c.post(ctx, "/api/v1/packaging/sku", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ScoreBatch anchors a stage 7 AI score via commit-reveal.
func (c *Client) ScoreBatch(ctx context.Context, req AIScore) (*ScoreReceipt, error) {
	var out ScoreReceipt
	if err := c.post(ctx, "/api/v1/ai/score", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload stores arbitrary JSON content, optionally pinning it.
func (c *Client) Upload(ctx context.Context, data json.RawMessage, pin bool) (*UploadReceipt, error) {
	body := struct {
		Data json.RawMessage `json:"data"`
		Pin  bool            `json:"pin"`
	}{Data: data, Pin: pin}

	var out UploadReceipt
	if err := c.post(ctx, "/api/v1/storage/upload", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fetch returns the JSON content stored at cid.
func (c *Client) Fetch(ctx context.Context, cid string) (*FetchReceipt, error) {
	var out FetchReceipt
	if err := c.call(ctx, http.MethodGet, "/api/v1/storage/"+cid, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pin pins already-stored content. Use this to retry after a
// pin_failed error.
func (c *Client) Pin(ctx context.Context, cid string) (*PinReceipt, error) {
	var out PinReceipt
	if err := c.call(ctx, http.MethodPost, "/api/v1/storage/pin/"+cid, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Unpin removes the durability pin from cid.
func (c *Client) Unpin(ctx context.Context, cid string) (*PinReceipt, error) {
	var out PinReceipt
	if err := c.call(ctx, http.MethodDelete, "/api/v1/storage/pin/"+cid, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the service's storage backend health status.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.call(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// post JSON-encodes reqBody and POSTs it to path.
func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	return c.call(ctx, http.MethodPost, path, reqBody, respBody)
}

// call executes one HTTP round trip. Non-2xx responses are decoded
// into *APIError.
func (c *Client) call(ctx context.Context, method, path string, reqBody, respBody any) error {
	var bodyReader io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call anchord: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: string(respBytes)}
		var decoded APIError
		if json.Unmarshal(respBytes, &decoded) == nil && decoded.Message != "" {
			decoded.Status = resp.StatusCode
			apiErr = &decoded
		}
		return apiErr
	}

	if respBody != nil && len(respBytes) > 0 {
		if err := json.Unmarshal(respBytes, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
