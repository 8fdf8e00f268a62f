package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/agritrace/provchain/internal/anchor/model"
	"github.com/agritrace/provchain/internal/anchor/service"
	"github.com/agritrace/provchain/internal/commitreveal"
	"github.com/agritrace/provchain/internal/hashing"
	"github.com/agritrace/provchain/internal/storage"
	"go.uber.org/zap"
)

// faultGateway wraps a MemoryGateway and injects failures at chosen
// points of the persist pipeline.
type faultGateway struct {
	*storage.MemoryGateway
	failUpload bool
	failPin    bool
}

func (g *faultGateway) Upload(ctx context.Context, data []byte) (storage.AddResult, error) {
	if g.failUpload {
		return storage.AddResult{}, &storage.UnavailableError{Op: "upload", Err: errors.New("connection refused")}
	}
	return g.MemoryGateway.Upload(ctx, data)
}

func (g *faultGateway) Pin(ctx context.Context, cid string) error {
	if g.failPin {
		return &storage.PinError{CID: cid, Err: errors.New("pin service down")}
	}
	return g.MemoryGateway.Pin(ctx, cid)
}

func newService() (*service.Service, *storage.MemoryGateway) {
	store := storage.NewMemoryGateway()
	return service.New(store, zap.NewNop()), store
}

func validFarmer() model.FarmerRegistrationRequest {
	return model.FarmerRegistrationRequest{
		FarmerName: "Asha Patil",
		CropType:   "rice",
		Location:   "Nashik",
	}
}

func validWarehouse() model.WarehouseUpdateRequest {
	temp, hum := 18.5, 60.0
	return model.WarehouseUpdateRequest{
		WarehouseID:        "WH-1",
		BatchID:            "BATCH-7",
		TemperatureCelsius: &temp,
		HumidityPercentage: &hum,
	}
}

func TestRegisterFarmer_happyPath(t *testing.T) {
	svc, store := newService()

	receipt, err := svc.RegisterFarmer(context.Background(), validFarmer())
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(receipt.FarmerDID, "did:farmer:") {
		t.Errorf("DID = %q, want did:farmer: prefix", receipt.FarmerDID)
	}
	if !strings.HasPrefix(string(receipt.CropIDHash), "0x") || len(receipt.CropIDHash) != 66 {
		t.Errorf("crop ID hash = %q, want 0x-prefixed 32-byte hex", receipt.CropIDHash)
	}
	if receipt.IPFSCID == "" {
		t.Fatal("receipt has no content address")
	}

	pinned, err := store.IsPinned(context.Background(), receipt.IPFSCID)
	if err != nil {
		t.Fatal(err)
	}
	if !pinned {
		t.Error("anchored record is not pinned")
	}

	// The stored envelope must carry the DID and digest the receipt
	// reports, so an auditor can cross-check them from storage alone.
	data, err := store.Fetch(context.Background(), receipt.IPFSCID)
	if err != nil {
		t.Fatal(err)
	}
	var envelope model.FarmerRegistrationRecord
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.FarmerDID != receipt.FarmerDID {
		t.Errorf("stored DID = %q, receipt DID = %q", envelope.FarmerDID, receipt.FarmerDID)
	}
	if envelope.CropIDHash != receipt.CropIDHash {
		t.Errorf("stored crop ID hash = %s, receipt = %s", envelope.CropIDHash, receipt.CropIDHash)
	}
}

func TestRegisterFarmer_validationRejectsWithoutPersisting(t *testing.T) {
	svc, store := newService()

	_, err := svc.RegisterFarmer(context.Background(), model.FarmerRegistrationRequest{CropType: "rice"})
	var valErr *model.ErrValidation
	if !errors.As(err, &valErr) {
		t.Fatalf("err = %v, want *model.ErrValidation", err)
	}
	if store.Len() != 0 {
		t.Errorf("%d objects persisted for a rejected request, want 0", store.Len())
	}
}

func TestUpdateWarehouse_stateHashBindsContentAddress(t *testing.T) {
	svc, _ := newService()

	receipt, err := svc.UpdateWarehouse(context.Background(), validWarehouse())
	if err != nil {
		t.Fatal(err)
	}
	if receipt.IPFSCID == "" {
		t.Fatal("receipt has no content address")
	}

	// A verifier holding only the receipt can recompute the state hash.
	want := hashing.Keccak256(hashing.Join("WH-1", "BATCH-7", "18.5", "60", receipt.IPFSCID))
	if receipt.StateHash != want {
		t.Errorf("state hash = %s, want %s", receipt.StateHash, want)
	}
}

func TestUpdateWarehouse_uploadFailureYieldsNoReceipt(t *testing.T) {
	svc := service.New(&faultGateway{MemoryGateway: storage.NewMemoryGateway(), failUpload: true}, zap.NewNop())

	receipt, err := svc.UpdateWarehouse(context.Background(), validWarehouse())
	var unavailable *storage.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want *storage.UnavailableError", err)
	}
	if receipt.StateHash != "" || receipt.IPFSCID != "" {
		t.Errorf("partial receipt on upload failure: %+v", receipt)
	}
}

func TestAnchor_pinFailureSurfacesCID(t *testing.T) {
	store := &faultGateway{MemoryGateway: storage.NewMemoryGateway(), failPin: true}
	svc := service.New(store, zap.NewNop())

	receipt, err := svc.RecordPurchase(context.Background(), model.FPOPurchaseRequest{
		FarmerDID:  "did:farmer:x",
		FPOName:    "Sahyadri FPO",
		BatchID:    "BATCH-7",
		QuantityKg: 250.5,
	})
	var pinErr *storage.PinError
	if !errors.As(err, &pinErr) {
		t.Fatalf("err = %v, want *storage.PinError", err)
	}
	if pinErr.CID == "" {
		t.Error("pin error carries no CID to retry against")
	}
	if receipt.BatchHash != "" {
		t.Errorf("partial receipt on pin failure: %+v", receipt)
	}

	// The content did persist; retrying just the pin must succeed.
	store.failPin = false
	pinReceipt, err := svc.PinCID(context.Background(), pinErr.CID)
	if err != nil {
		t.Fatal(err)
	}
	if !pinReceipt.Pinned {
		t.Error("retried pin did not report pinned")
	}
}

func TestRecordMilestone_happyPath(t *testing.T) {
	svc, _ := newService()

	receipt, err := svc.RecordMilestone(context.Background(), model.LogisticsMilestoneRequest{
		ShipmentID:      "SHIP-9",
		CurrentLocation: "Pune",
		GPSCoordinates:  model.GPSCoordinates{Latitude: 18.52, Longitude: 73.85},
		MilestoneType:   model.MilestoneInTransit,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := hashing.Keccak256(hashing.Join("SHIP-9", "Pune", "18.52", "73.85"))
	if receipt.LocationHash != want {
		t.Errorf("location hash = %s, want %s", receipt.LocationHash, want)
	}
}

func TestProcessBatch_oneHashPerOutput(t *testing.T) {
	svc, _ := newService()

	receipt, err := svc.ProcessBatch(context.Background(), model.ProcessBatchRequest{
		InputBatchID:     "BATCH-7",
		ProcessorName:    "AgroMill",
		ProcessingType:   model.ProcessingMilling,
		InputQuantityKg:  1000,
		OutputQuantityKg: 450,
		YieldPercentage:  90,
		WastePercentage:  10,
		OutputBatchIDs:   []string{"OUT-1", "OUT-2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(receipt.OutputBatchHashes) != 2 {
		t.Fatalf("got %d output hashes, want 2", len(receipt.OutputBatchHashes))
	}
	if receipt.OutputBatchHashes[0] == receipt.OutputBatchHashes[1] {
		t.Error("distinct output batches share a hash")
	}
}

func TestCreateSKU_merkleRoot(t *testing.T) {
	svc, _ := newService()

	withProof, err := svc.CreateSKU(context.Background(), model.CreateSKURequest{
		SKUID:         "SKU1",
		ParentBatchID: "BATCH-7",
		ProductName:   "Basmati 1kg",
		MerkleProof:   []string{"leaf1", "leaf2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	wantRoot := hashing.SHA256([]byte("leaf1leaf2"))
	if withProof.MerkleRoot != wantRoot {
		t.Errorf("merkle root = %s, want %s", withProof.MerkleRoot, wantRoot)
	}

	withoutProof, err := svc.CreateSKU(context.Background(), model.CreateSKURequest{
		SKUID:         "SKU1",
		ParentBatchID: "BATCH-7",
		ProductName:   "Basmati 1kg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if withoutProof.MerkleRoot != "SKU1" {
		t.Errorf("singleton merkle root = %s, want SKU1 unchanged", withoutProof.MerkleRoot)
	}
}

func TestScoreBatch_commitVerifiableFromStoredEnvelope(t *testing.T) {
	svc, store := newService()

	receipt, err := svc.ScoreBatch(context.Background(), model.AIScoreRequest{
		BatchID:      "BATCH-7",
		ModelName:    "quality-v2",
		QualityScore: 92.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Nonce == "" {
		t.Fatal("receipt has no nonce, commit cannot be proven later")
	}

	// A third party with only the stored envelope must be able to
	// recompute the commit from the reveal hash and nonce.
	data, err := store.Fetch(context.Background(), receipt.IPFSCID)
	if err != nil {
		t.Fatal(err)
	}
	var envelope model.AIScoreRecord
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatal(err)
	}
	recomputed := hashing.SHA256([]byte(string(envelope.RevealHash) + envelope.Nonce))
	if recomputed != envelope.CommitHash {
		t.Errorf("recomputed commit = %s, stored = %s", recomputed, envelope.CommitHash)
	}

	// And the reveal hash must match the score payload itself.
	payload, err := json.Marshal(&envelope.ScoreData)
	if err != nil {
		t.Fatal(err)
	}
	if !commitreveal.Verify(commitreveal.Pair{
		Nonce:      envelope.Nonce,
		RevealHash: envelope.RevealHash,
		CommitHash: envelope.CommitHash,
	}, payload) {
		t.Error("stored commit-reveal triple does not verify against the stored payload")
	}
}

func TestScoreBatch_rejectsOutOfRangeScore(t *testing.T) {
	svc, _ := newService()

	_, err := svc.ScoreBatch(context.Background(), model.AIScoreRequest{
		BatchID:      "BATCH-7",
		ModelName:    "quality-v2",
		QualityScore: 120,
	})
	var valErr *model.ErrValidation
	if !errors.As(err, &valErr) {
		t.Fatalf("err = %v, want *model.ErrValidation", err)
	}
}

func TestRaw_uploadFetchPinLifecycle(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	up, err := svc.UploadRaw(ctx, json.RawMessage(`{"note":"loose document"}`), true)
	if err != nil {
		t.Fatal(err)
	}
	if !up.Pinned {
		t.Error("upload with pin=true reported unpinned")
	}

	fetched, err := svc.FetchRaw(ctx, up.CID)
	if err != nil {
		t.Fatal(err)
	}
	if string(fetched.Data) != `{"note":"loose document"}` {
		t.Errorf("fetched %s, want original content", fetched.Data)
	}

	if _, err := svc.UnpinCID(ctx, up.CID); err != nil {
		t.Fatal(err)
	}
	pinned, err := store.IsPinned(ctx, up.CID)
	if err != nil {
		t.Fatal(err)
	}
	if pinned {
		t.Error("content still pinned after unpin")
	}
}

func TestFetchRaw_unknownCID(t *testing.T) {
	svc, _ := newService()

	_, err := svc.FetchRaw(context.Background(), "memUNKNOWN")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want wrap of storage.ErrNotFound", err)
	}
}
