// Package service implements the anchoring pipeline: every stage call
// validates its payload, builds the canonical record, persists it to
// content-addressed storage, finalizes address-dependent digests, pins
// the content, and only then returns a receipt. No receipt — and no
// digest that depends on a content address — is ever produced on an
// error path.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agritrace/provchain/internal/anchor/model"
	"github.com/agritrace/provchain/internal/journal"
	"github.com/agritrace/provchain/internal/storage"
	"go.uber.org/zap"
)

// Service orchestrates the per-stage anchoring pipeline. Each
// invocation is an independent, stateless unit of work; the only
// shared resource is the storage gateway, which must itself be safe
// for concurrent use.
type Service struct {
	store   storage.Gateway
	journal journal.Journal // optional audit chain, may be nil
	logger  *zap.Logger
}

// New creates a new anchoring Service.
func New(store storage.Gateway, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// SetJournal attaches an audit journal. Every successfully anchored
// record is appended to it; a journal failure never fails the anchor,
// the receipt is already backed by pinned content at that point.
func (s *Service) SetJournal(j journal.Journal) {
	s.journal = j
}

// anchor runs the storage half of the pipeline for a built record:
// canonical JSON serialization → upload → seal (content address plus
// any post-persist digests) → pin. On any failure the record is not
// sealed into a receipt; upload failure and pin failure surface as
// distinct error classes so callers can retry appropriately.
func (s *Service) anchor(ctx context.Context, rec model.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &model.ErrSerialization{Stage: rec.Stage(), Err: err}
	}

	res, err := s.store.Upload(ctx, data)
	if err != nil {
		return fmt.Errorf("persist %s record: %w", rec.Stage(), err)
	}

	rec.Seal(res.CID)

	if err := s.store.Pin(ctx, res.CID); err != nil {
		// Content exists but durability is not guaranteed; the CID is
		// inside the PinError so the caller can retry the pin alone.
		return fmt.Errorf("pin %s record: %w", rec.Stage(), err)
	}

	if s.journal != nil {
		if _, err := s.journal.Append(ctx, rec.Stage(), res.CID, rec); err != nil {
			s.logger.Warn("journal append failed",
				zap.String("stage", rec.Stage()),
				zap.String("cid", res.CID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("record anchored",
		zap.String("stage", rec.Stage()),
		zap.String("cid", res.CID),
	)
	return nil
}

// RegisterFarmer anchors a stage 1 farmer registration.
func (s *Service) RegisterFarmer(ctx context.Context, req model.FarmerRegistrationRequest) (model.FarmerRegistrationReceipt, error) {
	if err := req.Validate(); err != nil {
		return model.FarmerRegistrationReceipt{}, err
	}

	rec := model.NewFarmerRegistrationRecord(req, model.NewDID("farmer"), time.Now())
	if err := s.anchor(ctx, rec); err != nil {
		return model.FarmerRegistrationReceipt{}, err
	}
	return rec.Receipt(), nil
}

// RecordPurchase anchors a stage 2 FPO purchase.
func (s *Service) RecordPurchase(ctx context.Context, req model.FPOPurchaseRequest) (model.FPOPurchaseReceipt, error) {
	if err := req.Validate(); err != nil {
		return model.FPOPurchaseReceipt{}, err
	}

	rec := model.NewFPOPurchaseRecord(req, time.Now())
	if err := s.anchor(ctx, rec); err != nil {
		return model.FPOPurchaseReceipt{}, err
	}
	return rec.Receipt(), nil
}

// UpdateWarehouse anchors a stage 3 warehouse state update. The state
// hash includes the content address, so it only exists after the
// record has been persisted.
func (s *Service) UpdateWarehouse(ctx context.Context, req model.WarehouseUpdateRequest) (model.WarehouseUpdateReceipt, error) {
	if err := req.Validate(); err != nil {
		return model.WarehouseUpdateReceipt{}, err
	}

	rec := model.NewWarehouseStateRecord(req, time.Now())
	if err := s.anchor(ctx, rec); err != nil {
		return model.WarehouseUpdateReceipt{}, err
	}
	return rec.Receipt(), nil
}

// RecordMilestone anchors a stage 4 logistics milestone.
func (s *Service) RecordMilestone(ctx context.Context, req model.LogisticsMilestoneRequest) (model.LogisticsMilestoneReceipt, error) {
	if err := req.Validate(); err != nil {
		return model.LogisticsMilestoneReceipt{}, err
	}

	rec := model.NewLogisticsMilestoneRecord(req, time.Now())
	if err := s.anchor(ctx, rec); err != nil {
		return model.LogisticsMilestoneReceipt{}, err
	}
	return rec.Receipt(), nil
}

// ProcessBatch anchors a stage 5 batch transformation.
func (s *Service) ProcessBatch(ctx context.Context, req model.ProcessBatchRequest) (model.ProcessBatchReceipt, error) {
	if err := req.Validate(); err != nil {
		return model.ProcessBatchReceipt{}, err
	}

	rec := model.NewProcessBatchRecord(req, time.Now())
	if err := s.anchor(ctx, rec); err != nil {
		return model.ProcessBatchReceipt{}, err
	}
	return rec.Receipt(), nil
}

// CreateSKU anchors a stage 6 packaging record.
func (s *Service) CreateSKU(ctx context.Context, req model.CreateSKURequest) (model.CreateSKUReceipt, error) {
	if err := req.Validate(); err != nil {
		return model.CreateSKUReceipt{}, err
	}

	rec := model.NewCreateSKURecord(req, time.Now())
	if err := s.anchor(ctx, rec); err != nil {
		return model.CreateSKUReceipt{}, err
	}
	return rec.Receipt(), nil
}

// ScoreBatch anchors a stage 7 AI score via commit-reveal.
func (s *Service) ScoreBatch(ctx context.Context, req model.AIScoreRequest) (model.AIScoreReceipt, error) {
	if err := req.Validate(); err != nil {
		return model.AIScoreReceipt{}, err
	}

	rec, err := model.NewAIScoreRecord(req, time.Now())
	if err != nil {
		return model.AIScoreReceipt{}, err
	}
	if err := s.anchor(ctx, rec); err != nil {
		return model.AIScoreReceipt{}, err
	}
	return rec.Receipt(), nil
}

// UploadRaw stores arbitrary JSON content not tied to a stage,
// optionally pinning it.
func (s *Service) UploadRaw(ctx context.Context, data json.RawMessage, pin bool) (model.RawUploadReceipt, error) {
	if len(data) == 0 {
		return model.RawUploadReceipt{}, &model.ErrValidation{Msg: "data is required"}
	}

	res, err := s.store.Upload(ctx, data)
	if err != nil {
		return model.RawUploadReceipt{}, fmt.Errorf("persist raw content: %w", err)
	}

	if pin {
		if err := s.store.Pin(ctx, res.CID); err != nil {
			return model.RawUploadReceipt{}, fmt.Errorf("pin raw content: %w", err)
		}
	}

	return model.RawUploadReceipt{CID: res.CID, Size: res.Size, Pinned: pin}, nil
}

// FetchRaw returns the JSON content stored at cid.
func (s *Service) FetchRaw(ctx context.Context, cid string) (model.RawFetchReceipt, error) {
	data, err := s.store.Fetch(ctx, cid)
	if err != nil {
		return model.RawFetchReceipt{}, fmt.Errorf("fetch %s: %w", cid, err)
	}
	return model.RawFetchReceipt{CID: cid, Data: data}, nil
}

// PinCID pins already-stored content. Upload is idempotent against
// re-pinning, so callers retrying a PinError land here.
func (s *Service) PinCID(ctx context.Context, cid string) (model.PinReceipt, error) {
	if err := s.store.Pin(ctx, cid); err != nil {
		return model.PinReceipt{}, err
	}
	return model.PinReceipt{CID: cid, Pinned: true}, nil
}

// UnpinCID removes the durability pin from cid.
func (s *Service) UnpinCID(ctx context.Context, cid string) (model.PinReceipt, error) {
	if err := s.store.Unpin(ctx, cid); err != nil {
		return model.PinReceipt{}, err
	}
	return model.PinReceipt{CID: cid, Pinned: false}, nil
}
