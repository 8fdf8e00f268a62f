package model

import (
	"encoding/json"
	"time"

	"github.com/agritrace/provchain/internal/commitreveal"
	"github.com/agritrace/provchain/internal/hashing"
)

// AIScoreRequest is the business payload for stage 7: anchoring an AI
// quality/sustainability assessment of a batch via commit-reveal, so
// the score is provably fixed before disclosure.
type AIScoreRequest struct {
	BatchID string `json:"batch_id" binding:"required"`

	QualityScore        float64 `json:"quality_score"`
	SustainabilityScore float64 `json:"sustainability_score"`
	TraceabilityScore   float64 `json:"traceability_score"`

	ModelName    string `json:"model_name" binding:"required"`
	ModelVersion string `json:"model_version"`

	// Model inputs and outputs, shape defined by the scoring model.
	Features    json.RawMessage `json:"features,omitempty"`
	Predictions json.RawMessage `json:"predictions,omitempty"`
	Confidence  float64         `json:"confidence"`

	ModelArtifactsURL string `json:"model_artifacts_url,omitempty"`
	TrainingDataHash  string `json:"training_data_hash,omitempty"`
}

// Validate checks required fields and score ranges.
func (r *AIScoreRequest) Validate() error {
	if r.BatchID == "" {
		return &ErrValidation{Msg: "batch_id is required"}
	}
	if r.ModelName == "" {
		return &ErrValidation{Msg: "model_name is required"}
	}
	for _, s := range []struct {
		name  string
		value float64
	}{
		{"quality_score", r.QualityScore},
		{"sustainability_score", r.SustainabilityScore},
		{"traceability_score", r.TraceabilityScore},
	} {
		if s.value < 0 || s.value > 100 {
			return &ErrValidation{Msg: s.name + " must be between 0 and 100"}
		}
	}
	return nil
}

// AIScoreRecord is the persisted scoring envelope. Alongside the plain
// identifier hash it stores the full commit-reveal triple, so any
// holder of (reveal_hash, nonce) can recompute and check the commit.
type AIScoreRecord struct {
	BatchHash  hashing.Digest `json:"batch_hash"`
	CommitHash hashing.Digest `json:"commit_hash"`
	RevealHash hashing.Digest `json:"reveal_hash"`
	Nonce      string         `json:"nonce"`
	ScoreData  AIScoreRequest `json:"score_data"`
	ScoredAt   time.Time      `json:"scored_at"`
	IPFSCID    string         `json:"ipfs_cid"`
}

// NewAIScoreRecord builds the scoring envelope: the identifier hash is
// keccak256("{batch_id}-{model_name}") and the commit-reveal pair is
// derived over the canonical JSON of the request. Fails only when the
// payload cannot be serialized or the entropy source is unavailable.
func NewAIScoreRecord(req AIScoreRequest, at time.Time) (*AIScoreRecord, error) {
	payload, err := json.Marshal(&req)
	if err != nil {
		return nil, &ErrSerialization{Stage: "ai_score", Err: err}
	}

	pair, err := commitreveal.Commit(payload)
	if err != nil {
		return nil, err
	}

	m := &AIScoreRecord{
		ScoreData:  req,
		ScoredAt:   at.UTC(),
		CommitHash: pair.CommitHash,
		RevealHash: pair.RevealHash,
		Nonce:      pair.Nonce,
	}
	m.BatchHash = hashing.Keccak256(hashing.Join(req.BatchID, req.ModelName))
	return m, nil
}

func (m *AIScoreRecord) Stage() string { return "ai_score" }

func (m *AIScoreRecord) Seal(cid string) { m.IPFSCID = cid }

// Pair returns the record's commit-reveal triple for verification.
func (m *AIScoreRecord) Pair() commitreveal.Pair {
	return commitreveal.Pair{
		Nonce:      m.Nonce,
		RevealHash: m.RevealHash,
		CommitHash: m.CommitHash,
	}
}

// Receipt returns the caller-visible scoring result. The nonce is
// included so the caller can later prove the committed score.
func (m *AIScoreRecord) Receipt() AIScoreReceipt {
	return AIScoreReceipt{
		BatchHash:  m.BatchHash,
		CommitHash: m.CommitHash,
		RevealHash: m.RevealHash,
		Nonce:      m.Nonce,
		IPFSCID:    m.IPFSCID,
		ScoredAt:   m.ScoredAt,
	}
}

// AIScoreReceipt is the stage 7 response.
type AIScoreReceipt struct {
	BatchHash  hashing.Digest `json:"batch_hash"`
	CommitHash hashing.Digest `json:"commit_hash"`
	RevealHash hashing.Digest `json:"reveal_hash"`
	Nonce      string         `json:"nonce"`
	IPFSCID    string         `json:"ipfs_cid"`
	ScoredAt   time.Time      `json:"scored_at"`
}
