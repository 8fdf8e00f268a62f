// Package handler exposes the anchoring pipeline over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/agritrace/provchain/internal/anchor/model"
	"github.com/agritrace/provchain/internal/anchor/service"
	"github.com/agritrace/provchain/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnchorHandler handles HTTP requests for the seven supply-chain stages
// and the generic storage endpoints.
type AnchorHandler struct {
	svc    *service.Service
	logger *zap.Logger
}

// NewAnchorHandler creates a new AnchorHandler.
func NewAnchorHandler(svc *service.Service, logger *zap.Logger) *AnchorHandler {
	return &AnchorHandler{svc: svc, logger: logger}
}

// Register registers all anchoring routes on the given router group.
func (h *AnchorHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/farmer/register", h.RegisterFarmer)
	rg.POST("/fpo/purchase", h.RecordPurchase)
	rg.POST("/warehouse/update", h.UpdateWarehouse)
	rg.POST("/logistics/milestone", h.RecordMilestone)
	rg.POST("/processing/batch", h.ProcessBatch)
	rg.POST("/packaging/sku", h.CreateSKU)
	rg.POST("/ai/score", h.ScoreBatch)

	st := rg.Group("/storage")
	{
		st.POST("/upload", h.UploadRaw)
		st.GET("/:cid", h.FetchRaw)
		st.POST("/pin/:cid", h.Pin)
		st.DELETE("/pin/:cid", h.Unpin)
	}
}

// writeError maps a pipeline error to an HTTP response. The error_kind
// field lets clients branch without parsing messages: validation and
// serialization failures are final, storage_unavailable means retry the
// whole call, pin_failed means the content persisted and only the pin
// needs retrying (against the returned cid).
func (h *AnchorHandler) writeError(c *gin.Context, op string, err error) {
	var valErr *model.ErrValidation
	var serErr *model.ErrSerialization
	var pinErr *storage.PinError
	var unavailErr *storage.UnavailableError

	switch {
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Msg, "error_kind": "validation"})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found", "error_kind": "not_found"})
	case errors.As(err, &pinErr):
		h.logger.Error(op, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "content stored but pin failed; retry the pin",
			"error_kind": "pin_failed",
			"cid":        pinErr.CID,
		})
	case errors.As(err, &unavailErr):
		h.logger.Error(op, zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage backend unavailable", "error_kind": "storage_unavailable"})
	case errors.As(err, &serErr):
		h.logger.Error(op, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to serialize record", "error_kind": "serialization"})
	default:
		h.logger.Error(op, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed", "error_kind": "internal"})
	}
}

// RegisterFarmer handles POST /farmer/register — stage 1.
func (h *AnchorHandler) RegisterFarmer(c *gin.Context) {
	var req model.FarmerRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_kind": "validation"})
		return
	}

	receipt, err := h.svc.RegisterFarmer(c.Request.Context(), req)
	if err != nil {
		RecordAnchor("farmer_registration", false)
		h.writeError(c, "register farmer", err)
		return
	}

	RecordAnchor("farmer_registration", true)
	c.JSON(http.StatusCreated, receipt)
}

// RecordPurchase handles POST /fpo/purchase — stage 2.
func (h *AnchorHandler) RecordPurchase(c *gin.Context) {
	var req model.FPOPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_kind": "validation"})
		return
	}

	receipt, err := h.svc.RecordPurchase(c.Request.Context(), req)
	if err != nil {
		RecordAnchor("fpo_purchase", false)
		h.writeError(c, "record purchase", err)
		return
	}

	RecordAnchor("fpo_purchase", true)
	c.JSON(http.StatusCreated, receipt)
}

// UpdateWarehouse handles POST /warehouse/update — stage 3.
func (h *AnchorHandler) UpdateWarehouse(c *gin.Context) {
	var req model.WarehouseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_kind": "validation"})
		return
	}

	receipt, err := h.svc.UpdateWarehouse(c.Request.Context(), req)
	if err != nil {
		RecordAnchor("warehouse_state", false)
		h.writeError(c, "update warehouse", err)
		return
	}

	RecordAnchor("warehouse_state", true)
	c.JSON(http.StatusCreated, receipt)
}

// RecordMilestone handles POST /logistics/milestone — stage 4.
func (h *AnchorHandler) RecordMilestone(c *gin.Context) {
	var req model.LogisticsMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_kind": "validation"})
		return
	}

	receipt, err := h.svc.RecordMilestone(c.Request.Context(), req)
	if err != nil {
		RecordAnchor("logistics_milestone", false)
		h.writeError(c, "record milestone", err)
		return
	}

	RecordAnchor("logistics_milestone", true)
	c.JSON(http.StatusCreated, receipt)
}

// ProcessBatch handles POST /processing/batch — stage 5.
func (h *AnchorHandler) ProcessBatch(c *gin.Context) {
	var req model.ProcessBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_kind": "validation"})
		return
	}

	receipt, err := h.svc.ProcessBatch(c.Request.Context(), req)
	if err != nil {
		RecordAnchor("process_batch", false)
		h.writeError(c, "process batch", err)
		return
	}

	RecordAnchor("process_batch", true)
	c.JSON(http.StatusCreated, receipt)
}

// CreateSKU handles POST /packaging/sku — stage 6.
func (h *AnchorHandler) CreateSKU(c *gin.Context) {
	var req model.CreateSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_kind": "validation"})
		return
	}

	receipt, err := h.svc.CreateSKU(c.Request.Context(), req)
	if err != nil {
		RecordAnchor("create_sku", false)
		h.writeError(c, "create SKU", err)
		return
	}

	RecordAnchor("create_sku", true)
	c.JSON(http.StatusCreated, receipt)
}

// ScoreBatch handles POST /ai/score — stage 7.
func (h *AnchorHandler) ScoreBatch(c *gin.Context) {
	var req model.AIScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_kind": "validation"})
		return
	}

	receipt, err := h.svc.ScoreBatch(c.Request.Context(), req)
	if err != nil {
		RecordAnchor("ai_score", false)
		h.writeError(c, "score batch", err)
		return
	}

	RecordAnchor("ai_score", true)
	c.JSON(http.StatusCreated, receipt)
}

// UploadRaw handles POST /storage/upload — stores arbitrary JSON
// content not tied to a stage.
func (h *AnchorHandler) UploadRaw(c *gin.Context) {
	var req model.RawUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_kind": "validation"})
		return
	}

	receipt, err := h.svc.UploadRaw(c.Request.Context(), req.Data, req.Pin)
	if err != nil {
		h.writeError(c, "upload content", err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// FetchRaw handles GET /storage/:cid — returns the stored content.
func (h *AnchorHandler) FetchRaw(c *gin.Context) {
	receipt, err := h.svc.FetchRaw(c.Request.Context(), c.Param("cid"))
	if err != nil {
		h.writeError(c, "fetch content", err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// Pin handles POST /storage/pin/:cid.
func (h *AnchorHandler) Pin(c *gin.Context) {
	receipt, err := h.svc.PinCID(c.Request.Context(), c.Param("cid"))
	if err != nil {
		h.writeError(c, "pin content", err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// Unpin handles DELETE /storage/pin/:cid.
func (h *AnchorHandler) Unpin(c *gin.Context) {
	receipt, err := h.svc.UnpinCID(c.Request.Context(), c.Param("cid"))
	if err != nil {
		h.writeError(c, "unpin content", err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}
