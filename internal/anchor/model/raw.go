package model

import "encoding/json"

// RawUploadRequest is the payload for the generic storage upload
// endpoint, for content not tied to a specific stage.
type RawUploadRequest struct {
	Data json.RawMessage `json:"data" binding:"required"`
	Pin  bool            `json:"pin"`
}

// RawUploadReceipt is the generic upload response.
type RawUploadReceipt struct {
	CID    string `json:"cid"`
	Size   int64  `json:"size"`
	Pinned bool   `json:"pinned"`
}

// RawFetchReceipt is the generic fetch response.
type RawFetchReceipt struct {
	CID  string          `json:"cid"`
	Data json.RawMessage `json:"data"`
}

// PinReceipt is the generic pin/unpin response.
type PinReceipt struct {
	CID    string `json:"cid"`
	Pinned bool   `json:"pinned"`
}
