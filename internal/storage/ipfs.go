package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// IPFSGateway talks to a Kubo-compatible IPFS node over its HTTP RPC
// API (/api/v0). One long-lived instance is shared across all pipeline
// invocations; the embedded *http.Client handles concurrency.
type IPFSGateway struct {
	baseURL    string
	httpClient *http.Client

	// Pinning-service style project credentials, sent as basic auth
	// when both are set. Empty for a local unauthenticated node.
	projectID     string
	projectSecret string

	logger *zap.Logger
}

// IPFSOption is a functional option for configuring an IPFSGateway.
type IPFSOption func(*IPFSGateway)

// WithAuth sets project credentials attached to every API request.
func WithAuth(projectID, projectSecret string) IPFSOption {
	return func(g *IPFSGateway) {
		g.projectID = projectID
		g.projectSecret = projectSecret
	}
}

// WithTimeout sets the per-request timeout. The zero default is 30s.
func WithTimeout(d time.Duration) IPFSOption {
	return func(g *IPFSGateway) {
		g.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(hc *http.Client) IPFSOption {
	return func(g *IPFSGateway) {
		g.httpClient = hc
	}
}

// NewIPFSGateway creates a gateway for the node at apiURL
// (e.g. "http://127.0.0.1:5001").
func NewIPFSGateway(apiURL string, logger *zap.Logger, opts ...IPFSOption) *IPFSGateway {
	g := &IPFSGateway{
		baseURL:    strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// addResponse is the JSON body returned by /api/v0/add.
type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// apiError is the JSON error body returned by the Kubo API.
type apiError struct {
	Message string `json:"Message"`
	Code    int    `json:"Code"`
}

// Upload stores data via /api/v0/add. The content is added unpinned;
// durability pinning is a separate, explicit Pin call.
func (g *IPFSGateway) Upload(ctx context.Context, data []byte) (AddResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "record.json")
	if err != nil {
		return AddResult{}, &UnavailableError{Op: "add", Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return AddResult{}, &UnavailableError{Op: "add", Err: err}
	}
	if err := mw.Close(); err != nil {
		return AddResult{}, &UnavailableError{Op: "add", Err: err}
	}

	req, err := g.newRequest(ctx, "/api/v0/add?pin=false", &body)
	if err != nil {
		return AddResult{}, &UnavailableError{Op: "add", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return AddResult{}, &UnavailableError{Op: "add", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return AddResult{}, &UnavailableError{Op: "add", Err: g.decodeAPIError(resp)}
	}

	var ar addResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return AddResult{}, &UnavailableError{Op: "add", Err: fmt.Errorf("decode add response: %w", err)}
	}

	size, _ := strconv.ParseInt(ar.Size, 10, 64)
	g.logger.Debug("ipfs add", zap.String("cid", ar.Hash), zap.Int64("size", size))
	return AddResult{CID: ar.Hash, Size: size}, nil
}

// Fetch returns the bytes stored at cid via /api/v0/cat.
func (g *IPFSGateway) Fetch(ctx context.Context, cid string) ([]byte, error) {
	req, err := g.newRequest(ctx, "/api/v0/cat?arg="+url.QueryEscape(cid), nil)
	if err != nil {
		return nil, &UnavailableError{Op: "cat", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Op: "cat", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &UnavailableError{Op: "cat", Err: err}
		}
		return data, nil
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("cat %s: %w", cid, ErrNotFound)
	default:
		return nil, &UnavailableError{Op: "cat", Err: g.decodeAPIError(resp)}
	}
}

// Pin requests durability pinning of cid via /api/v0/pin/add.
func (g *IPFSGateway) Pin(ctx context.Context, cid string) error {
	if err := g.pinOp(ctx, "/api/v0/pin/add", cid); err != nil {
		return &PinError{CID: cid, Err: err}
	}
	return nil
}

// Unpin removes the pin from cid via /api/v0/pin/rm.
func (g *IPFSGateway) Unpin(ctx context.Context, cid string) error {
	if err := g.pinOp(ctx, "/api/v0/pin/rm", cid); err != nil {
		// Unpinning already-unpinned content is not an error.
		if strings.Contains(err.Error(), "not pinned") {
			return nil
		}
		return &PinError{CID: cid, Err: err}
	}
	return nil
}

// IsPinned reports the pin status of cid via /api/v0/pin/ls.
func (g *IPFSGateway) IsPinned(ctx context.Context, cid string) (bool, error) {
	req, err := g.newRequest(ctx, "/api/v0/pin/ls?arg="+url.QueryEscape(cid), nil)
	if err != nil {
		return false, &UnavailableError{Op: "pin/ls", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return false, &UnavailableError{Op: "pin/ls", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return true, nil
	}

	apiErr := g.decodeAPIError(resp)
	// Kubo reports an unpinned CID as an error rather than an empty list.
	if strings.Contains(apiErr.Error(), "not pinned") {
		return false, nil
	}
	return false, &UnavailableError{Op: "pin/ls", Err: apiErr}
}

func (g *IPFSGateway) pinOp(ctx context.Context, path, cid string) error {
	req, err := g.newRequest(ctx, path+"?arg="+url.QueryEscape(cid), nil)
	if err != nil {
		return err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return g.decodeAPIError(resp)
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	return nil
}

// newRequest builds a POST request for the given API path. The Kubo
// RPC API only accepts POST.
func (g *IPFSGateway) newRequest(ctx context.Context, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if g.projectID != "" && g.projectSecret != "" {
		req.SetBasicAuth(g.projectID, g.projectSecret)
	}
	return req, nil
}

// decodeAPIError extracts a Kubo error message from a non-200 response.
func (g *IPFSGateway) decodeAPIError(resp *http.Response) error {
	var ae apiError
	if err := json.NewDecoder(resp.Body).Decode(&ae); err == nil && ae.Message != "" {
		return fmt.Errorf("ipfs api %d: %s", resp.StatusCode, ae.Message)
	}
	return fmt.Errorf("ipfs api returned status %d", resp.StatusCode)
}
