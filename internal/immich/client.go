// Package immich is the typed HTTP client for the remote media store. All
// calls authenticate with a static API-key header; response bodies are
// decoded at this boundary with explicit defaults for missing fields.
package immich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const apiKeyHeader = "x-api-key"

// Client provides access to the media-store HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a media-store client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("immich base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("immich api key required")
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	return req, nil
}

// SearchVideos returns all video assets known to the remote store.
func (c *Client) SearchVideos(ctx context.Context) ([]Asset, error) {
	payload, err := json.Marshal(map[string]string{"type": "VIDEO"})
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/search/metadata", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("search videos (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search videos returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return decoded.Assets.Items, nil
}

// GetAsset fetches the full record of a single asset, including exifInfo and
// stack membership.
func (c *Client) GetAsset(ctx context.Context, assetID string) (Asset, error) {
	if assetID == "" {
		return Asset{}, errors.New("asset id required")
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/assets/"+assetID, nil)
	if err != nil {
		return Asset{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("fetch asset %s: %w", assetID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Asset{}, fmt.Errorf("fetch asset %s returned %d", assetID, resp.StatusCode)
	}

	var asset Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return Asset{}, fmt.Errorf("decode asset %s: %w", assetID, err)
	}
	return asset, nil
}

// Download streams the asset's original bytes to destPath.
func (c *Client) Download(ctx context.Context, assetID, destPath string) error {
	if assetID == "" {
		return errors.New("asset id required")
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/assets/"+assetID+"/original", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download asset %s: %w", assetID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download asset %s returned %d", assetID, resp.StatusCode)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create download target: %w", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return fmt.Errorf("write download target: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close download target: %w", err)
	}
	return nil
}

// Upload submits a derived file as a new asset and returns its id. Only
// HTTP 200/201 count as success.
func (c *Client) Upload(ctx context.Context, upload UploadRequest) (string, error) {
	file, err := os.Open(upload.FilePath)
	if err != nil {
		return "", fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	// Boosted outputs run to several gigabytes, so the multipart body is
	// streamed straight off disk instead of being assembled in memory.
	body, bodyWriter := io.Pipe()
	writer := multipart.NewWriter(bodyWriter)
	go func() {
		bodyWriter.CloseWithError(writeUploadBody(writer, upload, file))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/assets", body)
	if err != nil {
		body.Close()
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload asset returned %d", resp.StatusCode)
	}

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if decoded.ID == "" {
		return "", errors.New("upload response missing asset id")
	}
	return decoded.ID, nil
}

// writeUploadBody emits the asset metadata fields and the file part, then
// closes the multipart writer so the terminating boundary reaches the wire.
func writeUploadBody(writer *multipart.Writer, upload UploadRequest, file *os.File) error {
	fields := map[string]string{
		"deviceAssetId":  upload.DeviceAssetID,
		"deviceId":       upload.DeviceID,
		"fileCreatedAt":  upload.FileCreatedAt,
		"fileModifiedAt": upload.FileModifiedAt,
		"isFavorite":     strconv.FormatBool(upload.IsFavorite),
		"duration":       upload.Duration,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write multipart field %s: %w", name, err)
		}
	}
	part, err := writer.CreateFormFile("assetData", upload.FileName)
	if err != nil {
		return fmt.Errorf("create multipart file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy upload payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}
	return nil
}

// CreateStack groups the derived asset under the stack's primary. The remote
// store may reject re-stacking an already-stacked primary; callers treat a
// non-2xx here as a warning, not a failure.
func (c *Client) CreateStack(ctx context.Context, primaryID, childID string) error {
	if primaryID == "" || childID == "" {
		return errors.New("primary and child asset ids required")
	}
	payload, err := json.Marshal(map[string][]string{"assetIds": {primaryID, childID}})
	if err != nil {
		return fmt.Errorf("encode stack body: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/stacks", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create stack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("create stack returned %d", resp.StatusCode)
	}
	return nil
}
