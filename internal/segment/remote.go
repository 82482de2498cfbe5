// ABOUTME: Remote OCR client implementing the MinerU batch extraction protocol
// ABOUTME: Uploads the PDF, polls for completion, and unpacks the markdown result
package segment

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harper/paperplay/internal/models"
)

const (
	// DefaultMinerUBase is the production MinerU API base URL
	DefaultMinerUBase = "https://mineru.net/api/v4"
	// DefaultPollInterval is the delay between extraction status polls
	DefaultPollInterval = 5 * time.Second
	// DefaultPollTimeout bounds the total wait for a remote extraction
	DefaultPollTimeout = 5 * time.Minute
)

// MinerUConfig holds connection settings for the MinerU API
type MinerUConfig struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// MinerUClient drives the MinerU batch extraction flow
type MinerUClient struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	pollTimeout  time.Duration
	httpClient   *http.Client
}

// NewMinerUClient creates a new MinerU client
func NewMinerUClient(config *MinerUConfig) *MinerUClient {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultMinerUBase
	}
	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	pollTimeout := config.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}

	return &MinerUClient{
		apiKey:       config.APIKey,
		baseURL:      baseURL,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

type batchFile struct {
	Name  string `json:"name"`
	IsOCR bool   `json:"is_ocr"`
}

type batchRequest struct {
	EnableFormula bool        `json:"enable_formula"`
	EnableTable   bool        `json:"enable_table"`
	Language      string      `json:"language"`
	Files         []batchFile `json:"files"`
}

type batchResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		BatchID  string   `json:"batch_id"`
		FileURLs []string `json:"file_urls"`
	} `json:"data"`
}

type extractResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		ExtractResult []struct {
			FileName   string `json:"file_name"`
			State      string `json:"state"`
			ErrMsg     string `json:"err_msg"`
			FullZipURL string `json:"full_zip_url"`
		} `json:"extract_result"`
	} `json:"data"`
}

// ExtractMarkdown runs the full batch extraction flow and returns the
// document rendered as markdown
func (c *MinerUClient) ExtractMarkdown(ctx context.Context, doc *models.Document) (string, error) {
	batchID, uploadURL, err := c.requestBatch(ctx, doc.Name)
	if err != nil {
		return "", err
	}

	if err := c.uploadFile(ctx, uploadURL, doc.Data); err != nil {
		return "", err
	}

	zipURL, err := c.pollResult(ctx, batchID)
	if err != nil {
		return "", err
	}

	return c.downloadMarkdown(ctx, zipURL)
}

// requestBatch registers the file and returns the batch ID plus upload URL
func (c *MinerUClient) requestBatch(ctx context.Context, name string) (string, string, error) {
	body, err := json.Marshal(batchRequest{
		EnableFormula: false,
		EnableTable:   true,
		Language:      "auto",
		Files:         []batchFile{{Name: name, IsOCR: true}},
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/file-urls/batch", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("batch request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if err := classifyStatus(resp.StatusCode, respBody); err != nil {
		return "", "", err
	}

	var batch batchResponse
	if err := json.Unmarshal(respBody, &batch); err != nil {
		return "", "", fmt.Errorf("invalid batch response: %w", err)
	}
	if batch.Code != 0 {
		return "", "", fmt.Errorf("batch request rejected (code %d): %s", batch.Code, batch.Msg)
	}
	if len(batch.Data.FileURLs) == 0 {
		return "", "", fmt.Errorf("batch response contains no upload URLs")
	}

	return batch.Data.BatchID, batch.Data.FileURLs[0], nil
}

// uploadFile sends the raw PDF bytes to the presigned upload URL
func (c *MinerUClient) uploadFile(ctx context.Context, url string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}
	return nil
}

// pollResult polls the batch until extraction finishes and returns the
// result archive URL
func (c *MinerUClient) pollResult(ctx context.Context, batchID string) (string, error) {
	deadline := time.Now().Add(c.pollTimeout)

	for {
		state, zipURL, errMsg, err := c.fetchResult(ctx, batchID)
		if err != nil {
			return "", err
		}

		switch state {
		case "done":
			return zipURL, nil
		case "failed":
			return "", fmt.Errorf("remote extraction failed: %s", errMsg)
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("remote extraction did not finish within %v", c.pollTimeout)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *MinerUClient) fetchResult(ctx context.Context, batchID string) (state, zipURL, errMsg string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/extract-results/batch/"+batchID, nil)
	if err != nil {
		return "", "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", "", fmt.Errorf("poll request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", "", err
	}
	if err := classifyStatus(resp.StatusCode, respBody); err != nil {
		return "", "", "", err
	}

	var result extractResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", "", "", fmt.Errorf("invalid poll response: %w", err)
	}
	if result.Code != 0 {
		return "", "", "", fmt.Errorf("poll rejected (code %d): %s", result.Code, result.Msg)
	}
	if len(result.Data.ExtractResult) == 0 {
		return "", "", "", fmt.Errorf("poll response contains no extraction entries")
	}

	entry := result.Data.ExtractResult[0]
	return entry.State, entry.FullZipURL, entry.ErrMsg, nil
}

// downloadMarkdown fetches the result archive and returns the markdown
// inside it, preferring full.md and falling back to the largest .md entry
func (c *MinerUClient) downloadMarkdown(ctx context.Context, zipURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, zipURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("result download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("result download failed with status %d", resp.StatusCode)
	}

	archive, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	zipReader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return "", fmt.Errorf("invalid result archive: %w", err)
	}

	var best *zip.File
	for _, file := range zipReader.File {
		if file.Name == "full.md" || strings.HasSuffix(file.Name, "/full.md") {
			best = file
			break
		}
		if strings.HasSuffix(file.Name, ".md") {
			if best == nil || file.UncompressedSize64 > best.UncompressedSize64 {
				best = file
			}
		}
	}
	if best == nil {
		return "", fmt.Errorf("result archive contains no markdown file")
	}

	rc, err := best.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	markdown, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(markdown), nil
}

// classifyStatus maps HTTP failures onto the segmentation error taxonomy.
// Credential and quota failures are permanent, everything else transient.
func classifyStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	message := strings.TrimSpace(string(body))
	if len(message) > 200 {
		message = message[:200]
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return &AuthError{StatusCode: status, Message: message}
	}
	return fmt.Errorf("remote OCR returned status %d: %s", status, message)
}
