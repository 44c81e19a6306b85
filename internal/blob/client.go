// Package blob talks to the hosted object-storage gateway that serves
// miniature images. Uploads are non-overwriting and objects are served
// from the gateway's public URL space.
package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUpload = errors.New("upload failed")

type Config struct {
	URL        string // gateway base URL
	APIKey     string
	Bucket     string
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	apiKey  string
	bucket  string
	http    *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("storage URL is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		bucket:  cfg.Bucket,
		http:    hc,
	}, nil
}

// Upload stores an object under name. Existing objects are never overwritten.
func (c *Client) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", ErrUpload, gatewayMessage(resp.StatusCode, body))
	}
	return nil
}

// PublicURL returns the public address of an uploaded object.
func (c *Client) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, name)
}

var dataURIRe = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

// Ingest resolves an image reference to a hosted URL. Already-hosted URLs
// pass through unchanged; a base64 data URI is decoded and uploaded under a
// generated unique name. Empty input stays empty.
func (c *Client) Ingest(ctx context.Context, image string) (string, error) {
	if image == "" {
		return "", nil
	}
	if strings.HasPrefix(image, "http") {
		return image, nil
	}

	m := dataURIRe.FindStringSubmatch(image)
	if m == nil {
		return "", fmt.Errorf("%w: not a URL or base64 data URI", ErrUpload)
	}
	contentType := m[1]
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", fmt.Errorf("%w: decode base64: %v", ErrUpload, err)
	}

	ext := contentType
	if i := strings.LastIndex(contentType, "/"); i >= 0 {
		ext = contentType[i+1:]
	}
	name := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	if err := c.Upload(ctx, name, data, contentType); err != nil {
		return "", err
	}
	return c.PublicURL(name), nil
}

func gatewayMessage(status int, body []byte) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return fmt.Sprintf("status %d", status)
}
