// Package httpclient is the Go client for the TraceGuard HTTP API. It keeps
// the token pair from the last login and sends the access token as a Bearer
// header on authenticated calls.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Vinithareddy09/TraceGuard/internal/common"
	"github.com/Vinithareddy09/TraceGuard/internal/netx"
)

type Client struct {
	baseURL      string
	http         *http.Client
	accessToken  string
	refreshToken string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Match mirrors the server's reuse match shape.
type Match struct {
	Document    string  `json:"document"`
	Fingerprint string  `json:"fingerprint"`
	Similarity  float64 `json:"similarity"`
}

type DocumentRef struct {
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuditEntry struct {
	Sequence  int64     `json:"sequence"`
	Action    string    `json:"action"`
	Document  string    `json:"document"`
	UserID    string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
	PrevHash  string    `json:"prev_hash"`
	EntryHash string    `json:"entry_hash"`
	Verified  bool      `json:"verified"`
}

type Stats struct {
	DocumentCount   int64 `json:"document_count"`
	AccessCount     int64 `json:"access_count"`
	ReuseEventCount int64 `json:"reuse_event_count"`
	AuditEntryCount int64 `json:"audit_entry_count"`
}

func (c *Client) call(ctx context.Context, method, path string, body any, out any, authorized bool) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrorNotFound
	case resp.StatusCode >= 400:
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, e.Error)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.call(ctx, http.MethodPost, "/register",
		map[string]string{"username": username, "password": password}, nil, false)
}

// Login stores the returned token pair on the client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	err := c.call(ctx, http.MethodPost, "/login",
		map[string]string{"username": username, "password": password}, &resp, false)
	if err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return nil
}

// Refresh rotates the stored refresh token.
func (c *Client) Refresh(ctx context.Context) error {
	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	err := c.call(ctx, http.MethodPost, "/refresh",
		map[string]string{"refresh_token": c.refreshToken}, &resp, false)
	if err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return nil
}

func (c *Client) LoggedIn() bool {
	return c.accessToken != ""
}

func (c *Client) Upload(ctx context.Context, name, text string) (string, error) {
	var resp struct {
		Fingerprint string `json:"fingerprint"`
	}
	err := c.call(ctx, http.MethodPost, "/upload",
		map[string]string{"name": name, "text": text}, &resp, true)
	return resp.Fingerprint, err
}

func (c *Client) RecordAccess(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodPost, "/access",
		map[string]string{"name": name}, nil, true)
}

func (c *Client) Read(ctx context.Context, name string) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	err := c.call(ctx, http.MethodPost, "/read",
		map[string]string{"name": name}, &resp, true)
	return resp.Text, err
}

func (c *Client) ReuseCheck(ctx context.Context, text string) ([]Match, error) {
	var resp struct {
		Matches []Match `json:"matches"`
	}
	err := c.call(ctx, http.MethodPost, "/reuse_check",
		map[string]string{"text": text}, &resp, true)
	return resp.Matches, err
}

func (c *Client) Documents(ctx context.Context) ([]DocumentRef, error) {
	var resp struct {
		Documents []DocumentRef `json:"documents"`
	}
	err := c.call(ctx, http.MethodGet, "/documents", nil, &resp, true)
	return resp.Documents, err
}

func (c *Client) Audit(ctx context.Context) ([]AuditEntry, error) {
	var resp struct {
		Entries []AuditEntry `json:"entries"`
	}
	err := c.call(ctx, http.MethodGet, "/audit", nil, &resp, true)
	return resp.Entries, err
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := c.call(ctx, http.MethodGet, "/stats", nil, stats, true)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Archive asks the server for a presigned PUT URL and uploads the payload
// straight to object storage. Returns the storage key.
func (c *Client) Archive(ctx context.Context, payload []byte) (string, error) {
	var resp struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	if err := c.call(ctx, http.MethodPost, "/archive/presign", nil, &resp, true); err != nil {
		return "", err
	}
	if err := netx.UploadToPresignedURL(resp.URL, payload); err != nil {
		return "", err
	}
	return resp.Key, nil
}

// ArchiveURL returns a presigned GET URL for a previously archived payload.
func (c *Client) ArchiveURL(ctx context.Context, key string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	err := c.call(ctx, http.MethodGet, "/archive/presign?key="+url.QueryEscape(key), nil, &resp, true)
	return resp.URL, err
}
