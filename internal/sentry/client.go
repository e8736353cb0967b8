// Package sentry is a minimal client for the release endpoints of the Sentry
// web API: creating a release and attaching files to it.
package sentry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the hosted Sentry API.
const DefaultBaseURL = "https://sentry.io"

const defaultUserAgent = "smrelease"

// NewRelease is the body of a create-release call.
type NewRelease struct {
	Version string `json:"version"`
	Ref     string `json:"ref,omitempty"`
	URL     string `json:"url,omitempty"`
}

// NewReleaseFile is one file attached to a release. File is streamed and
// read exactly once.
type NewReleaseFile struct {
	Name string
	File io.Reader
}

// ReleaseClient is the subset of the tracking service the release plugin
// depends on.
type ReleaseClient interface {
	CreateRelease(ctx context.Context, org, project string, r NewRelease) error
	CreateReleaseFile(ctx context.Context, org, project, version string, f NewReleaseFile) error
}

// Client talks to the Sentry API over HTTP.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	hc        *http.Client
}

var _ ReleaseClient = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a self-hosted installation.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New creates a client authenticating with the given auth token.
func New(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		token:     token,
		userAgent: defaultUserAgent,
		hc:        &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateRelease registers a release for the project.
func (c *Client) CreateRelease(ctx context.Context, org, project string, r NewRelease) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode release: %w", err)
	}

	path := fmt.Sprintf("/api/0/projects/%s/%s/releases/", url.PathEscape(org), url.PathEscape(project))
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body))
}

// CreateReleaseFile uploads one file to an existing release. The file is
// streamed as multipart/form-data with "name" and "file" parts.
func (c *Client) CreateReleaseFile(ctx context.Context, org, project, version string, f NewReleaseFile) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeReleaseFile(mw, f))
	}()

	path := fmt.Sprintf("/api/0/projects/%s/%s/releases/%s/files/",
		url.PathEscape(org), url.PathEscape(project), url.PathEscape(version))
	err := c.do(ctx, http.MethodPost, path, mw.FormDataContentType(), pr)
	// Unblocks the writer if the request ended before the body was consumed.
	pr.CloseWithError(io.ErrClosedPipe)
	return err
}

func writeReleaseFile(mw *multipart.Writer, f NewReleaseFile) error {
	if err := mw.WriteField("name", f.Name); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", baseName(f.Name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f.File); err != nil {
		return fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return mw.Close()
}

func baseName(name string) string {
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return newAPIError(method, path, resp.StatusCode, raw)
}
