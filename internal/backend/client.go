package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventfeedback/internal/feedback"
)

const defaultBaseURL = "http://127.0.0.1:8000"

// ErrNotFound is returned when the backend has no artifact to serve yet.
var ErrNotFound = errors.New("backend: artifact not found")

// AnalyzeResponse is the raw answer of the analysis endpoint. The caller
// decides, by content type, whether Body is a document or a JSON result.
type AnalyzeResponse struct {
	ContentType string
	Filename    string
	Body        []byte
}

// Client is a thin wrapper around the feedback analysis REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *Metrics
}

// NewClient constructs a client with sane defaults.
func NewClient(opts ...func(*Client)) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient overrides the internal HTTP client.
func WithHTTPClient(hc *http.Client) func(*Client) {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default backend base URL (useful for tests).
func WithBaseURL(u string) func(*Client) {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithMetrics records every request into m.
func WithMetrics(m *Metrics) func(*Client) {
	return func(c *Client) {
		c.metrics = m
	}
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ArtifactURL returns the static link of a stored report document, used both
// for the embedded viewer and the download button.
func (c *Client) ArtifactURL(pdfPath string) string {
	return c.baseURL + "/reports/" + escapePath(pdfPath)
}

// ListReports fetches every stored report of a club.
func (c *Client) ListReports(ctx context.Context, club string) ([]feedback.EventReport, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/reports/"+url.PathEscape(club), nil)
	if err != nil {
		return nil, err
	}

	body, _, err := c.do(req, "list_reports")
	if err != nil {
		return nil, err
	}

	reports, err := feedback.DecodeReports(body)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	return reports, nil
}

// DeleteReport removes one stored report artifact.
func (c *Client) DeleteReport(ctx context.Context, pdfPath string) error {
	if strings.TrimSpace(pdfPath) == "" {
		return fmt.Errorf("backend: empty pdf path")
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/reports/"+escapePath(pdfPath), nil)
	if err != nil {
		return err
	}
	_, _, err = c.do(req, "delete_report")
	return err
}

// Analyze submits one event's fields and feedback file as a multipart form.
func (c *Client) Analyze(ctx context.Context, upload feedback.UploadRequest) (*AnalyzeResponse, error) {
	if upload.File == nil {
		return nil, fmt.Errorf("backend: missing feedback file")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", upload.File.Name)
	if err != nil {
		return nil, fmt.Errorf("backend: create form file: %w", err)
	}
	if _, err := part.Write(upload.File.Data); err != nil {
		return nil, fmt.Errorf("backend: write form file: %w", err)
	}
	fields := []struct{ name, value string }{
		{"eventName", upload.EventName},
		{"club", upload.Club},
		{"description", upload.Description},
		{"date", upload.Date},
		{"strength", upload.Strength},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("backend: write field %s: %w", f.name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("backend: close form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/analyze/", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, header, err := c.do(req, "analyze")
	if err != nil {
		return nil, err
	}

	return &AnalyzeResponse{
		ContentType: mediaType(header.Get("Content-Type")),
		Filename:    attachmentName(header.Get("Content-Disposition")),
		Body:        body,
	}, nil
}

// LatestSummary downloads the most recently generated summary document.
// ErrNotFound is returned when none exists; the backend signals that either
// with 404 or with a JSON error body.
func (c *Client) LatestSummary(ctx context.Context) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/download-summary/", nil)
	if err != nil {
		return nil, err
	}

	body, header, err := c.do(req, "latest_summary")
	if err != nil {
		return nil, err
	}
	if mediaType(header.Get("Content-Type")) == "application/json" {
		return nil, ErrNotFound
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("backend: create request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, http.Header, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(op, "transport_error", time.Since(start))
		return nil, nil, fmt.Errorf("backend: %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.metrics.observe(op, "not_found", time.Since(start))
		return nil, resp.Header, fmt.Errorf("backend: %s: %w", op, ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		c.metrics.observe(op, "http_error", time.Since(start))
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, resp.Header, fmt.Errorf("backend: %s api error %d: %s", op, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(op, "read_error", time.Since(start))
		return nil, resp.Header, fmt.Errorf("backend: %s read body: %w", op, err)
	}
	c.metrics.observe(op, "ok", time.Since(start))
	return data, resp.Header, nil
}

func escapePath(p string) string {
	segments := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
