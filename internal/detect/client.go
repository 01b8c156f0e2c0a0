package detect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/yildizm/LogDetect/internal/detect"

// Detector submits one upload and returns the decoded result
type Detector interface {
	Detect(ctx context.Context, upload *Upload) (*Result, error)
}

// ClientConfig configures the detection service client
type ClientConfig struct {
	// BaseURL is the resolved service base, e.g. http://localhost:8000
	BaseURL string

	// Timeout for a whole request; zero leaves it to the transport
	Timeout time.Duration

	// MaxResponseBytes caps how much of a response body is read
	MaxResponseBytes int64

	// Decode controls validation of success bodies
	Decode DecodeOptions

	// HTTPClient overrides the default client (mainly for tests)
	HTTPClient *http.Client
}

// Client talks to the remote detection service
type Client struct {
	baseURL  *url.URL
	client   *http.Client
	decode   DecodeOptions
	maxBytes int64
	tracer   trace.Tracer
}

// NewClient creates a client for the given base URL
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("detection base URL is required")
	}
	baseURL, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme %q (must be http or https)", baseURL.Scheme)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}

	return &Client{
		baseURL:  baseURL,
		client:   client,
		decode:   cfg.Decode,
		maxBytes: maxBytes,
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// BaseURL returns the service base the client posts to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

// Detect posts the upload as multipart form data to {base}/detect
func (c *Client) Detect(ctx context.Context, upload *Upload) (*Result, error) {
	if upload == nil {
		return nil, NewValidationError()
	}

	ctx, span := c.tracer.Start(ctx, "detect.upload", trace.WithAttributes(
		attribute.String("detect.file", upload.Name),
		attribute.String("detect.endpoint", c.endpoint("detect")),
	))
	defer span.End()

	result, err := c.detect(ctx, upload, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if result.Response.Samples != nil {
		span.SetAttributes(attribute.Int("detect.samples", *result.Response.Samples))
	}
	return result, nil
}

func (c *Client) detect(ctx context.Context, upload *Upload, span trace.Span) (*Result, error) {
	body, contentType := multipartBody(upload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("detect"), body)
	if err != nil {
		_ = body.Close()
		return nil, NewInternalError(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewServerError(resp.StatusCode, parseDetail(raw))
	}

	decoded, err := Decode(raw, c.decode)
	if err != nil {
		return nil, err
	}

	return &Result{Response: decoded, Raw: raw}, nil
}

// multipartBody streams the upload through a pipe so large files are not
// buffered in memory
func multipartBody(upload *Upload) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		name := filepath.Base(upload.Name)
		if name == "." || name == string(filepath.Separator) || name == "" {
			name = "upload.log"
		}
		part, err := mw.CreateFormFile(FormField, name)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if upload.Content != nil {
			if _, err := io.Copy(part, upload.Content); err != nil {
				_ = pw.CloseWithError(err)
				return
			}
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	return pr, mw.FormDataContentType()
}

// Health calls GET {base}/health
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	ctx, span := c.tracer.Start(ctx, "detect.health")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("health"), http.NoBody)
	if err != nil {
		return nil, NewInternalError(fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, NewTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, NewTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewServerError(resp.StatusCode, parseDetail(raw))
	}

	var status HealthStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, NewMalformedError(err)
	}
	return &status, nil
}
