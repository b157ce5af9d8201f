// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "jobportal/internal/common/errors"
	"jobportal/internal/common/logger"
)

const (
	tracerName      = "jobportal/internal/common/http"
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 64 * 1024
)

// Recorder receives one observation per backend call.
type Recorder interface {
	RecordRequest(ctx context.Context, endpoint, status string, duration time.Duration)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	recorder   Recorder
	logger     logger.Logger
	tracer     trace.Tracer
}

type Option func(*Client)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the underlying *http.Client (tests use httptest clients).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.NewNoOpLogger(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON issues a GET and decodes a 2xx body into out.
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	return c.call(ctx, http.MethodGet, path, nil, "", out)
}

// PostJSON encodes in as the request body and decodes a 2xx body into out.
// out may be nil when the response body is irrelevant.
func (c *Client) PostJSON(ctx context.Context, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return apperrors.NewValidationError("body", fmt.Sprintf("cannot encode request: %v", err))
		}
		body = bytes.NewReader(payload)
	}
	return c.call(ctx, http.MethodPost, path, body, "application/json", out)
}

// PostMultipart uploads r as a single form file under field.
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, r io.Reader, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return apperrors.NewValidationError(field, fmt.Sprintf("cannot build form: %v", err))
	}
	if _, err := io.Copy(part, r); err != nil {
		return apperrors.NewValidationError(field, fmt.Sprintf("cannot read file: %v", err))
	}
	if err := mw.Close(); err != nil {
		return apperrors.NewValidationError(field, fmt.Sprintf("cannot build form: %v", err))
	}
	return c.call(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), out)
}

func (c *Client) call(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	endpoint := method + " " + path
	ctx, span := c.tracer.Start(ctx, endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	status := "error"
	defer func() {
		if c.recorder != nil {
			c.recorder.RecordRequest(ctx, endpoint, status, time.Since(start))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return apperrors.NewNetworkError(endpoint, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
		attribute.String("request.id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if isTimeout(err) {
			status = "timeout"
			return apperrors.NewTimeoutError(endpoint, err)
		}
		return apperrors.NewNetworkError(endpoint, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	status = fmt.Sprintf("%d", resp.StatusCode)

	c.logger.Debug("backend call", map[string]interface{}{
		"endpoint":   endpoint,
		"statusCode": resp.StatusCode,
		"requestId":  requestID,
		"durationMs": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		span.SetStatus(codes.Error, resp.Status)
		return apperrors.NewServiceError(resp.StatusCode, serviceMessage(raw), strings.TrimSpace(string(raw)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.SetStatus(codes.Error, "decode")
		return apperrors.NewDecodeError(endpoint, err)
	}
	return nil
}

// serviceMessage extracts {"error": "..."} or {"message": "..."} from an error body.
func serviceMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// WithFallbackMessage fills in msg on a service error whose body carried no
// message. Any other error is returned unchanged.
func WithFallbackMessage(err error, msg string) error {
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) && stdErr.Code == apperrors.ErrCodeService && stdErr.Message == "" {
		stdErr.Message = msg
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
