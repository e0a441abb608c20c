// Package client is the HTTP client for the targets REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/sebasr/target-manager/internal/logging"
	"github.com/sebasr/target-manager/internal/models"
)

// Defaults applied by New.
const (
	DefaultBaseURL  = "http://localhost:8080"
	DefaultTimeout  = 30 * time.Second
	DefaultRetryMax = 2

	targetsPath = "/api/v1/targets"
	healthPath  = "/health"
)

// Store is the set of remote operations on targets. Every error returned is an
// *APIError.
type Store interface {
	ListTargets(ctx context.Context) ([]models.Target, error)
	GetTarget(ctx context.Context, id string) (*models.Target, error)
	CreateTarget(ctx context.Context, in models.TargetCreate) (*models.Target, error)
	UpdateTarget(ctx context.Context, id string, in models.TargetUpdate) (*models.Target, error)
	DeleteTarget(ctx context.Context, id string) error
	Health(ctx context.Context) (*HealthStatus, error)
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status    string    `json:"status" yaml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Version   string    `json:"version" yaml:"version"`
}

// Options configures an HTTPStore.
type Options struct {
	BaseURL      string        // empty means DefaultBaseURL
	Timeout      time.Duration // zero means DefaultTimeout
	RetryMax     int           // GET retries; zero means DefaultRetryMax, negative disables
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Transport    http.RoundTripper // nil uses a pooled net/http transport
	Logger       *logrus.Logger
}

// HTTPStore implements Store over HTTP. Reads are retried on transport errors
// and 5xx responses; writes are sent once.
type HTTPStore struct {
	baseURL string
	reads   *retryablehttp.Client
	writes  *retryablehttp.Client
	log     *logrus.Logger
}

var _ Store = (*HTTPStore)(nil)

// New creates an HTTPStore.
func New(opts Options) *HTTPStore {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retryMax := opts.RetryMax
	switch {
	case retryMax == 0:
		retryMax = DefaultRetryMax
	case retryMax < 0:
		retryMax = 0
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	reads := newRetryClient(opts)
	reads.RetryMax = retryMax
	reads.HTTPClient.Timeout = timeout
	if opts.Transport != nil {
		reads.HTTPClient.Transport = opts.Transport
	}

	writes := newRetryClient(opts)
	writes.RetryMax = 0
	writes.HTTPClient = reads.HTTPClient

	return &HTTPStore{
		baseURL: baseURL,
		reads:   reads,
		writes:  writes,
		log:     logger,
	}
}

func newRetryClient(opts Options) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	if opts.Logger != nil {
		c.Logger = leveledLogger{log: opts.Logger}
	} else {
		c.Logger = log.New(io.Discard, "", 0)
	}
	if opts.RetryWaitMin > 0 {
		c.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		c.RetryWaitMax = opts.RetryWaitMax
	}
	// Hand the last response back instead of a generic "giving up" error so
	// the real status reaches the caller.
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}

// BaseURL returns the API root the store talks to.
func (s *HTTPStore) BaseURL() string {
	return s.baseURL
}

// ListTargets fetches every target.
func (s *HTTPStore) ListTargets(ctx context.Context) ([]models.Target, error) {
	var targets []models.Target
	if err := s.do(ctx, s.reads, http.MethodGet, targetsPath, nil, &targets); err != nil {
		return nil, err
	}
	if targets == nil {
		targets = []models.Target{}
	}
	return targets, nil
}

// GetTarget fetches one target.
func (s *HTTPStore) GetTarget(ctx context.Context, id string) (*models.Target, error) {
	var target models.Target
	if err := s.do(ctx, s.reads, http.MethodGet, targetPath(id), nil, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// CreateTarget creates a target and returns it with its server-assigned id.
func (s *HTTPStore) CreateTarget(ctx context.Context, in models.TargetCreate) (*models.Target, error) {
	var target models.Target
	if err := s.do(ctx, s.writes, http.MethodPost, targetsPath, in, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// UpdateTarget sends a partial update.
func (s *HTTPStore) UpdateTarget(ctx context.Context, id string, in models.TargetUpdate) (*models.Target, error) {
	var target models.Target
	if err := s.do(ctx, s.writes, http.MethodPut, targetPath(id), in, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// DeleteTarget removes a target.
func (s *HTTPStore) DeleteTarget(ctx context.Context, id string) error {
	return s.do(ctx, s.writes, http.MethodDelete, targetPath(id), nil, nil)
}

// Health queries the service health endpoint.
func (s *HTTPStore) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := s.do(ctx, s.reads, http.MethodGet, healthPath, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func targetPath(id string) string {
	return targetsPath + "/" + url.PathEscape(id)
}

func (s *HTTPStore) do(ctx context.Context, c *retryablehttp.Client, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return &APIError{Kind: KindTransport, Message: fmt.Sprintf("encode request: %v", err)}
		}
	}

	var raw interface{}
	if payload != nil {
		raw = payload
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, s.baseURL+path, raw)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: fmt.Sprintf("build request: %v", err)}
	}

	requestID := NewRequestID()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	entry := s.entry().WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
	})

	resp, err := c.Do(req)
	if err != nil {
		entry.WithError(err).Debug("Request failed")
		return Normalize(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: fmt.Sprintf("read response: %v", err)}
	}
	entry.WithField("status", resp.StatusCode).Debug("Request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{
			Kind:       KindHTTPServer,
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Message:    fmt.Sprintf("invalid response body: %v", err),
		}
	}
	return nil
}

func (s *HTTPStore) entry() *logrus.Entry {
	return logrus.NewEntry(s.log)
}
