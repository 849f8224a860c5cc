// Package registry calls the remote document registry. Every call consumes
// one permit from a rate limit gate before any request leaves the process.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/serroba/registry-client/internal/document"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the production registry host.
	DefaultBaseURL = "https://ismp.crpt.ru"
	// DefaultTimeout bounds a single registry call.
	DefaultTimeout = 10 * time.Second

	createPath   = "/api/v3/lk/documents/create"
	maxBodyBytes = 1 << 20
)

// Permits hands out one permit per registry call.
type Permits interface {
	Acquire(ctx context.Context) error
}

// Config holds the connection settings for the registry.
type Config struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	ProductGroup string
}

// Result is the registry's answer to an accepted document.
type Result struct {
	DocumentID string
	StatusCode int
}

type createResponse struct {
	Value string `json:"value"`
}

// Client submits documents to the registry.
type Client struct {
	endpoint     string
	token        string
	productGroup string
	permits      Permits
	http         *http.Client
	logger       *zap.Logger
	tracer       trace.Tracer
	metrics      *metrics
}

// NewClient creates a registry client that takes a permit from permits before every call.
func NewClient(cfg Config, permits Permits, logger *zap.Logger, meter metric.Meter) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	m, err := newMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("registry metrics: %w", err)
	}

	return &Client{
		endpoint:     strings.TrimSuffix(cfg.BaseURL, "/") + createPath,
		token:        cfg.Token,
		productGroup: cfg.ProductGroup,
		permits:      permits,
		http:         &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
		tracer:       otel.Tracer("github.com/serroba/registry-client/internal/registry"),
		metrics:      m,
	}, nil
}

// CreateDocument files doc with its detached signature. It blocks until the
// gate grants a permit; if ctx ends first no request is sent and the error
// wraps ratelimit.ErrCancelled.
func (c *Client) CreateDocument(ctx context.Context, doc *document.Document, signature string) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "registry.CreateDocument",
		trace.WithAttributes(attribute.String("document.id", doc.DocID)))
	defer span.End()

	result, err := c.createDocument(ctx, doc, signature)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	return result, nil
}

func (c *Client) createDocument(ctx context.Context, doc *document.Document, signature string) (*Result, error) {
	env, err := document.NewEnvelope(doc, signature, c.productGroup)
	if err != nil {
		c.metrics.outcome(ctx, outcomeRejected)

		return nil, err
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	waitStart := time.Now()

	if err := c.permits.Acquire(ctx); err != nil {
		c.metrics.outcome(ctx, outcomeCancelled)

		return nil, err
	}

	c.metrics.waited(ctx, time.Since(waitStart))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.outcome(ctx, outcomeFailed)

		return nil, fmt.Errorf("registry: create document: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.outcome(ctx, outcomeFailed)

		return nil, fmt.Errorf("registry: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := newStatusError(resp.StatusCode, raw)
		c.recordStatusError(ctx, doc, statusErr)

		return nil, statusErr
	}

	var out createResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.Value == "" {
		c.metrics.outcome(ctx, outcomeFailed)

		return nil, fmt.Errorf("%w: status %d: %q", ErrMalformedResponse, resp.StatusCode, errorMessage(raw))
	}

	c.metrics.outcome(ctx, outcomeCreated)
	c.logger.Debug("document created",
		zap.String("doc_id", doc.DocID),
		zap.String("registry_id", out.Value),
	)

	return &Result{DocumentID: out.Value, StatusCode: resp.StatusCode}, nil
}

func (c *Client) recordStatusError(ctx context.Context, doc *document.Document, statusErr *StatusError) {
	outcome := outcomeFailed
	if IsPermanent(statusErr) {
		outcome = outcomeRejected
	}

	c.metrics.outcome(ctx, outcome)

	if errors.Is(statusErr, ErrThrottled) {
		c.logger.Warn("registry throttled request despite local limit",
			zap.String("doc_id", doc.DocID),
		)

		return
	}

	c.logger.Warn("registry refused document",
		zap.String("doc_id", doc.DocID),
		zap.Int("status", statusErr.StatusCode),
		zap.String("message", statusErr.Message),
	)
}
