package draftapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/bnema/family-draft-cli/internal/ports"
	"github.com/google/uuid"
)

const (
	maxResponseBytes      = 4 << 20
	defaultRequestTimeout = 15 * time.Second
	userAgent             = "fdraft"
	routeState            = "state"
)

var errMissingOK = errors.New(`response has no "ok" field`)

// Client talks to the draft web app. Reads go to ?route=state, actions are
// POSTed to ?route=<action> with a JSON body.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Now            func() time.Time
}

var _ ports.DraftService = (*Client)(nil)

// ValidateEndpoint reports domain.ErrEndpointNotConfigured for blank,
// placeholder or non-http(s) endpoints.
func ValidateEndpoint(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "PASTE_") {
		return domain.ErrEndpointNotConfigured
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEndpointNotConfigured, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: endpoint must use http or https", domain.ErrEndpointNotConfigured)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: endpoint host is required", domain.ErrEndpointNotConfigured)
	}

	return nil
}

func (c *Client) FetchState(ctx context.Context) (*domain.Snapshot, error) {
	endpoint, err := c.routeURL(routeState, true)
	if err != nil {
		return nil, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create state request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	var envelope stateEnvelope
	if err := c.do(req, "fetch state", &envelope); err != nil {
		return nil, err
	}
	if envelope.OK == nil {
		return nil, &domain.TransportError{Op: "fetch state", Err: errMissingOK}
	}
	if !*envelope.OK {
		return nil, &domain.RejectionError{Route: routeState, Message: envelope.Error}
	}

	return fromSchema(envelope.snapshotSchema), nil
}

func (c *Client) Submit(ctx context.Context, action domain.Action) (*domain.Snapshot, error) {
	if !action.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedAction, action.Kind)
	}
	op := "submit " + string(action.Kind)

	endpoint, err := c.routeURL(string(action.Kind), false)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(requestBody(action))
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", action.Kind, err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", action.Kind, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var envelope actionEnvelope
	if err := c.do(req, op, &envelope); err != nil {
		return nil, err
	}
	if envelope.OK == nil {
		return nil, &domain.TransportError{Op: op, Err: errMissingOK}
	}
	if !*envelope.OK {
		return nil, &domain.RejectionError{Route: string(action.Kind), Message: envelope.Error}
	}
	if envelope.State == nil {
		return nil, &domain.TransportError{Op: op, Err: errors.New(`accepted response has no "state"`)}
	}

	return fromSchema(*envelope.State), nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if len(data) > maxResponseBytes {
		return &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New("response too large")}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(snippet(data))}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

func (c *Client) routeURL(route string, bustCache bool) (string, error) {
	if err := ValidateEndpoint(c.BaseURL); err != nil {
		return "", err
	}

	parsed, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}

	query := parsed.Query()
	query.Set("route", route)
	if bustCache {
		query.Set("_ts", strconv.FormatInt(c.now().UnixNano(), 10))
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "…"
	}
	if text == "" {
		return "empty response"
	}
	return text
}
