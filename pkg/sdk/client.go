package sdk

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

	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/tidwall/gjson"

	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
)

const (
	PathSubtasks  = "/get_subtasks"
	PathStructure = "/get_overall_structure"

	// RequestIDHeader carries the per-call correlation ID.
	RequestIDHeader = "X-Request-ID"
)

type requestIDKey struct{}

// ContextWithRequestID attaches a request ID that the client sends instead of
// generating one.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the ID set by ContextWithRequestID, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// Client is a typed Go client for the taskforce backend service.
type Client struct {
	baseURL string
	opts    options
}

type response struct {
	status int
	body   []byte
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    o,
	}
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetSubtasks asks the backend to decompose description into subtasks.
func (c *Client) GetSubtasks(ctx context.Context, description string) ([]task.Subtask, error) {
	var out []task.Subtask
	if err := c.post(ctx, PathSubtasks, task.DescriptionRequest{Description: description}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOverallStructure asks the backend for a structure covering selected.
func (c *Client) GetOverallStructure(ctx context.Context, selected []task.Subtask) ([]task.StructureStep, error) {
	if selected == nil {
		selected = []task.Subtask{}
	}
	var out []task.StructureStep
	if err := c.post(ctx, PathStructure, task.SelectionRequest{SelectedSubtasks: selected}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	id, ok := RequestIDFromContext(ctx)
	if !ok {
		id = c.opts.requestID()
	}

	t := timeout.New[response](timeout.Config{DefaultTimeout: c.opts.timeout})
	resp, err := t.Execute(ctx, c.opts.timeout, func(ctx context.Context) (response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return response{}, &buildError{err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.opts.userAgent)
		req.Header.Set(RequestIDHeader, id)

		httpResp, err := c.opts.httpClient.Do(req)
		if err != nil {
			return response{}, &TransportError{Err: err}
		}
		defer func() { _ = httpResp.Body.Close() }()

		body, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return response{}, &TransportError{StatusCode: httpResp.StatusCode, Err: err}
		}
		return response{status: httpResp.StatusCode, body: body}, nil
	})
	if err != nil {
		var be *buildError
		if errors.As(err, &be) {
			return fmt.Errorf("build %s request: %w", path, be.err)
		}
		var te *TransportError
		if errors.As(err, &te) {
			return te
		}
		// Timeouts and cancellation end the round trip without a response.
		return &TransportError{Err: err}
	}
	return decode(resp, out)
}

type buildError struct{ err error }

func (e *buildError) Error() string { return e.err.Error() }

func decode(resp response, out any) error {
	trimmed := bytes.TrimSpace(resp.body)
	if resp.status < 200 || resp.status > 299 {
		if len(trimmed) == 0 {
			return &TransportError{StatusCode: resp.status, Err: ErrEmptyBody}
		}
		if !gjson.ValidBytes(trimmed) {
			return &TransportError{StatusCode: resp.status, Err: ErrMalformedBody}
		}
		se := &ServerError{StatusCode: resp.status}
		if msg := gjson.GetBytes(trimmed, "msg"); msg.Type == gjson.String {
			se.Msg = msg.Str
		}
		return se
	}

	if len(trimmed) == 0 {
		return &TransportError{StatusCode: resp.status, Err: ErrEmptyBody}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return &TransportError{StatusCode: resp.status, Err: fmt.Errorf("%w: %v", ErrMalformedBody, err)}
	}
	return nil
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.opts.timeout
}
