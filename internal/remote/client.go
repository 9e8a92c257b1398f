// Package remote talks to the todo persistence service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/Makepad-fr/tada/internal/model"
)

// Client is the set of calls the store makes against the service.
// Calls are not retried; failures unwrap to model.ErrValidation,
// model.ErrNetwork or model.ErrNotFound.
type Client interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, title string) (model.Todo, error)
	SetCompleted(ctx context.Context, id string, completed bool) (model.Todo, error)
	SetTitle(ctx context.Context, id, title string) (model.Todo, error)
	Delete(ctx context.Context, id string) error
}

const maxBodyBytes = 1 << 20

// Options configures an HTTPClient.
type Options struct {
	BaseURL string        // e.g. http://localhost:8080/api
	Timeout time.Duration // per request; 0 means no client-side limit
	Token   string        // sent as a bearer token when non-empty
	Doer    *http.Client  // optional, mainly for tests
	Logger  hclog.Logger
}

// HTTPClient implements Client against the JSON API rooted at BaseURL.
type HTTPClient struct {
	base  *url.URL
	token string
	http  *http.Client
	log   hclog.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient validates opts and builds a client.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, fmt.Errorf("%w: empty api url", model.ErrValidation)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: api url: %v", model.ErrValidation, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: api url must be http(s): %s", model.ErrValidation, raw)
	}
	hc := opts.Doer
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &HTTPClient{base: u, token: strings.TrimSpace(opts.Token), http: hc, log: log}, nil
}

func (c *HTTPClient) List(ctx context.Context) ([]model.Todo, error) {
	var out []model.Todo
	if err := c.do(ctx, "list", "", http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(out))
	for _, t := range out {
		if t.ID == "" {
			return nil, &model.OpError{Op: "list", Err: fmt.Errorf("%w: record without id", model.ErrNetwork)}
		}
		if _, dup := seen[t.ID]; dup {
			return nil, &model.OpError{Op: "list", Err: fmt.Errorf("%w: duplicate id %s", model.ErrNetwork, t.ID)}
		}
		seen[t.ID] = struct{}{}
	}
	if out == nil {
		out = []model.Todo{}
	}
	return out, nil
}

func (c *HTTPClient) Create(ctx context.Context, title string) (model.Todo, error) {
	var out model.Todo
	body := map[string]string{"title": title}
	if err := c.do(ctx, "create", "", http.MethodPost, body, &out); err != nil {
		return model.Todo{}, err
	}
	if out.ID == "" {
		return model.Todo{}, &model.OpError{Op: "create", Err: fmt.Errorf("%w: response without id", model.ErrNetwork)}
	}
	return out, nil
}

func (c *HTTPClient) SetCompleted(ctx context.Context, id string, completed bool) (model.Todo, error) {
	var out model.Todo
	body := map[string]bool{"completed": completed}
	if err := c.do(ctx, "set-completed", id, http.MethodPut, body, &out); err != nil {
		return model.Todo{}, err
	}
	return withID(out, id), nil
}

func (c *HTTPClient) SetTitle(ctx context.Context, id, title string) (model.Todo, error) {
	var out model.Todo
	body := map[string]string{"title": title}
	if err := c.do(ctx, "set-title", id, http.MethodPut, body, &out); err != nil {
		return model.Todo{}, err
	}
	return withID(out, id), nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", id, http.MethodDelete, nil, nil)
}

// some backends answer updates without echoing the id
func withID(t model.Todo, id string) model.Todo {
	if t.ID == "" {
		t.ID = id
	}
	return t
}

func (c *HTTPClient) endpoint(id string) string {
	u := strings.TrimRight(c.base.String(), "/") + "/todos"
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (c *HTTPClient) do(ctx context.Context, op, id, method string, in, out any) error {
	fail := func(err error) error { return &model.OpError{Op: op, ID: id, Err: err} }

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fail(fmt.Errorf("%w: encode request: %v", model.ErrValidation, err))
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(id), body)
	if err != nil {
		return fail(fmt.Errorf("%w: build request: %v", model.ErrNetwork, err))
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "op", op, "id", id, "request_id", reqID, "error", err)
		return fail(fmt.Errorf("%w: %v", model.ErrNetwork, err))
	}
	defer resp.Body.Close()
	c.log.Debug("request done", "op", op, "id", id, "request_id", reqID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail(fmt.Errorf("%w: read response: %v", model.ErrNetwork, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(statusError(resp.StatusCode, data))
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		if out != nil {
			return fail(fmt.Errorf("%w: empty response body", model.ErrNetwork))
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(fmt.Errorf("%w: decode response: %v", model.ErrNetwork, err))
	}
	return nil
}

func statusError(status int, body []byte) error {
	kind := model.ErrNetwork
	switch status {
	case http.StatusNotFound:
		kind = model.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = model.ErrValidation
	}
	msg := http.StatusText(status)
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Error != "" {
			msg = e.Error
		} else if e.Message != "" {
			msg = e.Message
		}
	}
	return fmt.Errorf("%w: %d %s", kind, status, msg)
}
