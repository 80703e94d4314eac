// Package api is the only gateway to the backend. It owns request plumbing,
// bearer auth, error mapping into the apperr taxonomy, and normalisation of
// list responses into one canonical slice shape.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skilltracker/skt/internal/apperr"
)

// Client talks to the backend API at a single configured origin.
type Client struct {
	baseURL  string
	http     *http.Client
	log      *zap.Logger
	validate *validator.Validate

	token string
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		log:      log,
		validate: validator.New(),
	}
}

// SetToken sets the bearer token attached to authenticated requests.
// Written only by the session lifecycle.
func (c *Client) SetToken(token string) {
	c.token = token
}

// do executes a JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(err, apperr.Fetch, "could not encode request")
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return apperr.Wrap(err, apperr.Fetch, "could not build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return apperr.Wrap(err, apperr.Fetch, "could not reach the server")
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return apperr.Wrap(err, apperr.Fetch, "could not read response")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := c.apiError(res.StatusCode, data)
		c.log.Warn("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", res.StatusCode),
			zap.String("detail", apiErr.Message),
		)
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return apperr.Wrap(err, apperr.Fetch, "could not decode response")
		}
	}
	return nil
}

// apiError maps a non-2xx response to a typed error, surfacing the backend
// detail message when one was present.
func (c *Client) apiError(status int, body []byte) *apperr.Error {
	detail := detailMessage(body)

	kind := apperr.Fetch
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = apperr.Auth
	}

	e := &apperr.Error{Kind: kind, Status: status, Message: detail}
	if detail == apperr.CodeAlreadyExists {
		e.Kind = apperr.Auth
		e.Code = apperr.CodeAlreadyExists
		e.Message = "an account with this email already exists"
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("request failed (%d)", status)
	}
	return e
}

// detailMessage pulls the "detail" field FastAPI-style backends return.
// Detail may be a plain string or a structured object.
func detailMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return string(payload.Detail)
}

// decodeList accepts either a bare JSON array or a [count, items] pair and
// returns the canonical slice. Nothing above this package ever sees the pair
// shape.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return nil, fmt.Errorf("unexpected list shape")
	}
	if err := json.Unmarshal(pair[1], &items); err != nil {
		return nil, fmt.Errorf("unexpected list shape: %w", err)
	}
	return items, nil
}

// getList fetches path and normalises the dual list shape.
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	items, err := decodeList[T](raw)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Fetch, "could not decode response")
	}
	return items, nil
}
