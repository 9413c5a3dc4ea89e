package service

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

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Field      string `json:"field,omitempty"`
	Value      string `json:"value,omitempty"`
}

// NewErrorResponse describes err for the API.
func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error(), Code: Code(err)}
	if ue, ok := errors.AsUserError(err); ok {
		resp.Error = ue.Message
		resp.Suggestion = ue.Suggestion
		resp.Field = ue.Field
		resp.Value = ue.Value
	}
	return resp
}

// EventRequest is the body of POST /events.
type EventRequest struct {
	Type   string `json:"type"`
	Device string `json:"device,omitempty"`
}

// Client implements Backend against the daemon's HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the API at addr (host:port or URL).
func NewClient(addr string, timeout time.Duration) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Addr returns the base URL of the API.
func (c *Client) Addr() string {
	return c.base
}

// Ping checks that the API answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewSystemErrorWithOp("api", "daemon API unreachable", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(data, &er); err != nil || er.Error == "" {
		return fmt.Errorf("daemon API returned HTTP %d", status)
	}
	if status >= 500 && status != http.StatusServiceUnavailable {
		return fmt.Errorf("daemon: %s", er.Error)
	}
	return &errors.UserError{
		Message:    er.Error,
		Suggestion: er.Suggestion,
		Field:      er.Field,
		Value:      er.Value,
		Cause:      Sentinel(er.Code),
	}
}

// Status implements Backend.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Devices implements Backend.
func (c *Client) Devices(ctx context.Context) ([]string, error) {
	var out struct {
		Devices []string `json:"devices"`
	}
	err := c.do(ctx, http.MethodGet, "/devices", nil, &out)
	return out.Devices, err
}

// AddDevice implements Backend.
func (c *Client) AddDevice(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/devices", map[string]string{"name": name}, nil)
}

// RemoveDevice implements Backend.
func (c *Client) RemoveDevice(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/devices/"+url.PathEscape(name), nil, nil)
}

// Rules implements Backend.
func (c *Client) Rules(ctx context.Context) ([]model.ScheduleRule, error) {
	var out struct {
		Rules []model.ScheduleRule `json:"rules"`
	}
	err := c.do(ctx, http.MethodGet, "/rules", nil, &out)
	return out.Rules, err
}

// AddRule implements Backend.
func (c *Client) AddRule(ctx context.Context, req RuleRequest) (model.ScheduleRule, error) {
	var rule model.ScheduleRule
	err := c.do(ctx, http.MethodPost, "/rules", req, &rule)
	return rule, err
}

// DeleteRule implements Backend.
func (c *Client) DeleteRule(ctx context.Context, id string) (model.ScheduleRule, error) {
	var rule model.ScheduleRule
	err := c.do(ctx, http.MethodDelete, "/rules/"+url.PathEscape(id), nil, &rule)
	return rule, err
}

// MigrateRules implements Backend.
func (c *Client) MigrateRules(ctx context.Context) (int, error) {
	var out struct {
		Migrated int `json:"migrated"`
	}
	err := c.do(ctx, http.MethodPost, "/rules/migrate", nil, &out)
	return out.Migrated, err
}

// CheckWindow implements Backend.
func (c *Client) CheckWindow(ctx context.Context, at time.Time) (bool, error) {
	path := "/rules/check"
	if !at.IsZero() {
		path += "?at=" + url.QueryEscape(at.Format(time.RFC3339))
	}
	var out struct {
		InWindow bool `json:"in_window"`
	}
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.InWindow, err
}

// Settings implements Backend.
func (c *Client) Settings(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := c.do(ctx, http.MethodGet, "/settings", nil, &s)
	return s, err
}

// UpdateSettings implements Backend.
func (c *Client) UpdateSettings(ctx context.Context, patch SettingsPatch) (model.Settings, error) {
	var s model.Settings
	err := c.do(ctx, http.MethodPut, "/settings", patch, &s)
	return s, err
}

// Webhooks implements Backend.
func (c *Client) Webhooks(ctx context.Context) ([]*model.Webhook, error) {
	var out struct {
		Webhooks []*model.Webhook `json:"webhooks"`
	}
	err := c.do(ctx, http.MethodGet, "/webhooks", nil, &out)
	return out.Webhooks, err
}

// AddWebhook implements Backend.
func (c *Client) AddWebhook(ctx context.Context, req WebhookRequest) (*model.Webhook, error) {
	var wh model.Webhook
	if err := c.do(ctx, http.MethodPost, "/webhooks", req, &wh); err != nil {
		return nil, err
	}
	return &wh, nil
}

// RemoveWebhook implements Backend.
func (c *Client) RemoveWebhook(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/webhooks/"+url.PathEscape(name), nil, nil)
}

// SetWebhookEnabled implements Backend.
func (c *Client) SetWebhookEnabled(ctx context.Context, name string, enabled bool) error {
	action := "disable"
	if enabled {
		action = "enable"
	}
	return c.do(ctx, http.MethodPost, "/webhooks/"+url.PathEscape(name)+"/"+action, nil, nil)
}

// TestWebhook implements Backend.
func (c *Client) TestWebhook(ctx context.Context, name string) (*TestResult, error) {
	var res TestResult
	if err := c.do(ctx, http.MethodPost, "/webhooks/"+url.PathEscape(name)+"/test", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Submit implements Backend. Actions go to /actions/{action}, everything
// else to /events.
func (c *Client) Submit(ctx context.Context, ev reminder.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if ev.Kind.IsAction() {
		return c.do(ctx, http.MethodPost, "/actions/"+string(ev.Kind), nil, nil)
	}
	return c.do(ctx, http.MethodPost, "/events", EventRequest{Type: string(ev.Kind), Device: ev.Device}, nil)
}
