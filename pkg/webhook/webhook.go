// Package webhook posts install outcome notifications to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/logging"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// EventType names an install outcome a hook can subscribe to.
type EventType string

const (
	EventInstallComplete EventType = "install.complete"
	EventInstallFailed   EventType = "install.failed"
	EventAll             EventType = "*"
)

// Event is the JSON payload posted to hooks.
type Event struct {
	Event         EventType          `json:"event"`
	Timestamp     string             `json:"timestamp"`
	InstallID     string             `json:"install_id"`
	Destination   string             `json:"destination"`
	State         model.InstallState `json:"state"`
	StagedEntries int                `json:"staged_entries"`
	DriverSkips   []string           `json:"driver_skips,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// HookConfig is one endpoint.
type HookConfig struct {
	URL    string      `yaml:"url"`
	Secret string      `yaml:"secret,omitempty"`
	Events []EventType `yaml:"events"`
}

// Config configures delivery.
type Config struct {
	Hooks      []HookConfig  `yaml:"hooks,omitempty"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Timeout    time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a configuration without hooks.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		Timeout:    10 * time.Second,
	}
}

// Notifier delivers events synchronously with retries.
type Notifier struct {
	cfg  Config
	http *http.Client
	log  *logging.Logger
}

// NewNotifier returns a Notifier for cfg. A zero timeout falls back to the
// default.
func NewNotifier(cfg Config, log *logging.Logger) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if log == nil {
		log = logging.Global()
	}
	return &Notifier{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, log: log}
}

// EventFromReport builds the event for a finished install.
func EventFromReport(report *model.InstallReport) Event {
	ev := Event{
		Event:         EventInstallComplete,
		InstallID:     report.InstallID,
		Destination:   report.Destination,
		State:         report.State,
		StagedEntries: report.StagedEntries,
		DriverSkips:   report.DriverSkips,
		Error:         report.Error,
	}
	if !report.State.Terminal() {
		ev.Event = EventInstallFailed
	}
	return ev
}

// NotifyInstall posts the outcome of report to every subscribed hook.
// Delivery failures are logged and the last one is returned.
func (n *Notifier) NotifyInstall(ctx context.Context, report *model.InstallReport) error {
	if report == nil {
		return nil
	}
	return n.Send(ctx, EventFromReport(report))
}

// Send posts ev to every hook subscribed to its type.
func (n *Notifier) Send(ctx context.Context, ev Event) error {
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var lastErr error
	for _, hook := range n.cfg.Hooks {
		if !subscribed(hook, ev.Event) {
			continue
		}
		if err := n.deliver(ctx, hook, payload); err != nil {
			n.log.Warn("webhook delivery failed", map[string]any{
				"url":   hook.URL,
				"event": string(ev.Event),
				"error": err.Error(),
			})
			lastErr = err
		}
	}
	return lastErr
}

func (n *Notifier) deliver(ctx context.Context, hook HookConfig, payload []byte) error {
	var lastErr error
	for attempt := 0; attempt <= n.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.cfg.RetryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "shimctl-webhook/1.0")
		if hook.Secret != "" {
			req.Header.Set("X-Shimctl-Signature", Sign(payload, hook.Secret))
		}

		resp, err := n.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("http %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return lastErr
}

// Sign returns the HMAC-SHA256 signature header value for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func subscribed(hook HookConfig, ev EventType) bool {
	for _, e := range hook.Events {
		if e == ev || e == EventAll {
			return true
		}
	}
	return false
}
