// Package plugins dispatches pending work (C8) to an external plugin's
// webhook: storage.GetPendingPlugins names which plugins still owe
// processing for an entity, and Dispatcher.Notify POSTs that entity to each
// plugin's webhook_url. capidx never waits for or interprets the plugin's
// response beyond its status code — recording that processing actually
// happened is RecordProcessed's job, called by the plugin itself (or by an
// operator driving `capidx plugins pending`), not by this package.
//
// Grounded on the teacher's internal/linear.Client: a struct holding an
// *http.Client with a fixed timeout and an injectable client for tests
// (WithHTTPClient), retargeted from Linear's GraphQL POST to a plain JSON
// webhook POST. The teacher's internal/hooks.Runner contributes the
// fire-and-forget, best-effort shape (a hook/webhook failing must never
// block the caller's own operation).
package plugins

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/arkohut/pensieve/internal/types"
)

// DefaultTimeout bounds a single webhook call; a slow or hung plugin must
// not block the caller.
const DefaultTimeout = 10 * time.Second

// Dispatcher POSTs pending-processing notifications to plugin webhooks.
type Dispatcher struct {
	httpClient *http.Client
}

// NewDispatcher returns a Dispatcher using DefaultTimeout.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{httpClient: &http.Client{Timeout: DefaultTimeout}}
}

// WithHTTPClient returns a Dispatcher using the given client, for tests
// that need a mock transport or a different timeout.
func (d *Dispatcher) WithHTTPClient(c *http.Client) *Dispatcher {
	return &Dispatcher{httpClient: c}
}

// notifyPayload is the body POSTed to a plugin's webhook_url.
type notifyPayload struct {
	Entity types.Entity `json:"entity"`
}

// Notify POSTs entity to plugin.WebhookURL as JSON. A plugin with no
// webhook_url configured is silently skipped (polling-only plugins are
// expected to discover pending work via `capidx plugins pending` instead).
// Returns an error only for plugins that do have a webhook_url but could
// not be reached or responded outside the 2xx range.
func (d *Dispatcher) Notify(ctx context.Context, plugin *types.Plugin, entity *types.Entity) error {
	if plugin.WebhookURL == "" {
		return nil
	}

	body, err := json.Marshal(notifyPayload{Entity: *entity})
	if err != nil {
		return fmt.Errorf("plugins: encoding payload for %s: %w", plugin.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, plugin.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("plugins: building request for %s: %w", plugin.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("plugins: notifying %s: %w", plugin.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("plugins: %s webhook returned status %d", plugin.Name, resp.StatusCode)
	}
	return nil
}

// NotifyAll dispatches to every plugin in pending, continuing past
// individual failures and returning the first error (if any) after all
// have been attempted, so one unreachable plugin never hides failures from
// the others.
func (d *Dispatcher) NotifyAll(ctx context.Context, pending []*types.Plugin, entity *types.Entity) error {
	var firstErr error
	for _, p := range pending {
		if err := d.Notify(ctx, p, entity); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
