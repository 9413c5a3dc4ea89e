package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/storage"
)

// Dispatcher sends notifications to all matching webhooks.
type Dispatcher struct {
	webhookRepo *storage.WebhookRepo
	httpClient  *HTTPClient
	queue       *RetryQueue
	inflight    sync.WaitGroup

	// mu orders Cancel against the enqueue of a failed in-flight send.
	mu      sync.Mutex
	seq     uint64
	sending map[int]map[uint64]context.CancelFunc
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher(webhookRepo *storage.WebhookRepo) *Dispatcher {
	return &Dispatcher{
		webhookRepo: webhookRepo,
		httpClient:  NewHTTPClient(),
		sending:     make(map[int]map[uint64]context.CancelFunc),
	}
}

// WithHTTPClient replaces the HTTP client.
func (d *Dispatcher) WithHTTPClient(c *HTTPClient) *Dispatcher {
	d.httpClient = c
	return d
}

// WithRetryQueue hands failed retryable deliveries to q.
func (d *Dispatcher) WithRetryQueue(q *RetryQueue) *Dispatcher {
	d.queue = q
	return d
}

// DispatchResult contains the result of dispatching to a single webhook.
type DispatchResult struct {
	WebhookName string
	Success     bool
	StatusCode  int
	Duration    time.Duration
	Error       error
}

// Notify implements Notifier. Delivery runs in the background so a slow
// webhook never delays the caller; Wait blocks until it finishes. The send
// outlives ctx and stops only when Cancel is called for the same id.
func (d *Dispatcher) Notify(ctx context.Context, n *model.Notification) error {
	sendCtx, release := d.track(ctx, n.ID)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		defer release()
		for _, r := range d.SendNotification(sendCtx, n) {
			if r.Error != nil && sendCtx.Err() == nil {
				logging.WarnContext(ctx, "webhook delivery failed",
					logging.KeyWebhook, r.WebhookName,
					logging.KeyStatus, r.StatusCode,
					logging.KeyError, r.Error)
			}
		}
	}()
	return nil
}

// track registers a cancellable send for id. The returned func must be
// called when the send is done.
func (d *Dispatcher) track(ctx context.Context, id int) (context.Context, func()) {
	sendCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	d.mu.Lock()
	d.seq++
	key := d.seq
	if d.sending[id] == nil {
		d.sending[id] = make(map[uint64]context.CancelFunc)
	}
	d.sending[id][key] = cancel
	d.mu.Unlock()

	return sendCtx, func() {
		d.mu.Lock()
		delete(d.sending[id], key)
		if len(d.sending[id]) == 0 {
			delete(d.sending, id)
		}
		d.mu.Unlock()
		cancel()
	}
}

// Cancel implements Notifier. A delivered webhook message cannot be
// retracted, so Cancel aborts sends still in flight for id and drops its
// queued retries.
func (d *Dispatcher) Cancel(ctx context.Context, id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	aborted := len(d.sending[id])
	for _, cancel := range d.sending[id] {
		cancel()
	}
	if aborted > 0 {
		logging.DebugContext(ctx, "aborted in-flight deliveries",
			logging.KeyNotification, id,
			logging.KeyCount, aborted)
	}

	if d.queue == nil {
		return nil
	}
	if dropped := d.queue.Drop(id); dropped > 0 {
		logging.DebugContext(ctx, "dropped queued deliveries",
			logging.KeyNotification, id,
			logging.KeyCount, dropped)
	}
	return nil
}

// Wait blocks until background deliveries started by Notify finish.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

// SendNotification sends a notification to every webhook that accepts it.
func (d *Dispatcher) SendNotification(ctx context.Context, n *model.Notification) []DispatchResult {
	webhooks, err := d.webhookRepo.ListFor(n)
	if err != nil {
		return []DispatchResult{{
			WebhookName: "all",
			Success:     false,
			Error:       fmt.Errorf("failed to list webhooks: %w", err),
		}}
	}

	if len(webhooks) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	results := make([]DispatchResult, len(webhooks))

	for i, webhook := range webhooks {
		wg.Add(1)
		go func(idx int, wh *model.Webhook) {
			defer wg.Done()
			results[idx] = d.sendToWebhook(ctx, n, wh)
		}(i, webhook)
	}

	wg.Wait()
	return results
}

func (d *Dispatcher) sendToWebhook(ctx context.Context, n *model.Notification, webhook *model.Webhook) DispatchResult {
	result := DispatchResult{WebhookName: webhook.Name}

	formatter := FormatterFor(webhook)
	payload, err := formatter.Format(n)
	if err != nil {
		result.Error = fmt.Errorf("failed to format notification: %w", err)
		d.updateWebhookStatus(webhook.Name, result.Error)
		return result
	}

	sendResult := d.httpClient.Send(ctx, webhook.URL, formatter.ContentType(), payload)

	result.StatusCode = sendResult.StatusCode
	result.Duration = sendResult.Duration
	result.Error = sendResult.Error
	result.Success = sendResult.Error == nil

	if sendResult.Error != nil && sendResult.Retryable && d.queue != nil {
		d.enqueueRetry(ctx, n, webhook, formatter.ContentType(), payload, sendResult.Error)
	}

	d.updateWebhookStatus(webhook.Name, sendResult.Error)
	return result
}

// enqueueRetry queues a failed delivery unless it was cancelled. Holding mu
// means a concurrent Cancel either sees the queued item or has already
// cancelled ctx.
func (d *Dispatcher) enqueueRetry(ctx context.Context, n *model.Notification, webhook *model.Webhook, contentType string, payload []byte, cause error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	d.queue.Enqueue(n.ID, webhook.Name, webhook.URL, contentType, payload,
		d.httpClient.maxRetries, cause)
}

// updateWebhookStatus records the delivery outcome. Failures here are not critical.
func (d *Dispatcher) updateWebhookStatus(name string, err error) {
	if uerr := d.webhookRepo.UpdateLastUsed(name, err); uerr != nil {
		logging.DebugLog("failed to update webhook status", logging.KeyWebhook, name, logging.KeyError, uerr)
	}
}

// SendToSingle sends a notification to a single webhook by name.
func (d *Dispatcher) SendToSingle(ctx context.Context, n *model.Notification, webhookName string) DispatchResult {
	webhook, err := d.webhookRepo.Get(webhookName)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			err = errors.ErrWebhookNotFound
		}
		return DispatchResult{
			WebhookName: webhookName,
			Success:     false,
			Error:       fmt.Errorf("webhook %q: %w", webhookName, err),
		}
	}

	return d.sendToWebhook(ctx, n, webhook)
}

// TestWebhook sends a test notification to a specific webhook.
func (d *Dispatcher) TestWebhook(ctx context.Context, webhookName string) DispatchResult {
	testNotification := model.NewNotification(
		model.NotifyTest,
		"babyreminder test",
		"This is a test notification. If you see this, your webhook is configured correctly!",
	).WithField("Webhook", webhookName).WithField("Time", time.Now().Format("3:04 PM"))

	return d.SendToSingle(ctx, testNotification, webhookName)
}

// CountEnabledWebhooks returns the number of enabled webhooks.
func (d *Dispatcher) CountEnabledWebhooks() int {
	webhooks, err := d.webhookRepo.List()
	if err != nil {
		return 0
	}
	count := 0
	for _, wh := range webhooks {
		if wh.Enabled {
			count++
		}
	}
	return count
}
