package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/manav03panchal/babyreminder/internal/config"
	"github.com/manav03panchal/babyreminder/internal/logging"
)

// QueuedNotification is a webhook delivery waiting to be retried.
type QueuedNotification struct {
	NotificationID int             `json:"notification_id"`
	WebhookName    string          `json:"webhook_name"`
	URL            string          `json:"url"`
	ContentType    string          `json:"content_type"`
	Body           json.RawMessage `json:"body"`
	CreatedAt      time.Time       `json:"created_at"`
	NextRetry      time.Time       `json:"next_retry"`
	Attempts       int             `json:"attempts"`
	MaxRetries     int             `json:"max_retries"`
	LastError      string          `json:"last_error,omitempty"`
}

// RetryQueue holds failed webhook deliveries. A delivery is replaced by a
// newer one for the same notification id and webhook, and dropped when the
// notification is cancelled.
type RetryQueue struct {
	mu       sync.RWMutex
	queue    []*QueuedNotification
	client   *HTTPClient
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	interval time.Duration

	totalQueued int
	totalSent   int
	totalFailed int
}

// NewRetryQueue creates a new retry queue with the given HTTP client.
func NewRetryQueue(client *HTTPClient) *RetryQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &RetryQueue{
		queue:    make([]*QueuedNotification, 0),
		client:   client,
		ctx:      ctx,
		cancel:   cancel,
		interval: config.Global.RetryQueue.CheckInterval,
	}
}

// Start begins processing the retry queue in the background.
func (q *RetryQueue) Start() {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	q.wg.Add(1)
	go q.processLoop()
}

// Stop stops the retry queue processor.
func (q *RetryQueue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
}

// Enqueue adds a failed delivery, replacing a queued one for the same
// notification and webhook.
func (q *RetryQueue) Enqueue(notificationID int, webhookName, url, contentType string, body []byte, maxRetries int, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item := &QueuedNotification{
		NotificationID: notificationID,
		WebhookName:    webhookName,
		URL:            url,
		ContentType:    contentType,
		Body:           body,
		CreatedAt:      time.Now(),
		NextRetry:      time.Now().Add(calculateBackoff(0)),
		MaxRetries:     maxRetries,
	}
	if err != nil {
		item.LastError = err.Error()
	}

	kept := q.queue[:0]
	for _, n := range q.queue {
		if n.NotificationID != notificationID || n.WebhookName != webhookName {
			kept = append(kept, n)
		}
	}
	q.queue = append(kept, item)
	q.totalQueued++

	logging.Info("notification queued for retry",
		logging.KeyWebhook, webhookName,
		logging.KeyNotification, notificationID,
		"queue_size", len(q.queue),
		logging.KeyError, err)
}

// Drop removes every queued delivery of a notification id.
func (q *RetryQueue) Drop(notificationID int) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.queue[:0]
	dropped := 0
	for _, n := range q.queue {
		if n.NotificationID == notificationID {
			dropped++
			continue
		}
		kept = append(kept, n)
	}
	q.queue = kept
	return dropped
}

func (q *RetryQueue) processLoop() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.processQueue()
		}
	}
}

// processQueue attempts to send all ready notifications.
func (q *RetryQueue) processQueue() {
	q.mu.Lock()
	now := time.Now()

	var ready []*QueuedNotification
	var remaining []*QueuedNotification

	for _, n := range q.queue {
		if !n.NextRetry.After(now) {
			ready = append(ready, n)
		} else {
			remaining = append(remaining, n)
		}
	}

	q.queue = remaining
	q.mu.Unlock()

	for _, n := range ready {
		q.processNotification(n)
	}
}

func (q *RetryQueue) processNotification(n *QueuedNotification) {
	n.Attempts++

	logging.DebugLog("retrying notification",
		logging.KeyWebhook, n.WebhookName,
		"attempt", n.Attempts,
		"max_retries", n.MaxRetries)

	result := q.client.Send(q.ctx, n.URL, n.ContentType, n.Body)

	if result.Error == nil {
		q.mu.Lock()
		q.totalSent++
		q.mu.Unlock()

		logging.Info("queued notification sent",
			logging.KeyWebhook, n.WebhookName,
			"attempts", n.Attempts,
			logging.KeyDuration, result.Duration.Milliseconds())
		return
	}

	n.LastError = result.Error.Error()

	if n.Attempts >= n.MaxRetries || !result.Retryable {
		q.mu.Lock()
		q.totalFailed++
		q.mu.Unlock()

		logging.Warn("notification failed after max retries",
			logging.KeyWebhook, n.WebhookName,
			"attempts", n.Attempts,
			logging.KeyError, result.Error)
		return
	}

	n.NextRetry = time.Now().Add(calculateBackoff(n.Attempts))

	q.mu.Lock()
	q.queue = append(q.queue, n)
	q.mu.Unlock()

	logging.DebugLog("notification re-queued",
		logging.KeyWebhook, n.WebhookName,
		"next_retry", n.NextRetry,
		"attempts", n.Attempts)
}

// calculateBackoff returns the backoff for the given attempt from the
// configured schedule, repeating its last step.
func calculateBackoff(attempt int) time.Duration {
	backoffs := config.Global.RetryQueue.BackoffSchedule
	if len(backoffs) == 0 {
		return time.Minute
	}
	if attempt >= len(backoffs) {
		return backoffs[len(backoffs)-1]
	}
	return backoffs[attempt]
}

// QueueStats returns statistics about the retry queue.
type QueueStats struct {
	QueueSize   int `json:"queue_size"`
	TotalQueued int `json:"total_queued"`
	TotalSent   int `json:"total_sent"`
	TotalFailed int `json:"total_failed"`
}

// Stats returns current queue statistics.
func (q *RetryQueue) Stats() QueueStats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return QueueStats{
		QueueSize:   len(q.queue),
		TotalQueued: q.totalQueued,
		TotalSent:   q.totalSent,
		TotalFailed: q.totalFailed,
	}
}

// Pending returns the number of pending notifications.
func (q *RetryQueue) Pending() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.queue)
}

// Clear removes all pending notifications from the queue.
func (q *RetryQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = make([]*QueuedNotification, 0)
}
