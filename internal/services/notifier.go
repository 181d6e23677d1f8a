package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/trackline-dev/trackline/internal/store"
	"gorm.io/gorm"
)

// ActivityData is the activity snapshot carried in webhook envelopes.
type ActivityData struct {
	ID         uint    `json:"id"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	AssignedTo *string `json:"assigned_to"`
}

type WebhookEnvelope struct {
	Event     string       `json:"event"`
	Activity  ActivityData `json:"activity"`
	Timestamp time.Time    `json:"timestamp"`
}

type notification struct {
	ownerID uint
	event   string
	data    ActivityData
}

// Notifier delivers webhook notifications best-effort. Deliveries run on a
// dispatcher goroutine fed by a bounded queue, so a slow endpoint never
// holds up the request that triggered it. Failures are logged and dropped;
// nothing is retried.
type Notifier struct {
	db     *gorm.DB
	client *http.Client
	queue  chan notification
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

const (
	notifierQueueSize  = 256
	webhookPostTimeout = 5 * time.Second
)

func NewNotifier(gdb *gorm.DB) *Notifier {
	ctx, cancel := context.WithCancel(context.Background())

	return &Notifier{
		db:     gdb,
		client: &http.Client{Timeout: webhookPostTimeout},
		queue:  make(chan notification, notifierQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the dispatch goroutine.
func (n *Notifier) Start() {
	n.wg.Add(1)

	go func() {
		defer n.wg.Done()

		for {
			select {
			case <-n.ctx.Done():
				return
			case item := <-n.queue:
				n.dispatch(item)
			}
		}
	}()
}

// Stop drains nothing; queued notifications are best-effort and may be lost
// on shutdown.
func (n *Notifier) Stop() {
	n.cancel()
	n.wg.Wait()
}

// Notify enqueues a notification without blocking. A full queue drops the
// event with a log line rather than stalling the caller.
func (n *Notifier) Notify(ownerID uint, event string, data ActivityData) {
	select {
	case n.queue <- notification{ownerID: ownerID, event: event, data: data}:
	default:
		log.Printf("Notification queue full, dropping %s for activity %d", event, data.ID)
	}
}

func (n *Notifier) dispatch(item notification) {
	webhooks, err := store.WebhooksForEvent(n.db, item.ownerID, item.event)

	if err != nil {
		log.Printf("Failed to load webhooks for owner %d: %v", item.ownerID, err)
		return
	}

	envelope := WebhookEnvelope{
		Event:     item.event,
		Activity:  item.data,
		Timestamp: time.Now().UTC(),
	}

	for _, webhook := range webhooks {
		if err := n.post(webhook.URL, envelope); err != nil {
			log.Printf("Webhook %s failed: %v", webhook.URL, err)
		}
	}
}

func (n *Notifier) post(url string, envelope WebhookEnvelope) error {
	body, err := json.Marshal(envelope)

	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(n.ctx, http.MethodPost, url, bytes.NewReader(body))

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)

	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
