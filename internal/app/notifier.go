package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jlcastillov/crm-console/internal/api"
	"github.com/jlcastillov/crm-console/internal/store"
)

// Poller fetches the notification feed for a user on a fixed interval. The
// first fetch happens immediately on Start; subsequent fetches follow the
// interval until the context is cancelled. A failed tick is logged and the
// poller keeps going.
type Poller struct {
	client   api.Client
	userID   int64
	interval time.Duration
	logger   *log.Logger
	onFeed   func(*store.NotificationFeed)

	mu     sync.Mutex
	unread int
}

// NewPoller builds a poller. interval <= 0 falls back to one minute.
func NewPoller(client api.Client, userID int64, interval time.Duration, logger *log.Logger, onFeed func(*store.NotificationFeed)) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[Poller] ", log.LstdFlags)
	}
	return &Poller{
		client:   client,
		userID:   userID,
		interval: interval,
		logger:   logger,
		onFeed:   onFeed,
	}
}

// Start runs the poll loop until ctx is cancelled. It blocks; run it on its
// own goroutine.
func (p *Poller) Start(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	res := p.client.FetchNotifications(ctx, p.userID)
	if !res.Success {
		p.logger.Printf("Notification poll failed: %s", res.ErrorMessage)
		return
	}

	p.mu.Lock()
	p.unread = res.Data.Unread
	p.mu.Unlock()

	if p.onFeed != nil {
		p.onFeed(res.Data)
	}
}

// Unread returns the last known unread count.
func (p *Poller) Unread() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unread
}

// MarkRead marks one notification read and decrements the local unread
// counter, never below zero. The counter resyncs on the next poll. A failed
// call leaves the counter untouched and returns the backend message for the
// caller to show.
func (p *Poller) MarkRead(ctx context.Context, id int64) error {
	res := p.client.MarkNotificationRead(ctx, id)
	if !res.Success {
		p.logger.Printf("Failed to mark notification %d read: %s", id, res.ErrorMessage)
		return errors.New(res.ErrorMessage)
	}
	if res.Data {
		p.mu.Lock()
		if p.unread > 0 {
			p.unread--
		}
		p.mu.Unlock()
	}
	return nil
}
