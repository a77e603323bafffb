package app

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/jlcastillov/crm-console/internal/store"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestPollerFetchesImmediately(t *testing.T) {
	client := newStubClient()
	client.feed = &store.NotificationFeed{Unread: 3}

	got := make(chan *store.NotificationFeed, 1)
	p := NewPoller(client, 1, time.Hour, testLogger(), func(f *store.NotificationFeed) {
		got <- f
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Start(ctx)

	select {
	case f := <-got:
		if f.Unread != 3 {
			t.Errorf("expected unread 3 in feed, got %d", f.Unread)
		}
	case <-time.After(time.Second):
		t.Fatal("first fetch did not happen before the interval elapsed")
	}
	if p.Unread() != 3 {
		t.Errorf("expected unread counter 3, got %d", p.Unread())
	}
}

func TestPollerTicksOnInterval(t *testing.T) {
	client := newStubClient()
	got := make(chan *store.NotificationFeed, 16)
	p := NewPoller(client, 1, 10*time.Millisecond, testLogger(), func(f *store.NotificationFeed) {
		got <- f
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Start(ctx)

	for i := 0; i < 3; i++ {
		select {
		case <-got:
		case <-time.After(time.Second):
			t.Fatalf("only %d fetches before timeout", i)
		}
	}
}

func TestPollerSurvivesFailedTick(t *testing.T) {
	client := newStubClient()
	client.failFetch = true
	p := NewPoller(client, 1, 10*time.Millisecond, testLogger(), func(*store.NotificationFeed) {
		t.Error("failed fetch must not reach the feed callback")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Start(ctx)

	deadline := time.After(time.Second)
	for client.callCount("FetchNotifications") < 3 {
		select {
		case <-deadline:
			t.Fatal("poller stopped retrying after failures")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPollerStopsOnCancel(t *testing.T) {
	client := newStubClient()
	p := NewPoller(client, 1, 10*time.Millisecond, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on context cancel")
	}

	n := client.callCount("FetchNotifications")
	time.Sleep(50 * time.Millisecond)
	if got := client.callCount("FetchNotifications"); got != n {
		t.Errorf("poller kept fetching after stop: %d -> %d", n, got)
	}
}

func TestMarkReadDecrementsWithFloor(t *testing.T) {
	client := newStubClient()
	client.feed = &store.NotificationFeed{Unread: 1}
	p := NewPoller(client, 1, time.Hour, testLogger(), nil)
	p.poll(context.Background())

	if err := p.MarkRead(context.Background(), 10); err != nil {
		t.Fatal(err)
	}
	if p.Unread() != 0 {
		t.Errorf("expected unread 0 after mark, got %d", p.Unread())
	}

	// Marking again never pushes the counter negative
	if err := p.MarkRead(context.Background(), 11); err != nil {
		t.Fatal(err)
	}
	if p.Unread() != 0 {
		t.Errorf("unread counter went below zero: %d", p.Unread())
	}
}

func TestMarkReadFailureLeavesCounterUntouched(t *testing.T) {
	client := newStubClient()
	client.feed = &store.NotificationFeed{Unread: 2}
	client.failMarkRead = true
	p := NewPoller(client, 1, time.Hour, testLogger(), nil)
	p.poll(context.Background())

	err := p.MarkRead(context.Background(), 10)
	if err == nil {
		t.Fatal("expected the backend failure to surface as an error")
	}
	if err.Error() != "db unavailable" {
		t.Errorf("expected the backend message, got %q", err.Error())
	}
	if p.Unread() != 2 {
		t.Errorf("failed mark must not change the counter, got %d", p.Unread())
	}
}

func TestMarkReadSkipsDecrementWhenAlreadyRead(t *testing.T) {
	client := newStubClient()
	client.feed = &store.NotificationFeed{Unread: 2}
	client.markReadResult = false // backend says the row was already read
	p := NewPoller(client, 1, time.Hour, testLogger(), nil)
	p.poll(context.Background())

	if err := p.MarkRead(context.Background(), 10); err != nil {
		t.Fatal(err)
	}
	if p.Unread() != 2 {
		t.Errorf("expected unread unchanged at 2, got %d", p.Unread())
	}
}
