package cv

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward, firing due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.fn()
	}
}

func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// flakyPersistence fails the next N saves.
type flakyPersistence struct {
	*MemoryPersistence
	mu       sync.Mutex
	failNext int
	attempts int
}

func (p *flakyPersistence) Save(ctx context.Context, doc Document) error {
	p.mu.Lock()
	p.attempts++
	if p.failNext > 0 {
		p.failNext--
		p.mu.Unlock()
		return errors.New("backend unavailable")
	}
	p.mu.Unlock()
	return p.MemoryPersistence.Save(ctx, doc)
}

func (p *flakyPersistence) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

// blockingPersistence parks each save until released.
type blockingPersistence struct {
	*MemoryPersistence
	entered chan Document
	release chan struct{}
}

func newBlockingPersistence() *blockingPersistence {
	return &blockingPersistence{
		MemoryPersistence: NewMemoryPersistence(),
		entered:           make(chan Document, 8),
		release:           make(chan struct{}),
	}
}

func (p *blockingPersistence) Save(ctx context.Context, doc Document) error {
	p.entered <- doc
	select {
	case <-p.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.MemoryPersistence.Save(ctx, doc)
}

// stalledFailingPersistence parks each save until released, then fails it.
type stalledFailingPersistence struct {
	*MemoryPersistence
	mu       sync.Mutex
	attempts int
	entered  chan struct{}
	release  chan struct{}
}

func newStalledFailingPersistence() *stalledFailingPersistence {
	return &stalledFailingPersistence{
		MemoryPersistence: NewMemoryPersistence(),
		entered:           make(chan struct{}, 8),
		release:           make(chan struct{}),
	}
}

func (p *stalledFailingPersistence) Save(ctx context.Context, doc Document) error {
	p.mu.Lock()
	p.attempts++
	p.mu.Unlock()
	p.entered <- struct{}{}
	<-p.release
	return errors.New("network unreachable")
}

func (p *stalledFailingPersistence) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

type stubRenderer struct {
	payload string
	err     error
	gate    chan struct{}
	started chan struct{}
	last    PDFRequest
}

func (r *stubRenderer) Render(ctx context.Context, req PDFRequest, w io.Writer, progress ProgressFunc) error {
	r.last = req
	if r.started != nil {
		close(r.started)
	}
	if r.gate != nil {
		<-r.gate
	}
	if progress != nil {
		progress(50, "render")
		progress(100, "render")
	}
	if r.err != nil {
		return r.err
	}
	_, err := io.WriteString(w, r.payload)
	return err
}

func validPersonal() Personal {
	return Personal{
		FullName: "Jane Byrne",
		Title:    "Software Engineer",
		Email:    "jane@example.ie",
		Phone:    "+353 87 123 4567",
		Address:  "12 Main Street, Dublin 2",
	}
}

func newTestStore(t *testing.T) (*Store, *MemoryPersistence) {
	t.Helper()
	persistence := NewMemoryPersistence()
	store := NewStore(NewDocument("doc-1"), persistence, NewExporter(&stubRenderer{payload: "%PDF-1.7"}))
	store.Now = newFakeClock().Now
	return store, persistence
}

func requireField(t *testing.T, err error, field, contains string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error for %s", field)
	}
	if KindFromError(err) != KindValidation {
		t.Fatalf("expected validation kind, got %s (%v)", KindFromError(err), err)
	}
	for _, fe := range FieldErrors(err) {
		if fe.Field == field && strings.Contains(fe.Message, contains) {
			return
		}
	}
	t.Fatalf("expected field %s with %q, got %v", field, contains, FieldErrors(err))
}
