package cv

import (
	"context"
	"sync"
	"time"
)

// AutosaveState is the autosave state machine position.
type AutosaveState string

const (
	AutosaveIdle    AutosaveState = "idle"
	AutosaveDirty   AutosaveState = "dirty"
	AutosaveSaving  AutosaveState = "saving"
	AutosaveBackoff AutosaveState = "backoff"
	AutosavePaused  AutosaveState = "paused"
)

// DefaultAutosaveDelay is the debounce after the last mutation.
const DefaultAutosaveDelay = 1500 * time.Millisecond

// AutosaveConfig configures debounce and retry behaviour.
type AutosaveConfig struct {
	Delay       time.Duration
	Backoff     Backoff
	SaveTimeout time.Duration
}

// Autosaver debounces store mutations into saves and retries failures with
// exponential backoff. It owns at most one pending timer.
type Autosaver struct {
	Logger Logger

	store   *Store
	clock   Clock
	cfg     AutosaveConfig
	baseCtx context.Context

	mu          sync.Mutex
	state       AutosaveState
	timer       Timer
	gen         uint64
	failures    int
	lastErr     error
	stopped     bool
	unsubscribe func()
	listeners   []func(AutosaveState)
	notify      []AutosaveState
	inflight    *saveCall
}

// saveCall is a store save issued by the autosaver. err is set before
// done is closed.
type saveCall struct {
	done chan struct{}
	err  error
}

// NewAutosaver creates an autosaver for store. A nil clock uses SystemClock.
func NewAutosaver(store *Store, cfg AutosaveConfig, clock Clock) *Autosaver {
	if clock == nil {
		clock = SystemClock{}
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultAutosaveDelay
	}
	if cfg.Backoff == (Backoff{}) {
		cfg.Backoff = DefaultBackoff()
	}
	return &Autosaver{
		Logger:  NopLogger{},
		store:   store,
		clock:   clock,
		cfg:     cfg,
		baseCtx: context.Background(),
		state:   AutosaveIdle,
	}
}

// Start subscribes to store changes. ctx bounds timer-driven saves.
func (a *Autosaver) Start(ctx context.Context) {
	if a == nil || a.store == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	a.mu.Lock()
	a.baseCtx = ctx
	a.stopped = false
	if a.unsubscribe == nil {
		a.unsubscribe = a.store.Subscribe(a.onEvent)
	}
	dirty := a.store.Status().HasUnsavedChanges
	if dirty && a.state == AutosaveIdle {
		a.setStateLocked(AutosaveDirty)
		a.scheduleLocked(a.cfg.Delay)
	}
	a.unlock()
}

// Stop cancels the pending timer and detaches from the store.
func (a *Autosaver) Stop() {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.stopped = true
	a.cancelLocked()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// State returns the current state.
func (a *Autosaver) State() AutosaveState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Failures returns the consecutive failure count.
func (a *Autosaver) Failures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failures
}

// LastError returns the most recent save error.
func (a *Autosaver) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// OnStateChange registers fn to observe transitions.
func (a *Autosaver) OnStateChange(fn func(AutosaveState)) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

// Flush saves immediately, cancelling any pending debounce or backoff.
func (a *Autosaver) Flush(ctx context.Context) error {
	if a == nil || a.store == nil {
		return NewError(KindInternal, "autosaver is not configured", nil)
	}
	return a.save(ctx, 0, true)
}

// Resume leaves the paused state and retries right away.
func (a *Autosaver) Resume() {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.unlock()
	if a.state != AutosavePaused {
		return
	}
	a.failures = 0
	a.lastErr = nil
	a.setStateLocked(AutosaveDirty)
	a.scheduleLocked(0)
}

func (a *Autosaver) onEvent(evt Event) {
	switch evt.Type {
	case EventChanged, EventReset:
	case EventLoaded:
		a.mu.Lock()
		if !evt.Status.HasUnsavedChanges && a.state != AutosaveSaving {
			a.cancelLocked()
			a.failures = 0
			a.setStateLocked(AutosaveIdle)
		}
		a.unlock()
		return
	default:
		return
	}

	a.mu.Lock()
	defer a.unlock()
	if a.stopped {
		return
	}
	switch a.state {
	case AutosaveIdle, AutosaveDirty:
		a.setStateLocked(AutosaveDirty)
		a.scheduleLocked(a.cfg.Delay)
	}
	// Saving re-evaluates when the save returns; Backoff keeps its retry
	// timer; Paused waits for Resume.
}

func (a *Autosaver) scheduleLocked(d time.Duration) {
	a.cancelLocked()
	gen := a.gen
	base := a.baseCtx
	a.timer = a.clock.AfterFunc(d, func() {
		ctx := base
		if a.cfg.SaveTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.cfg.SaveTimeout)
			defer cancel()
		}
		_ = a.save(ctx, gen, false)
	})
}

func (a *Autosaver) cancelLocked() {
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// save runs one store save. Only the caller that issued the save counts
// its failure; a Flush that overlaps a running save waits for it instead.
func (a *Autosaver) save(ctx context.Context, gen uint64, force bool) error {
	a.mu.Lock()
	for a.inflight != nil {
		if !force {
			a.mu.Unlock()
			return nil
		}
		call := a.inflight
		a.mu.Unlock()
		select {
		case <-call.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		if call.err != nil {
			return call.err
		}
		if !a.store.Status().HasUnsavedChanges {
			return nil
		}
		a.mu.Lock()
	}
	if !force && gen != a.gen {
		a.mu.Unlock()
		return nil
	}
	a.cancelLocked()
	call := &saveCall{done: make(chan struct{})}
	a.inflight = call
	a.setStateLocked(AutosaveSaving)
	a.unlock()

	err := a.store.Save(ctx)

	a.mu.Lock()
	defer a.unlock()
	a.inflight = nil
	call.err = err
	close(call.done)
	if err != nil {
		a.failures++
		a.lastErr = err
		if a.cfg.Backoff.Exhausted(a.failures) {
			a.logger().Errorf("cv: autosave paused after %d failures: %v", a.failures, err)
			a.setStateLocked(AutosavePaused)
			return err
		}
		delay := a.cfg.Backoff.Delay(a.failures)
		a.logger().Infof("cv: autosave failed (attempt %d), retrying in %s: %v", a.failures, delay, err)
		a.setStateLocked(AutosaveBackoff)
		if !a.stopped {
			a.scheduleLocked(delay)
		}
		return err
	}

	a.failures = 0
	a.lastErr = nil
	if a.store.Status().HasUnsavedChanges {
		a.setStateLocked(AutosaveDirty)
		if !a.stopped {
			a.scheduleLocked(a.cfg.Delay)
		}
		return nil
	}
	a.setStateLocked(AutosaveIdle)
	return nil
}

func (a *Autosaver) setStateLocked(state AutosaveState) {
	if a.state == state {
		return
	}
	a.state = state
	a.notify = append(a.notify, state)
}

// unlock releases a.mu and then delivers the transitions queued while it
// was held, so listeners may call back into the autosaver.
func (a *Autosaver) unlock() {
	states := a.notify
	a.notify = nil
	var listeners []func(AutosaveState)
	if len(states) > 0 {
		listeners = append(listeners, a.listeners...)
	}
	a.mu.Unlock()
	for _, state := range states {
		for _, fn := range listeners {
			fn(state)
		}
	}
}

func (a *Autosaver) logger() Logger {
	if a.Logger == nil {
		return NopLogger{}
	}
	return a.Logger
}
