package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"pulseboard/internal/prefs"
)

// DefaultDebounce is the quiet period after the last drag/resize before the
// layout is pushed to the store.
const DefaultDebounce = 500 * time.Millisecond

// Coordinator decides when dashboard state reaches the preference store.
//
// Two channels: SaveNow persists immediately after structural operations
// (add/remove/toggle) and may overlap with itself — each write is a full
// overwrite of the owned keys, so last-write-wins at the store is fine.
// NotifyGeometryChanged debounces the burst of saves a drag would otherwise
// cause; only one timer is ever pending, and re-notifying restarts it.
//
// Both channels read state through the snapshot accessor at fire time, never
// from a value captured when the save was scheduled. That is the one
// correctness-critical detail here: a closure over a stale document would
// silently revert edits made while a save was pending.
//
// Failures are logged and dropped. The in-memory configuration stays the
// source of truth for the session; there is no retry queue.
type Coordinator struct {
	snapshot func() prefs.Document
	store    prefs.Store
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	closed  bool

	// wg tracks in-flight writes so Close (and tests) can drain them.
	wg sync.WaitGroup
}

type CoordinatorOpts struct {
	// Snapshot must return the current configuration state. It is called on
	// the UI event loop, synchronously, at save-fire time.
	Snapshot func() prefs.Document
	Store    prefs.Store
	// Debounce defaults to DefaultDebounce when zero or negative.
	Debounce time.Duration
	Logger   *log.Logger
}

func NewCoordinator(opts CoordinatorOpts) *Coordinator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		snapshot: opts.Snapshot,
		store:    opts.Store,
		debounce: debounce,
		logger:   logger,
	}
}

// SaveNow snapshots the current state and writes it in the background.
// Called synchronously after structural operations so rapid sequences each
// capture their own up-to-date document.
func (c *Coordinator) SaveNow() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.write(c.snapshot())
}

// NotifyGeometryChanged (re)starts the debounce window. The eventual save
// reads the live state, so structural changes made inside the window are
// included.
func (c *Coordinator) NotifyGeometryChanged() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.pending = true
	if c.timer == nil {
		c.timer = time.AfterFunc(c.debounce, c.onTimer)
		return
	}
	c.timer.Reset(c.debounce)
}

func (c *Coordinator) onTimer() {
	c.mu.Lock()
	if c.closed || !c.pending {
		c.mu.Unlock()
		return
	}
	c.pending = false
	c.mu.Unlock()

	// Snapshot at fire time, not schedule time.
	c.write(c.snapshot())
}

func (c *Coordinator) write(doc prefs.Document) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.store.Write(ctx, doc); err != nil {
			// Best-effort: the user keeps their in-session view either way.
			c.logger.Warn("saving dashboard preferences failed", "err", err)
		}
	}()
}

// Pending reports whether a debounced save is scheduled but has not fired.
// Callers use it to avoid reloading from the store over unsaved local edits.
func (c *Coordinator) Pending() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Close cancels any pending debounce so no callback fires against a
// torn-down view, then waits for in-flight writes to finish.
func (c *Coordinator) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.closed = true
	c.pending = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Flush runs a synchronous save of the current state, used on clean
// shutdown so the last drag inside an unexpired debounce window is not lost.
func (c *Coordinator) Flush(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.store.Write(ctx, c.snapshot())
}

// SnapshotCell is the live reference the coordinator reads through.
//
// The UI loop publishes a fresh Config.Snapshot after every mutation; the
// debounce timer (which fires off the UI goroutine) loads whatever was
// published last. This keeps "read current state at fire time" true without
// putting a lock on the configuration itself.
type SnapshotCell struct {
	mu  sync.Mutex
	doc prefs.Document
}

func (s *SnapshotCell) Publish(doc prefs.Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

func (s *SnapshotCell) Load() prefs.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}
