package session

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultTimeout is the inactivity window when none is configured.
const DefaultTimeout = 10 * time.Minute

// Watchdog fires onExpire after a period with no activity. At most one timer
// is pending; a timer superseded by Arm, Activity or Disarm never runs onExpire.
type Watchdog struct {
	clock    clock.Clock
	timeout  time.Duration
	onExpire func()
	outer    sync.Locker

	mu    sync.Mutex
	timer *clock.Timer
	armed bool
	gen   uint64
}

type WatchdogOption func(*Watchdog)

// WithLocker makes the expiry path hold l while it checks and runs onExpire.
// Callers that invoke Arm/Activity/Disarm under l get expiry serialized with
// them; onExpire must then not take l itself.
func WithLocker(l sync.Locker) WatchdogOption {
	return func(w *Watchdog) { w.outer = l }
}

func NewWatchdog(clk clock.Clock, timeout time.Duration, onExpire func(), opts ...WatchdogOption) *Watchdog {
	if clk == nil {
		clk = clock.New()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	w := &Watchdog{clock: clk, timeout: timeout, onExpire: onExpire}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Watchdog) Timeout() time.Duration { return w.timeout }

// Arm cancels any pending timer and starts a new one.
func (w *Watchdog) Arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.armLocked()
}

// Activity restarts the window. It does nothing while disarmed.
func (w *Watchdog) Activity() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.armed {
		w.armLocked()
	}
}

// Disarm cancels the pending timer.
func (w *Watchdog) Disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
	w.armed = false
}

func (w *Watchdog) Armed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.armed
}

func (w *Watchdog) armLocked() {
	w.stopLocked()
	w.armed = true
	gen := w.gen
	w.timer = w.clock.AfterFunc(w.timeout, func() { w.fire(gen) })
}

func (w *Watchdog) stopLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.gen++
}

func (w *Watchdog) fire(gen uint64) {
	if w.outer != nil {
		w.outer.Lock()
		defer w.outer.Unlock()
	}

	w.mu.Lock()
	if !w.armed || gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.armed = false
	w.timer = nil
	w.gen++
	w.mu.Unlock()

	if w.onExpire != nil {
		w.onExpire()
	}
}
