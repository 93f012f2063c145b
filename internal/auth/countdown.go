package auth

import (
	"sync"
	"time"

	"github.com/thejerf/abtime"

	"lodgeportal/cli/internal/task"
)

// DefaultResendWindow is how long the resend action stays disabled after a code is sent.
const DefaultResendWindow = 30 * time.Second

// CountdownTimerID identifies the countdown expiry timer on manual clocks.
const CountdownTimerID = 1001

// Countdown is the resend-code timer: a fixed window measured on a monotonic clock.
// It is a UI affordance only; a running countdown does not invalidate any code.
type Countdown struct {
	mu       sync.Mutex
	clock    abtime.AbstractTime
	window   time.Duration
	deadline time.Time
	running  bool

	scope    *task.Scope
	onExpire func()
}

// NewCountdown returns a stopped countdown. A non-positive window uses DefaultResendWindow.
func NewCountdown(clock abtime.AbstractTime, window time.Duration) *Countdown {
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	if window <= 0 {
		window = DefaultResendWindow
	}
	return &Countdown{clock: clock, window: window}
}

// Bind arms onExpire on scope each time the countdown starts. Closing the scope cancels
// a pending expiry, so no callback outlives the screen that asked for it.
func (c *Countdown) Bind(scope *task.Scope, onExpire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scope = scope
	c.onExpire = onExpire
}

// Window returns the configured window.
func (c *Countdown) Window() time.Duration { return c.window }

// Start (re)starts the countdown from the full window.
func (c *Countdown) Start() {
	c.mu.Lock()
	c.deadline = c.clock.Now().Add(c.window)
	c.running = true
	scope, onExpire := c.scope, c.onExpire
	c.mu.Unlock()

	if scope != nil && onExpire != nil {
		scope.AfterFunc(CountdownTimerID, c.window, onExpire)
	}
}

// Remaining returns the time left, zero when expired or stopped.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0
	}
	left := c.deadline.Sub(c.clock.Now())
	if left <= 0 {
		return 0
	}
	return left
}

// Ready reports whether the resend action is enabled.
func (c *Countdown) Ready() bool {
	return c.Remaining() == 0
}

// Stop disarms the countdown and its expiry callback.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.running = false
	scope := c.scope
	c.mu.Unlock()

	if scope != nil {
		scope.StopTimer(CountdownTimerID)
	}
}
