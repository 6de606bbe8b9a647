// Package stream owns the lifecycle of the single long-lived server event
// connection: opening it, decoding frames onto the event bus, and driving
// exponential-backoff reconnection when it drops.
package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"occtl/internal/logging"
	"occtl/internal/types"
)

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "idle"
	}
}

const (
	DefaultBaseDelay   = 1000 * time.Millisecond
	DefaultMaxAttempts = 5
)

// EventSource opens the raw SSE connection. The returned channel closes when
// the stream ends for any reason; the func aborts the underlying request.
type EventSource interface {
	OpenEvents(ctx context.Context) (<-chan json.RawMessage, func(), error)
}

// Publisher receives every decoded frame. Satisfied by *bus.Bus.
type Publisher interface {
	Publish(event types.StreamEvent)
}

type Options struct {
	BaseDelay   time.Duration
	MaxAttempts int
}

// Manager holds at most one live connection. Every retry timer is guarded by
// an epoch counter: Disconnect and Connect bump the epoch, so a stale timer
// firing afterwards cannot resurrect a dead connection.
type Manager struct {
	source      EventSource
	bus         Publisher
	log         logging.Logger
	baseDelay   time.Duration
	maxAttempts int

	mu         sync.Mutex
	state      State
	attempts   int
	epoch      uint64
	ctx        context.Context
	cancel     func()
	retryTimer *time.Timer
}

func NewManager(source EventSource, bus Publisher, log logging.Logger, opts Options) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Manager{
		source:      source,
		bus:         bus,
		log:         log,
		baseDelay:   baseDelay,
		maxAttempts: maxAttempts,
		state:       StateIdle,
	}
}

// Connect opens the event stream. Calling it while already connecting or
// connected is absorbed with a warning so racing callers stay idempotent.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateIdle {
		state := m.state
		m.mu.Unlock()
		m.log.Warn("event stream already connected or connecting",
			logging.F("state", state.String()))
		return nil
	}
	m.epoch++
	epoch := m.epoch
	m.stopRetryLocked()
	m.state = StateConnecting
	m.ctx = ctx
	m.mu.Unlock()

	return m.open(ctx, epoch)
}

// Disconnect aborts the transport, cancels any pending retry, and returns to
// idle with the attempt counter zeroed. Safe to call when already idle.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.epoch++
	m.stopRetryLocked()
	cancel := m.cancel
	m.cancel = nil
	m.ctx = nil
	wasIdle := m.state == StateIdle
	m.state = StateIdle
	m.attempts = 0
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if !wasIdle {
		m.log.Info("event stream disconnected")
	}
}

func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Attempts reports the current retry counter.
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func (m *Manager) open(ctx context.Context, epoch uint64) error {
	ch, cancel, err := m.source.OpenEvents(ctx)

	m.mu.Lock()
	if epoch != m.epoch {
		// Disconnected (or reconnected) while the open was in flight.
		m.mu.Unlock()
		if err == nil {
			cancel()
		}
		return nil
	}
	if err != nil {
		m.log.Error("failed to open event stream", logging.F("err", err))
		m.scheduleRetryLocked(epoch)
		m.mu.Unlock()
		return err
	}
	m.cancel = cancel
	m.state = StateConnected
	m.attempts = 0
	m.mu.Unlock()

	m.log.Info("event stream connected")
	go m.consume(ch, epoch)
	return nil
}

func (m *Manager) consume(ch <-chan json.RawMessage, epoch uint64) {
	for frame := range ch {
		m.dispatch(frame)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		// Explicit disconnect already handled the transition.
		return
	}
	m.log.Warn("event stream dropped")
	m.cancel = nil
	m.state = StateConnecting
	m.scheduleRetryLocked(epoch)
}

// dispatch decodes one frame and publishes it. Frames that do not decode or
// carry no type discriminator are dropped before any subscriber runs.
func (m *Manager) dispatch(frame json.RawMessage) {
	var event types.StreamEvent
	if err := json.Unmarshal(frame, &event); err != nil {
		m.log.Warn("dropping undecodable event frame", logging.F("err", err))
		return
	}
	if event.Type == "" {
		m.log.Warn("dropping event frame without type")
		return
	}
	if !event.Type.Known() {
		m.log.Debug("event of unknown type", logging.F("type", string(event.Type)))
	}
	m.bus.Publish(event)
}

func (m *Manager) scheduleRetryLocked(epoch uint64) {
	if m.attempts >= m.maxAttempts {
		m.log.Error("max reconnection attempts reached",
			logging.F("attempts", m.attempts))
		m.state = StateIdle
		m.attempts = 0
		m.ctx = nil
		return
	}
	m.attempts++
	attempt := m.attempts
	delay := retryDelay(m.baseDelay, attempt)
	m.log.Info("scheduling reconnection",
		logging.F("attempt", attempt),
		logging.F("delay", delay))
	m.retryTimer = time.AfterFunc(delay, func() {
		m.mu.Lock()
		if epoch != m.epoch || m.state != StateConnecting {
			m.mu.Unlock()
			return
		}
		ctx := m.ctx
		m.mu.Unlock()
		if ctx == nil || ctx.Err() != nil {
			return
		}
		if err := m.open(ctx, epoch); err != nil {
			m.log.Error("reconnection failed", logging.F("err", err))
		}
	})
}

// retryDelay is base * 2^(attempt-1): 1s, 2s, 4s, 8s, 16s at the defaults.
func retryDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

func (m *Manager) stopRetryLocked() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}
