package supervisor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/pkg/logger"
)

const (
	_defaultReconnectDelay = 10 * time.Second
	_saveTimeout           = 10 * time.Second
)

// Connector is the transport side the supervisor drives.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect()
	SaveCredentials(ctx context.Context) error
}

// Timer is a pending reconnect that can be cancelled.
type Timer interface {
	Stop() bool
}

// Supervisor tracks the connection state machine connecting -> open -> close
// and owns the single pending reconnect timer.
type Supervisor struct {
	conn   Connector
	logger logger.Interface

	reconnectDelay time.Duration
	afterFunc      func(time.Duration, func()) Timer

	mu      sync.RWMutex
	state   entity.ConnectionState
	pending Timer
	stopped bool

	loggedOut     chan struct{}
	loggedOutOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(conn Connector, l logger.Interface, opts ...Option) *Supervisor {
	s := &Supervisor{
		conn:           conn,
		logger:         l,
		reconnectDelay: _defaultReconnectDelay,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		state:     entity.Closed,
		loggedOut: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the first connection. A failed first attempt is retried like any drop.
func (s *Supervisor) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("Supervisor - Start - supervisor already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.connect()

	return nil
}

// LoggedOut is closed once the session has been logged out.
func (s *Supervisor) LoggedOut() <-chan struct{} {
	return s.loggedOut
}

// State is read by the readiness probe.
func (s *Supervisor) State() entity.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

func (s *Supervisor) HandleConnected() {
	s.setState(entity.Open)
	s.logger.Info("Supervisor - HandleConnected - bot is ready")
}

func (s *Supervisor) HandleDisconnected(reason entity.DisconnectReason) {
	s.setState(entity.Closed)

	// разлогин: без автоповтора, сессия удалена, привязка заново после перезапуска
	if reason == entity.ReasonLoggedOut {
		s.CancelReconnect()
		s.logger.Warn("Supervisor - HandleDisconnected - logged out, restart to link the device again")
		s.loggedOutOnce.Do(func() { close(s.loggedOut) })

		return
	}

	if s.ScheduleReconnect() {
		s.logger.Warn("Supervisor - HandleDisconnected - %s, reconnecting in %s", reason, s.reconnectDelay)
	}
}

func (s *Supervisor) HandleCredentialsUpdated() {
	ctx, cancel := context.WithTimeout(s.baseContext(), _saveTimeout)
	defer cancel()

	err := s.conn.SaveCredentials(ctx)
	if err != nil {
		s.logger.Error(err, "Supervisor - HandleCredentialsUpdated - s.conn.SaveCredentials")
	}
}

// ScheduleReconnect arms the reconnect timer. It returns false when a reconnect
// is already pending or the supervisor is stopped.
func (s *Supervisor) ScheduleReconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.pending != nil {
		return false
	}

	s.wg.Add(1)
	s.pending = s.afterFunc(s.reconnectDelay, func() {
		defer s.wg.Done()
		s.reconnect()
	})

	return true
}

// CancelReconnect disarms a pending reconnect. It returns false when none was pending.
func (s *Supervisor) CancelReconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return false
	}

	if s.pending.Stop() {
		s.wg.Done()
	}
	s.pending = nil

	return true
}

func (s *Supervisor) reconnect() {
	s.mu.Lock()
	s.pending = nil
	stopped := s.stopped
	s.mu.Unlock()

	if stopped {
		return
	}

	// старый сокет мог остаться полуоткрытым
	s.conn.Disconnect()
	s.connect()
}

func (s *Supervisor) connect() {
	s.setState(entity.Connecting)

	err := s.conn.Connect(s.baseContext())
	if err != nil {
		s.logger.Error(err, "Supervisor - connect - s.conn.Connect")
		s.HandleDisconnected(entity.ReasonConnectFailed)
	}
}

func (s *Supervisor) setState(state entity.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		s.state = entity.Closed

		return
	}
	s.state = state
}

func (s *Supervisor) baseContext() context.Context {
	if s.ctx != nil {
		return s.ctx
	}

	return context.Background()
}

// Shutdown cancels any pending reconnect, waits for a running one and disconnects.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	if !s.started.Load() {
		return nil
	}

	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.CancelReconnect()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		s.conn.Disconnect()
		close(done)
	}()

	s.mu.Lock()
	s.state = entity.Closed
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("Supervisor - Shutdown: %w", ctx.Err())
	}
}
