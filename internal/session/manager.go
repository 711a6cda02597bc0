package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

const (
	minSweepInterval = time.Second
	DefaultMaxCells  = 10000
)

type Options struct {
	TickInterval time.Duration
	TTL          time.Duration
	Defaults     mines.GameParams
	MaxCells     int
	Recorder     Recorder
	Placer       mines.MinePlacer
	Logger       *slog.Logger
}

// Manager is the registry of live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	opts   Options
	logger *slog.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(opts Options) *Manager {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.MaxCells <= 0 {
		opts.MaxCells = DefaultMaxCells
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   opts.Logger,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m *Manager) Defaults() mines.GameParams {
	return m.opts.Defaults
}

// Create starts a Pending session. A nil params uses the defaults.
func (m *Manager) Create(params *mines.GameParams, playerId *int64) (*Session, error) {
	p := m.opts.Defaults
	if params != nil {
		p = *params
	}

	if err := p.ValidateWithin(m.opts.MaxCells); err != nil {
		return nil, err
	}

	var opts []mines.Option
	if m.opts.Placer != nil {
		opts = append(opts, mines.WithMinePlacer(m.opts.Placer))
	}
	game, err := mines.NewGame(p, opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(m.ctx)
	s := &Session{
		Id:       uuid.NewString(),
		PlayerId: playerId,
		game:     game,
		touched:  m.now(),
		interval: m.opts.TickInterval,
		maxCells: m.opts.MaxCells,
		ctx:      ctx,
		cancel:   cancel,
		subs:     make(map[int]chan Snapshot),
		recorder: m.opts.Recorder,
		logger:   m.logger,
		now:      m.now,
	}

	m.mu.Lock()
	m.sessions[s.Id] = s
	m.mu.Unlock()

	m.logger.Debug("created session",
		slog.String("session", s.Id),
		slog.String("params", p.Seed()),
	)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.close()
	m.logger.Debug("closed session", slog.String("session", id))
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// evictIdle closes every session idle for longer than the TTL and returns
// how many it closed.
func (m *Manager) evictIdle() int {
	deadline := m.now().Add(-m.opts.TTL)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.idleSince(deadline) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.close()
	}
	return len(idle)
}

// Run evicts idle sessions until ctx is done, then closes every session.
func (m *Manager) Run(ctx context.Context) error {
	interval := max(m.opts.TTL/4, minSweepInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Shutdown()
			return nil
		case <-ticker.C:
			if n := m.evictIdle(); n > 0 {
				m.logger.Info("evicted idle sessions",
					slog.Int("count", n),
					slog.Int("live", m.Len()),
				)
			}
		}
	}
}

func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	m.cancel()
}
