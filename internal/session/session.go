package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/repository"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session closed")
)

// Recorder stores the elapsed time of won games. *repository.Queries
// satisfies it.
type Recorder interface {
	CreateRecord(ctx context.Context, params repository.CreateRecordParams) (*repository.Record, error)
}

type Snapshot struct {
	Id             string            `json:"id"`
	Rows           int               `json:"rows"`
	Cols           int               `json:"cols"`
	MineCount      int               `json:"mine_count"`
	MinesRemaining int               `json:"mines_remaining"`
	ElapsedSeconds int               `json:"elapsed_seconds"`
	Status         mines.Status      `json:"status"`
	Grid           mines.Grid        `json:"grid"`
	Exploded       *mines.Point      `json:"exploded,omitempty"`
	Mines          []mines.Point     `json:"mines,omitempty"`
	Update         mines.BoardUpdate `json:"update,omitempty"`
}

/*
Session owns one game and serialises every call on it. While the game is
Active a clock goroutine ticks it every interval and pushes a snapshot to
subscribers.
*/
type Session struct {
	Id       string
	PlayerId *int64

	mu       sync.Mutex
	game     *mines.Game
	touched  time.Time
	closed   bool
	interval time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	stopClock context.CancelFunc

	subs    map[int]chan Snapshot
	nextSub int

	maxCells int
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

func (s *Session) snapshot(update mines.BoardUpdate) Snapshot {
	params := s.game.Params()
	snap := Snapshot{
		Id:             s.Id,
		Rows:           params.Rows,
		Cols:           params.Cols,
		MineCount:      params.MineCount,
		MinesRemaining: s.game.MinesRemaining(),
		ElapsedSeconds: s.game.ElapsedSeconds(),
		Status:         s.game.Status(),
		Grid:           s.game.PlayerGrid(),
		Update:         update,
	}
	if p, ok := s.game.Exploded(); ok {
		snap.Exploded = &p
	}
	if locations, ok := s.game.MineLocations(); ok {
		snap.Mines = locations
	}
	return snap
}

func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrClosed
	}
	s.touched = s.now()
	return s.snapshot(nil), nil
}

// Apply runs cmd against the game. Coordinate and parameter errors leave the
// game untouched.
func (s *Session) Apply(ctx context.Context, cmd Command) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	s.touched = s.now()

	before := s.game.Status()
	update, err := s.execute(cmd)
	if err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}
	after := s.game.Status()

	switch {
	case cmd.Verb == New:
		s.stop()
	case before == mines.Pending && after == mines.Active:
		s.start()
	case after.Over():
		s.stop()
	}

	snap := s.snapshot(update)
	won := before != mines.Won && after == mines.Won
	record := repository.CreateRecordParams{
		PlayerId:       s.PlayerId,
		Params:         s.game.Params(),
		ElapsedSeconds: s.game.ElapsedSeconds(),
	}
	s.mu.Unlock()

	s.logger.Debug("applied command",
		slog.String("session", s.Id),
		slog.String("command", cmd.String()),
		slog.String("status", after.String()),
	)
	if won {
		// the record outlives the request that won the game
		s.record(context.WithoutCancel(ctx), record)
	}
	return snap, nil
}

func (s *Session) execute(cmd Command) (mines.BoardUpdate, error) {
	switch cmd.Verb {
	case Get:
		return nil, nil
	case Open:
		return s.game.Reveal(cmd.Point)
	case Flag:
		if _, err := s.game.ToggleFlag(cmd.Point); err != nil {
			return nil, err
		}
		return nil, nil
	case Chord:
		return s.game.Chord(cmd.Point)
	case New:
		params := cmd.Params
		if cmd.Restart {
			params = s.game.Params()
		}
		if err := params.ValidateWithin(s.maxCells); err != nil {
			return nil, err
		}
		return nil, s.game.Reset(params)
	}
	return nil, fmt.Errorf("%q: %w", cmd.Verb, ErrUnknownCommand)
}

// Reset starts over with params, or with the current params when nil.
func (s *Session) Reset(ctx context.Context, params *mines.GameParams) (Snapshot, error) {
	if params == nil {
		return s.Apply(ctx, Command{Verb: New, Restart: true})
	}
	return s.Apply(ctx, Command{Verb: New, Params: *params})
}

func (s *Session) record(ctx context.Context, params repository.CreateRecordParams) {
	if s.recorder == nil {
		return
	}
	record, err := s.recorder.CreateRecord(ctx, params)
	if err != nil {
		s.logger.Error("unable to save record",
			slog.String("session", s.Id),
			slog.Any("error", err),
		)
		return
	}
	s.logger.Info("saved record",
		slog.String("session", s.Id),
		slog.Int64("record", record.RecordId),
		slog.Int("elapsed", record.ElapsedSeconds),
	)
}

// start launches the clock. s.mu must be held.
func (s *Session) start() {
	s.stop()
	ctx, cancel := context.WithCancel(s.ctx)
	s.stopClock = cancel
	go s.runClock(ctx)
}

// stop halts the clock. s.mu must be held.
func (s *Session) stop() {
	if s.stopClock != nil {
		s.stopClock()
		s.stopClock = nil
	}
}

func (s *Session) runClock(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.tick(ctx) {
				return
			}
		}
	}
}

func (s *Session) tick(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	// the clock may have been replaced while waiting for the lock
	if ctx.Err() != nil || !s.game.Tick() {
		return false
	}
	s.publish(s.snapshot(nil))
	return true
}

// publish hands snap to every subscriber, replacing an unread snapshot.
// s.mu must be held.
func (s *Session) publish(snap Snapshot) {
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// Subscribe returns a channel receiving a snapshot after every tick. The
// channel is closed when the session closes or cancel is called.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stop()
	s.cancel()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// idleSince reports whether nobody has used or watched the session since t.
func (s *Session) idleSince(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs) == 0 && s.touched.Before(t)
}
