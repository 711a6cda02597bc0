package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/repository"
)

type fakeRecorder struct {
	mu      sync.Mutex
	records []repository.CreateRecordParams
	ctxErrs []error
}

func (r *fakeRecorder) CreateRecord(
	ctx context.Context, params repository.CreateRecordParams,
) (*repository.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, params)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return &repository.Record{
		RecordId:       int64(len(r.records)),
		PlayerId:       params.PlayerId,
		RowCount:       params.Params.Rows,
		ColCount:       params.Params.Cols,
		MineCount:      params.Params.MineCount,
		ElapsedSeconds: params.ElapsedSeconds,
	}, nil
}

func (r *fakeRecorder) saved() []repository.CreateRecordParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repository.CreateRecordParams(nil), r.records...)
}

var small = mines.GameParams{Rows: 3, Cols: 3, MineCount: 2}

// Mines at (2,1) and (1,2): opening (0,0) floods four cells and leaves the
// game active.
func newTestManager(t *testing.T, rec Recorder, interval time.Duration) *Manager {
	t.Helper()
	m := NewManager(Options{
		TickInterval: interval,
		TTL:          time.Minute,
		Defaults:     small,
		Recorder:     rec,
		Placer:       mines.PlaceAt(mines.Point{X: 2, Y: 1}, mines.Point{X: 1, Y: 2}),
	})
	t.Cleanup(m.Shutdown)
	return m
}

func open(x, y int) Command {
	return Command{Verb: Open, Point: mines.Point{X: x, Y: y}}
}

func TestManagerCreateGetClose(t *testing.T) {
	m := newTestManager(t, nil, time.Hour)

	s, err := m.Create(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.Id)
	require.NoError(t, err)
	assert.Same(t, s, got)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, s.Id, snap.Id)
	assert.Equal(t, mines.Pending, snap.Status)
	assert.Equal(t, 2, snap.MinesRemaining)
	assert.Len(t, snap.Grid, 9)

	require.NoError(t, m.Close(s.Id))
	_, err = m.Get(s.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Close(s.Id), ErrNotFound)

	_, err = s.Apply(context.Background(), open(0, 0))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestManagerCreateRejectsInvalidParams(t *testing.T) {
	m := newTestManager(t, nil, time.Hour)

	_, err := m.Create(&mines.GameParams{Rows: 2, Cols: 2, MineCount: 4}, nil)
	assert.ErrorIs(t, err, mines.ErrInvalidParams)
	assert.Equal(t, 0, m.Len())
}

func TestApplyOpenAndLose(t *testing.T) {
	m := newTestManager(t, nil, time.Hour)
	s, err := m.Create(nil, nil)
	require.NoError(t, err)

	snap, err := s.Apply(context.Background(), open(0, 0))
	require.NoError(t, err)
	assert.Equal(t, mines.Active, snap.Status)
	assert.Len(t, snap.Update, 4)
	assert.Nil(t, snap.Mines)

	snap, err = s.Apply(context.Background(), open(2, 1))
	require.NoError(t, err)
	assert.Equal(t, mines.Lost, snap.Status)
	require.NotNil(t, snap.Exploded)
	assert.Equal(t, mines.Point{X: 2, Y: 1}, *snap.Exploded)
	assert.Equal(t, []mines.Point{{X: 2, Y: 1}, {X: 1, Y: 2}}, snap.Mines)

	snap, err = s.Apply(context.Background(), open(2, 0))
	require.NoError(t, err)
	assert.Equal(t, mines.Lost, snap.Status)
	assert.Empty(t, snap.Update)
}

func TestApplyOutOfBounds(t *testing.T) {
	m := newTestManager(t, nil, time.Hour)
	s, err := m.Create(nil, nil)
	require.NoError(t, err)

	_, err = s.Apply(context.Background(), open(3, 0))
	assert.ErrorIs(t, err, mines.ErrOutOfBounds)

	_, err = s.Apply(context.Background(), Command{Verb: Flag, Point: mines.Point{X: -1, Y: 0}})
	assert.ErrorIs(t, err, mines.ErrOutOfBounds)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, mines.Pending, snap.Status)
}

func TestApplyFlag(t *testing.T) {
	m := newTestManager(t, nil, time.Hour)
	s, err := m.Create(nil, nil)
	require.NoError(t, err)

	snap, err := s.Apply(context.Background(), Command{Verb: Flag, Point: mines.Point{X: 2, Y: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.MinesRemaining)
	assert.Equal(t, mines.Flagged, snap.Grid[2*3+2])
}

func TestWinIsRecordedOnce(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestManager(t, rec, time.Hour)
	playerId := int64(7)
	s, err := m.Create(nil, &playerId)
	require.NoError(t, err)

	for _, cmd := range []Command{open(0, 0), open(2, 0), open(0, 2)} {
		_, err := s.Apply(context.Background(), cmd)
		require.NoError(t, err)
	}
	snap, err := s.Apply(context.Background(), open(2, 2))
	require.NoError(t, err)
	assert.Equal(t, mines.Won, snap.Status)

	_, err = s.Apply(context.Background(), open(2, 2))
	require.NoError(t, err)

	saved := rec.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, small, saved[0].Params)
	require.NotNil(t, saved[0].PlayerId)
	assert.Equal(t, playerId, *saved[0].PlayerId)
}

func TestClockTicksWhileActive(t *testing.T) {
	m := newTestManager(t, nil, 5*time.Millisecond)
	s, err := m.Create(nil, nil)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.ElapsedSeconds, "pending games do not tick")

	updates, cancel := s.Subscribe()
	defer cancel()

	_, err = s.Apply(context.Background(), open(0, 0))
	require.NoError(t, err)

	select {
	case snap := <-updates:
		assert.Positive(t, snap.ElapsedSeconds)
		assert.Equal(t, mines.Active, snap.Status)
	case <-time.After(time.Second):
		t.Fatal("no tick received")
	}

	_, err = s.Apply(context.Background(), open(2, 1))
	require.NoError(t, err)
	lost, err := s.Snapshot()
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	later, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, lost.ElapsedSeconds, later.ElapsedSeconds, "finished games do not tick")
}

func TestResetStopsClock(t *testing.T) {
	m := newTestManager(t, nil, 5*time.Millisecond)
	s, err := m.Create(nil, nil)
	require.NoError(t, err)

	_, err = s.Apply(context.Background(), open(0, 0))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap, err := s.Snapshot()
		return err == nil && snap.ElapsedSeconds > 0
	}, time.Second, 5*time.Millisecond)

	snap, err := s.Reset(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, mines.Pending, snap.Status)
	assert.Equal(t, 0, snap.ElapsedSeconds)
	assert.Equal(t, small, mines.GameParams{Rows: snap.Rows, Cols: snap.Cols, MineCount: snap.MineCount})

	time.Sleep(20 * time.Millisecond)
	snap, err = s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.ElapsedSeconds)
}

func TestResetWithNewParams(t *testing.T) {
	m := NewManager(Options{Defaults: small})
	t.Cleanup(m.Shutdown)
	s, err := m.Create(nil, nil)
	require.NoError(t, err)

	_, err = s.Reset(context.Background(), &mines.GameParams{Rows: 3, Cols: 3, MineCount: 9})
	assert.ErrorIs(t, err, mines.ErrInvalidParams)

	snap, err := s.Apply(context.Background(), Command{
		Verb: New, Params: mines.GameParams{Rows: 4, Cols: 5, MineCount: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Rows)
	assert.Equal(t, 5, snap.Cols)
	assert.Len(t, snap.Grid, 20)
}

func TestCloseEndsSubscriptions(t *testing.T) {
	m := newTestManager(t, nil, time.Hour)
	s, err := m.Create(nil, nil)
	require.NoError(t, err)

	updates, cancel := s.Subscribe()
	defer cancel()
	require.NoError(t, m.Close(s.Id))

	_, ok := <-updates
	assert.False(t, ok)

	late, _ := s.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestEvictIdle(t *testing.T) {
	m := newTestManager(t, nil, time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	idle, err := m.Create(nil, nil)
	require.NoError(t, err)
	watched, err := m.Create(nil, nil)
	require.NoError(t, err)
	_, cancel := watched.Subscribe()
	defer cancel()

	now = now.Add(30 * time.Second)
	busy, err := m.Create(nil, nil)
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, m.evictIdle())

	_, err = m.Get(idle.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(watched.Id)
	assert.NoError(t, err)
	_, err = m.Get(busy.Id)
	assert.NoError(t, err)
}

func TestRunClosesSessionsOnShutdown(t *testing.T) {
	m := newTestManager(t, nil, time.Hour)
	s, err := m.Create(nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- m.Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, 0, m.Len())
	_, err = s.Snapshot()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWinIsRecordedAfterCallerCancels(t *testing.T) {
	rec := &fakeRecorder{}
	m := newTestManager(t, rec, time.Hour)
	s, err := m.Create(nil, nil)
	require.NoError(t, err)

	for _, cmd := range []Command{open(0, 0), open(2, 0), open(0, 2)} {
		_, err := s.Apply(context.Background(), cmd)
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap, err := s.Apply(ctx, open(2, 2))
	require.NoError(t, err)
	require.Equal(t, mines.Won, snap.Status)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.ctxErrs, 1)
	assert.NoError(t, rec.ctxErrs[0])
}

func TestMaxCells(t *testing.T) {
	m := NewManager(Options{Defaults: small, MaxCells: 100})
	t.Cleanup(m.Shutdown)

	_, err := m.Create(&mines.GameParams{Rows: 100000, Cols: 100000, MineCount: 0}, nil)
	assert.ErrorIs(t, err, mines.ErrInvalidParams)
	_, err = m.Create(&mines.GameParams{Rows: 1<<62 + 1, Cols: 4, MineCount: 3}, nil)
	assert.ErrorIs(t, err, mines.ErrInvalidParams)
	assert.Equal(t, 0, m.Len())

	s, err := m.Create(&mines.GameParams{Rows: 10, Cols: 10, MineCount: 10}, nil)
	require.NoError(t, err)

	_, err = s.Apply(context.Background(), Command{
		Verb: New, Params: mines.GameParams{Rows: 11, Cols: 10, MineCount: 10},
	})
	assert.ErrorIs(t, err, mines.ErrInvalidParams)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Rows)
}

func TestRestartKeepsLatestParams(t *testing.T) {
	m := NewManager(Options{Defaults: small})
	t.Cleanup(m.Shutdown)
	s, err := m.Create(nil, nil)
	require.NoError(t, err)

	_, err = s.Apply(context.Background(), Command{
		Verb: New, Params: mines.GameParams{Rows: 4, Cols: 5, MineCount: 3},
	})
	require.NoError(t, err)

	snap, err := s.Apply(context.Background(), Command{Verb: New, Restart: true})
	require.NoError(t, err)
	assert.Equal(t, mines.GameParams{Rows: 4, Cols: 5, MineCount: 3}, mines.GameParams{
		Rows: snap.Rows, Cols: snap.Cols, MineCount: snap.MineCount,
	})
	assert.Equal(t, mines.Pending, snap.Status)
}
