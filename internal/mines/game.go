package mines

import (
	"cmp"
	"fmt"
	"hash/maphash"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/zyedidia/generic/mapset"
)

var Log *slog.Logger = slog.Default()

type Status int

const (
	Pending Status = iota
	Active
	Won
	Lost
)

var statusNames = [...]string{"pending", "active", "won", "lost"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) Over() bool {
	return s == Won || s == Lost
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	i := slices.Index(statusNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown game status %q", text)
	}
	*s = Status(i)
	return nil
}

type CellUpdate struct {
	Point
	MineCount int  `json:"mine_count"`
	Mined     bool `json:"mined"`
}

type BoardUpdate []CellUpdate

type Option func(*Game)

func WithRand(r *rand.Rand) Option {
	return func(g *Game) {
		g.rnd = r
	}
}

// WithMinePlacer replaces random placement, mostly to pin layouts in tests.
func WithMinePlacer(place MinePlacer) Option {
	return func(g *Game) {
		g.place = place
	}
}

/*
Game is a single minesweeper board and its state machine:

	Pending -> Active -> Won | Lost

Mines are placed on the first reveal so that the revealed cell is never a
mine. A Game is not safe for concurrent use.
*/
type Game struct {
	params  GameParams
	status  Status
	elapsed int

	mines     mapset.Set[Point] // write-once per game
	adjacency map[Point]int     // write-once per game
	opened    mapset.Set[Point]
	flagged   mapset.Set[Point]
	exploded  Point

	rnd   *rand.Rand
	place MinePlacer
}

func NewGame(params GameParams, opts ...Option) (*Game, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	g := &Game{place: placeMines}
	for _, opt := range opts {
		opt(g)
	}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewPCG(
			new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
		))
	}
	g.clear(params)
	return g, nil
}

func (g *Game) clear(params GameParams) {
	g.params = params
	g.status = Pending
	g.elapsed = 0
	g.mines = mapset.New[Point]()
	g.adjacency = nil
	g.opened = mapset.New[Point]()
	g.flagged = mapset.New[Point]()
	g.exploded = Point{}
}

// start lays the mines around the first revealed cell and starts the clock.
func (g *Game) start(first Point) error {
	mines, err := g.place(g.params, first, g.rnd)
	if err != nil {
		return fmt.Errorf("unable to place mines: %w", err)
	}
	if mines.Size() != g.params.MineCount {
		return AssertionError{fmt.Sprintf(
			"placed %d mines, want %d", mines.Size(), g.params.MineCount,
		)}
	}
	if mines.Has(first) {
		return AssertionError{"mine in starting cell"}
	}

	g.mines = mines
	g.adjacency = computeAdjacency(mines, g.params.Rows, g.params.Cols)
	g.status = Active

	Log.Debug("game started", "params", g.params.Seed(), "first", first.String())
	return nil
}

// Reveal opens p, flooding through cells without mined neighbors. Revealing a
// flagged or open cell, or any cell of a finished game, changes nothing and
// returns an empty update.
func (g *Game) Reveal(p Point) (BoardUpdate, error) {
	if !g.params.PointInBounds(p) {
		return nil, outOfBounds(p, g.params)
	}
	if g.status.Over() || g.flagged.Has(p) {
		return nil, nil
	}
	if g.status == Pending {
		if err := g.start(p); err != nil {
			return nil, err
		}
	}

	opened := revealFrom(g.adjacency, g.mines, p, g.opened, g.params.Rows, g.params.Cols)

	update := make(BoardUpdate, 0, len(opened))
	for _, q := range opened {
		g.opened.Put(q)
		// a flag on a flooded cell was wrong anyway
		g.flagged.Remove(q)
		update = append(update, CellUpdate{
			Point:     q,
			MineCount: g.adjacency[q],
			Mined:     g.mines.Has(q),
		})
	}

	switch {
	case len(opened) == 0:
	case g.mines.Has(p):
		g.status = Lost
		g.exploded = p
		Log.Debug("game lost", "at", p.String(), "elapsed", g.elapsed)
	case g.opened.Size()+g.params.MineCount == g.params.Cells():
		g.status = Won
		Log.Debug("game won", "elapsed", g.elapsed)
	}

	return update, nil
}

// ToggleFlag flags or unflags a closed cell. Flags are capped at the mine
// count; it reports whether the flag set changed.
func (g *Game) ToggleFlag(p Point) (bool, error) {
	if !g.params.PointInBounds(p) {
		return false, outOfBounds(p, g.params)
	}
	if g.status.Over() || g.opened.Has(p) {
		return false, nil
	}
	if g.flagged.Has(p) {
		g.flagged.Remove(p)
		return true, nil
	}
	if g.flagged.Size() >= g.params.MineCount {
		return false, nil
	}
	g.flagged.Put(p)
	return true, nil
}

// Chord reveals every closed, unflagged neighbor of an open cell once the
// flags around it match its mine count.
func (g *Game) Chord(p Point) (BoardUpdate, error) {
	if !g.params.PointInBounds(p) {
		return nil, outOfBounds(p, g.params)
	}
	if g.status != Active || !g.opened.Has(p) || g.mines.Has(p) {
		return nil, nil
	}

	var (
		neighbors = Neighbors(p, g.params.Rows, g.params.Cols)
		closed    = make([]Point, 0, len(neighbors))
		flags     = 0
	)
	for _, n := range neighbors {
		switch {
		case g.flagged.Has(n):
			flags++
		case !g.opened.Has(n):
			closed = append(closed, n)
		}
	}
	if flags != g.adjacency[p] {
		return nil, nil
	}

	var update BoardUpdate
	for _, n := range closed {
		upd, err := g.Reveal(n)
		if err != nil {
			return update, err
		}
		update = append(update, upd...)
		if g.status.Over() {
			break
		}
	}
	return update, nil
}

// Tick advances the clock by a second while the game is active.
func (g *Game) Tick() bool {
	if g.status != Active {
		return false
	}
	g.elapsed++
	return true
}

// Reset discards the board and returns to Pending with params. Invalid
// params leave the game untouched.
func (g *Game) Reset(params GameParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	g.clear(params)
	return nil
}

func (g *Game) Params() GameParams {
	return g.params
}

func (g *Game) Status() Status {
	return g.status
}

func (g *Game) ElapsedSeconds() int {
	return g.elapsed
}

func (g *Game) MinesRemaining() int {
	return g.params.MineCount - g.flagged.Size()
}

func (g *Game) OpenCount() int {
	return g.opened.Size()
}

func (g *Game) FlagCount() int {
	return g.flagged.Size()
}

func (g *Game) IsOpen(p Point) bool {
	return g.opened.Has(p)
}

func (g *Game) IsFlagged(p Point) bool {
	return g.flagged.Has(p)
}

// AdjacencyCount is only defined for open cells that are not mines.
func (g *Game) AdjacencyCount(p Point) (int, bool) {
	if !g.opened.Has(p) || g.mines.Has(p) {
		return 0, false
	}
	return g.adjacency[p], true
}

// Exploded returns the mine that ended a lost game.
func (g *Game) Exploded() (Point, bool) {
	return g.exploded, g.status == Lost
}

// MineLocations lists the mines row by row, but only once the game is over.
func (g *Game) MineLocations() ([]Point, bool) {
	if !g.status.Over() {
		return nil, false
	}
	return sortedPoints(g.mines), true
}

// PlayerGrid renders the board as the player may see it. After the game ends
// it also shows every mine and marks each flag as right or wrong.
func (g *Game) PlayerGrid() Grid {
	var (
		rows, cols, _ = g.params.Unpack()
		over          = g.status.Over()
		grid          = make(Grid, rows*cols)
	)
	for y := range rows {
		for x := range cols {
			p := Point{X: x, Y: y}
			mined := g.mines.Has(p)

			var state CellState
			switch {
			case g.opened.Has(p) && mined:
				state = ExplodedMine
			case g.opened.Has(p):
				state = CellState(g.adjacency[p])
			case g.flagged.Has(p) && over && mined:
				state = CorrectlyFlagged
			case g.flagged.Has(p) && over:
				state = FalselyFlagged
			case g.flagged.Has(p):
				state = Flagged
			case over && mined:
				state = UnflaggedMine
			default:
				state = Unknown
			}
			grid[y*cols+x] = state
		}
	}
	return grid
}

func (g *Game) String() string {
	return g.PlayerGrid().String(g.params.Cols)
}

func sortedPoints(set mapset.Set[Point]) []Point {
	points := make([]Point, 0, set.Size())
	set.Each(func(p Point) {
		points = append(points, p)
	})
	slices.SortFunc(points, func(a, b Point) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return points
}
