package mines

import (
	"fmt"
	"math"
	"strings"
)

type GameParams struct {
	Rows      int `json:"rows"`
	Cols      int `json:"cols"`
	MineCount int `json:"mine_count"`
}

func (p GameParams) Unpack() (rows, cols, mineCount int) {
	return p.Rows, p.Cols, p.MineCount
}

func (p GameParams) Cells() int {
	return p.Rows * p.Cols
}

// Validate reports a [ParamsError] unless the grid is non-empty and leaves
// at least one cell free of mines.
func (p GameParams) Validate() error {
	switch {
	case p.Rows <= 0:
		return ParamsError{Params: p, reason: "rows must be positive"}
	case p.Cols <= 0:
		return ParamsError{Params: p, reason: "cols must be positive"}
	case p.Rows > math.MaxInt/p.Cols:
		return ParamsError{Params: p, reason: "grid is too large"}
	case p.MineCount < 0:
		return ParamsError{Params: p, reason: "mine count must not be negative"}
	case p.MineCount > p.Cells()-1:
		return ParamsError{Params: p, reason: "mine count must leave at least one free cell"}
	}
	return nil
}

// ValidateWithin is [GameParams.Validate] plus a cap on the number of cells.
func (p GameParams) ValidateWithin(maxCells int) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Cells() > maxCells {
		return ParamsError{
			Params: p,
			reason: fmt.Sprintf("grid must have at most %d cells", maxCells),
		}
	}
	return nil
}

func (p GameParams) PointInBounds(pt Point) bool {
	return 0 <= pt.X && pt.X < p.Cols && 0 <= pt.Y && pt.Y < p.Rows
}

func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Rows, p.Cols, p.MineCount)
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.Rows, &p.Cols, &p.MineCount)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (seed = "%s", n = %d): %w`,
			seed, n, ErrInvalidParams,
		)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
