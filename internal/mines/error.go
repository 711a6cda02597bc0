package mines

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParams = errors.New("invalid game params")
	ErrOutOfBounds   = errors.New("point out of bounds")
)

type ParamsError struct {
	Params GameParams
	reason string
}

// [ParamsError] implements [error]
func (e ParamsError) Error() string {
	return fmt.Sprintf(
		"%s: %s (rows = %d, cols = %d, mines = %d)",
		ErrInvalidParams, e.reason, e.Params.Rows, e.Params.Cols, e.Params.MineCount,
	)
}

func (e ParamsError) Is(target error) bool {
	return target == ErrInvalidParams
}

func outOfBounds(p Point, params GameParams) error {
	return fmt.Errorf("%w: %s on %dx%d grid", ErrOutOfBounds, p, params.Cols, params.Rows)
}

// AssertionError marks a broken engine invariant, e.g. a mine placer that
// ignored the safe cell.
type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}
