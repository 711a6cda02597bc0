package mines

import (
	"strconv"
	"strings"
)

type CellState int8

const (
	Unknown          CellState = -2
	Flagged          CellState = -1
	CorrectlyFlagged CellState = 64
	ExplodedMine     CellState = 65
	FalselyFlagged   CellState = 66
	UnflaggedMine    CellState = 67
	// 0 to 8 mean the cell is open and has that many mined neighbors.
	// The 64+ states only appear once the game is over.
)

func (s CellState) String() string {
	switch s {
	case Unknown:
		return "."
	case Flagged:
		return "F"
	case CorrectlyFlagged:
		return "V"
	case ExplodedMine:
		return "X"
	case FalselyFlagged:
		return "N"
	case UnflaggedMine:
		return "*"
	case 0, 1, 2, 3, 4, 5, 6, 7, 8:
		return strconv.Itoa(int(s))
	default:
		return "?"
	}
}

// Grid is a row-major view of the board as the player sees it.
type Grid []CellState

func (g Grid) String(width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(g[y*width+x].String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
