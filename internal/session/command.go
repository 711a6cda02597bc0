package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type Verb string

const (
	Get   Verb = "g"
	Open  Verb = "o"
	Flag  Verb = "f"
	Chord Verb = "c"
	New   Verb = "n"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArguments   = errors.New("bad command arguments")
)

// Command is one parsed line of the text protocol:
//
//	g
//	o x y
//	f x y
//	c x y
//	n rows cols mines
//	n
//
// A bare "n" restarts with the current params.
type Command struct {
	Verb    Verb
	Point   mines.Point
	Params  mines.GameParams
	Restart bool
}

func (c Command) String() string {
	switch c.Verb {
	case Open, Flag, Chord:
		return fmt.Sprintf("%s %d %d", c.Verb, c.Point.X, c.Point.Y)
	case New:
		if c.Restart {
			return string(c.Verb)
		}
		return fmt.Sprintf("%s %d %d %d", c.Verb, c.Params.Rows, c.Params.Cols, c.Params.MineCount)
	default:
		return string(c.Verb)
	}
}

func ParseCommand(line string) (Command, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Command{}, fmt.Errorf("empty line: %w", ErrUnknownCommand)
	}
	cmd, args := Command{Verb: Verb(tokens[0])}, tokens[1:]

	switch cmd.Verb {
	case Get:
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%q takes no arguments: %w", cmd.Verb, ErrBadArguments)
		}
	case Open, Flag, Chord:
		ints, err := parseInts(cmd.Verb, args, 2)
		if err != nil {
			return Command{}, err
		}
		cmd.Point = mines.Point{X: ints[0], Y: ints[1]}
	case New:
		if len(args) == 0 {
			cmd.Restart = true
			break
		}
		ints, err := parseInts(cmd.Verb, args, 3)
		if err != nil {
			return Command{}, err
		}
		cmd.Params = mines.GameParams{Rows: ints[0], Cols: ints[1], MineCount: ints[2]}
	default:
		return Command{}, fmt.Errorf("%q: %w", tokens[0], ErrUnknownCommand)
	}
	return cmd, nil
}

// ParseCommands splits a message into lines and parses each non-blank one.
func ParseCommands(message string) ([]Command, error) {
	var cmds []Command
	for _, line := range strings.Split(message, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func parseInts(verb Verb, args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf(
			"%q takes %d arguments, got %d: %w", verb, n, len(args), ErrBadArguments,
		)
	}
	ints := make([]int, n)
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %q must be an int: %w", i+1, verb, ErrBadArguments)
		}
		ints[i] = v
	}
	return ints, nil
}

// Move names the HTTP move query values.
type Move string

const (
	MoveOpen  Move = "open"
	MoveFlag  Move = "flag"
	MoveChord Move = "chord"
)

func (m Move) Command(p mines.Point) (Command, error) {
	switch m {
	case MoveOpen:
		return Command{Verb: Open, Point: p}, nil
	case MoveFlag:
		return Command{Verb: Flag, Point: p}, nil
	case MoveChord:
		return Command{Verb: Chord, Point: p}, nil
	}
	return Command{}, fmt.Errorf("move %q: %w", m, ErrUnknownCommand)
}
