package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want Command
	}{
		{"g", Command{Verb: Get}},
		{"  g  ", Command{Verb: Get}},
		{"o 3 4", Command{Verb: Open, Point: mines.Point{X: 3, Y: 4}}},
		{"f 0 0", Command{Verb: Flag, Point: mines.Point{}}},
		{"c 1\t2", Command{Verb: Chord, Point: mines.Point{X: 1, Y: 2}}},
		{"n 16 30 99", Command{Verb: New, Params: mines.GameParams{Rows: 16, Cols: 30, MineCount: 99}}},
		{"n", Command{Verb: New, Restart: true}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want error
	}{
		{"", ErrUnknownCommand},
		{"r", ErrUnknownCommand},
		{"open 1 1", ErrUnknownCommand},
		{"g 1", ErrBadArguments},
		{"o 1", ErrBadArguments},
		{"o 1 2 3", ErrBadArguments},
		{"f x 2", ErrBadArguments},
		{"n 10 10", ErrBadArguments},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := ParseCommand(tt.line)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseCommands(t *testing.T) {
	cmds, err := ParseCommands("o 1 1\n\nf 2 2\n")
	require.NoError(t, err)
	assert.Equal(t, []Command{
		{Verb: Open, Point: mines.Point{X: 1, Y: 1}},
		{Verb: Flag, Point: mines.Point{X: 2, Y: 2}},
	}, cmds)

	_, err = ParseCommands("o 1 1\nz")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestCommandString(t *testing.T) {
	for _, line := range []string{"g", "o 3 4", "n 9 9 10", "n"} {
		cmd, err := ParseCommand(line)
		require.NoError(t, err)
		assert.Equal(t, line, cmd.String())
	}
}

func TestMoveCommand(t *testing.T) {
	p := mines.Point{X: 2, Y: 5}

	cmd, err := MoveChord.Command(p)
	require.NoError(t, err)
	assert.Equal(t, Command{Verb: Chord, Point: p}, cmd)

	_, err = Move("forfeit").Command(p)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
