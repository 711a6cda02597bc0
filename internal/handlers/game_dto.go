package handlers

import (
	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

// GameParamsDTO holds optional board parameters. Missing values fall back
// to a base set of parameters.
type GameParamsDTO struct {
	Rows      *int `schema:"rows"`
	Cols      *int `schema:"cols"`
	MineCount *int `schema:"mines"`
}

func ParseGameParamsDTO(dec *schema.Decoder, src map[string][]string) (GameParamsDTO, error) {
	var dto GameParamsDTO
	err := dec.Decode(&dto, src)
	return dto, err
}

func (d GameParamsDTO) Empty() bool {
	return d.Rows == nil && d.Cols == nil && d.MineCount == nil
}

// Params overlays the given values on base, or returns nil when none were
// given.
func (d GameParamsDTO) Params(base mines.GameParams) *mines.GameParams {
	if d.Empty() {
		return nil
	}
	params := base
	if d.Rows != nil {
		params.Rows = *d.Rows
	}
	if d.Cols != nil {
		params.Cols = *d.Cols
	}
	if d.MineCount != nil {
		params.MineCount = *d.MineCount
	}
	return &params
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	X    int    `schema:"x,required"`
	Y    int    `schema:"y,required"`
}

func ParseMoveDTO(dec *schema.Decoder, src map[string][]string) (session.Command, error) {
	var dto MoveDTO
	if err := dec.Decode(&dto, src); err != nil {
		return session.Command{}, err
	}
	return session.Move(dto.Move).Command(mines.Point{X: dto.X, Y: dto.Y})
}

type HighscoresDTO struct {
	Username  *string `schema:"username"`
	Rows      *int    `schema:"rows"`
	Cols      *int    `schema:"cols"`
	MineCount *int    `schema:"mines"`
	Limit     int     `schema:"limit"`
}

func paramsOf(snap session.Snapshot) mines.GameParams {
	return mines.GameParams{Rows: snap.Rows, Cols: snap.Cols, MineCount: snap.MineCount}
}
