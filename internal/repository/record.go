package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type Record struct {
	RecordId       int64     `db:"record_id" json:"record_id"`
	PlayerId       *int64    `db:"player_id" json:"player_id,omitempty"`
	RowCount       int       `db:"row_count" json:"rows"`
	ColCount       int       `db:"col_count" json:"cols"`
	MineCount      int       `db:"mine_count" json:"mine_count"`
	ElapsedSeconds int       `db:"elapsed_seconds" json:"elapsed_seconds"`
	FinishedAt     time.Time `db:"finished_at" json:"finished_at"`
}

type CreateRecordParams struct {
	PlayerId       *int64
	Params         mines.GameParams
	ElapsedSeconds int
}

func (q *Queries) CreateRecord(ctx context.Context, params CreateRecordParams) (*Record, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO record (player_id, row_count, col_count, mine_count, elapsed_seconds)
		VALUES (@player_id, @row_count, @col_count, @mine_count, @elapsed_seconds)
		RETURNING *`,
		pgx.NamedArgs{
			"player_id":       params.PlayerId,
			"row_count":       params.Params.Rows,
			"col_count":       params.Params.Cols,
			"mine_count":      params.Params.MineCount,
			"elapsed_seconds": params.ElapsedSeconds,
		},
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Record])
}

type Highscore struct {
	RecordId       int64     `db:"record_id" json:"record_id"`
	Username       *string   `db:"username" json:"username"`
	RowCount       int       `db:"row_count" json:"rows"`
	ColCount       int       `db:"col_count" json:"cols"`
	MineCount      int       `db:"mine_count" json:"mine_count"`
	ElapsedSeconds int       `db:"elapsed_seconds" json:"elapsed_seconds"`
	FinishedAt     time.Time `db:"finished_at" json:"finished_at"`
}

type HighscoreFilter struct {
	Username   *string
	GameParams *mines.GameParams
	Limit      int
}

const defaultHighscoreLimit = 50

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Username != nil {
		clauses = append(clauses, "username = @username")
		args["username"] = *f.Username
	}
	if f.GameParams != nil {
		clauses = append(
			clauses,
			"row_count = @row_count",
			"col_count = @col_count",
			"mine_count = @mine_count",
		)
		args["row_count"] = f.GameParams.Rows
		args["col_count"] = f.GameParams.Cols
		args["mine_count"] = f.GameParams.MineCount
	}
	return strings.Join(clauses, " AND "), args
}

func (f HighscoreFilter) limit() int {
	if f.Limit <= 0 || f.Limit > defaultHighscoreLimit {
		return defaultHighscoreLimit
	}
	return f.Limit
}

func (q *Queries) GetHighscores(ctx context.Context, filter HighscoreFilter) ([]Highscore, error) {
	query := `
	SELECT
		record_id,
		username,
		row_count,
		col_count,
		mine_count,
		elapsed_seconds,
		finished_at
	FROM record
		LEFT OUTER JOIN player USING (player_id)`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query += " ORDER BY elapsed_seconds, finished_at LIMIT @limit"
	args["limit"] = filter.limit()

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
