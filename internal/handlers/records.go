package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/repository"
)

type Highscores interface {
	GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error)
}

type RecordsHandler struct {
	logger *slog.Logger
	repo   Highscores
	dec    *schema.Decoder
}

func NewRecordsHandler(logger *slog.Logger, repo Highscores) *RecordsHandler {
	return &RecordsHandler{
		logger: logger,
		repo:   repo,
		dec:    newDecoder(),
	}
}

// Filter only narrows by board when rows, cols and mines are all given.
func (d HighscoresDTO) Filter() repository.HighscoreFilter {
	filter := repository.HighscoreFilter{
		Username: d.Username,
		Limit:    d.Limit,
	}
	if d.Rows != nil && d.Cols != nil && d.MineCount != nil {
		filter.GameParams = &mines.GameParams{
			Rows:      *d.Rows,
			Cols:      *d.Cols,
			MineCount: *d.MineCount,
		}
	}
	return filter
}

func (h RecordsHandler) Highscores(w http.ResponseWriter, r *http.Request) {
	var dto HighscoresDTO
	if err := h.dec.Decode(&dto, r.URL.Query()); err != nil {
		sendError(w, h.logger, err)
		return
	}
	records, err := h.repo.GetHighscores(r.Context(), dto.Filter())
	if err != nil {
		sendError(w, h.logger, err)
		return
	}
	if records == nil {
		records = []repository.Highscore{}
	}
	sendJSONOrLog(w, h.logger, records)
}
