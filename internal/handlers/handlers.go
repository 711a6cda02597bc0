package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

func SendJSON(w http.ResponseWriter, statusCode int, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, logger *slog.Logger, v any) {
	sendStatusJSONOrLog(w, logger, http.StatusOK, v)
}

func sendStatusJSONOrLog(
	w http.ResponseWriter,
	logger *slog.Logger,
	statusCode int,
	v any,
) {
	if _, err := SendJSON(w, statusCode, v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

func statusCodeOf(err error) int {
	switch {
	case errors.Is(err, mines.ErrInvalidParams),
		errors.Is(err, mines.ErrOutOfBounds),
		errors.Is(err, session.ErrUnknownCommand),
		errors.Is(err, session.ErrBadArguments):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrClosed):
		return http.StatusNotFound
	}
	var multi schema.MultiError
	if errors.As(err, &multi) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// sendError replies {"error": ...}. Internal errors are logged and their
// text is not sent.
func sendError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := statusCodeOf(err)
	if statusCode == http.StatusInternalServerError {
		logger.Error("internal error", slog.Any("error", err))
		err = errors.New(http.StatusText(statusCode))
	}
	sendStatusJSONOrLog(w, logger, statusCode, wrapError(err))
}

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}
