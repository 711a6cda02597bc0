package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/schema"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/middleware"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

var errUnsupportedMessage = errors.New("only text messages are supported")

type GameHandler struct {
	logger   *slog.Logger
	sessions *session.Manager
	ws       *config.WebSocket
	dec      *schema.Decoder
}

func NewGameHandler(
	logger *slog.Logger,
	sessions *session.Manager,
	ws *config.WebSocket,
) *GameHandler {
	return &GameHandler{
		logger:   logger,
		sessions: sessions,
		ws:       ws,
		dec:      newDecoder(),
	}
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseGameParamsDTO(g.dec, r.URL.Query())
	if err != nil {
		sendError(w, g.logger, err)
		return
	}

	var playerId *int64
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		playerId = &claims.PlayerId
	}

	s, err := g.sessions.Create(dto.Params(g.sessions.Defaults()), playerId)
	if err != nil {
		sendError(w, g.logger, err)
		return
	}

	snap, err := s.Snapshot()
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	sendStatusJSONOrLog(w, g.logger, http.StatusCreated, snap)
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, err := g.sessions.Get(r.PathValue("id"))
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	snap, err := s.Snapshot()
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	sendJSONOrLog(w, g.logger, snap)
}

func (g GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	cmd, err := ParseMoveDTO(g.dec, r.URL.Query())
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	s, err := g.sessions.Get(r.PathValue("id"))
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	snap, err := s.Apply(r.Context(), cmd)
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	sendJSONOrLog(w, g.logger, snap)
}

func (g GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseGameParamsDTO(g.dec, r.URL.Query())
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	s, err := g.sessions.Get(r.PathValue("id"))
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	current, err := s.Snapshot()
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	params := dto.Params(paramsOf(current))
	snap, err := s.Reset(r.Context(), params)
	if err != nil {
		sendError(w, g.logger, err)
		return
	}
	sendJSONOrLog(w, g.logger, snap)
}

func (g GameHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := g.sessions.Close(r.PathValue("id")); err != nil {
		sendError(w, g.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, err := g.sessions.Get(r.PathValue("id"))
	if err != nil {
		sendError(w, g.logger, err)
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	logger := g.logger.With(slog.String("session", s.Id))
	logger.Debug("established WS connection")

	err = runGameLoop(r.Context(), conn, s)
	switch {
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway),
		errors.Is(err, session.ErrClosed):
		logger.Debug("WS connection closed", slog.Any("reason", err))
	default:
		logger.Warn("error in ws loop", slog.Any("error", err))
	}
}

// runGameLoop answers every text message with a snapshot and forwards
// clock ticks until either side goes away. It always returns a non-nil
// error.
func runGameLoop(ctx context.Context, conn *websocket.Conn, s *session.Session) error {
	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	var mu sync.Mutex
	write := func(v any) error {
		mu.Lock()
		defer mu.Unlock()
		return conn.WriteJSON(v)
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		// closing the connection unblocks the reader
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case snap, ok := <-updates:
				if !ok {
					mu.Lock()
					conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
					mu.Unlock()
					return session.ErrClosed
				}
				if err := write(snap); err != nil {
					return err
				}
			}
		}
	})
	group.Go(func() error {
		for {
			mt, buf, err := conn.ReadMessage()
			if err != nil {
				return err
			}
			if mt != websocket.TextMessage {
				return errUnsupportedMessage
			}
			reply, err := execute(ctx, s, string(buf))
			if errors.Is(err, session.ErrClosed) {
				return err
			}
			if err != nil {
				reply = wrapError(err)
			}
			if err := write(reply); err != nil {
				return err
			}
		}
	})
	return group.Wait()
}

// execute runs the commands of one message and returns the last snapshot.
// It stops at the first failing command or once the game is over.
func execute(ctx context.Context, s *session.Session, message string) (any, error) {
	cmds, err := session.ParseCommands(strings.TrimSpace(message))
	if err != nil {
		return nil, err
	}
	if len(cmds) == 0 {
		return s.Snapshot()
	}
	var snap session.Snapshot
	for _, cmd := range cmds {
		snap, err = s.Apply(ctx, cmd)
		if err != nil {
			return nil, err
		}
		if snap.Status.Over() {
			break
		}
	}
	return snap, nil
}
