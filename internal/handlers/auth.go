package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/middleware"
	"github.com/vancomm/minesweeper-engine/internal/repository"
)

type Players interface {
	CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
}

type Auth struct {
	logger  *slog.Logger
	players Players
	cookies *config.Cookies
	jwt     *config.JWT
}

func NewAuth(
	logger *slog.Logger,
	players Players,
	cookies *config.Cookies,
	jwt *config.JWT,
) *Auth {
	return &Auth{
		logger:  logger,
		players: players,
		cookies: cookies,
		jwt:     jwt,
	}
}

type PlayerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

var (
	ErrBadAuthBody         = fmt.Errorf("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong  = fmt.Errorf("password too long")
	ErrInvalidCredentials  = fmt.Errorf("invalid username or password")
	maxPasswordLengthBytes = 72
)

func (a Auth) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		a.logger.Debug("could not parse cookies - clear cookies")
		a.cookies.Clear(w)
		sendJSONOrLog(w, a.logger, Status{LoggedIn: false})
		return
	}

	a.logger.Debug("refresh cookies")
	refreshed := a.jwt.NewPlayerClaims(claims.PlayerId, claims.Username)
	if err := a.cookies.Refresh(w, refreshed); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.logger.Error("unable to refresh cookies", slog.Any("error", err))
		return
	}
	sendJSONOrLog(w, a.logger, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{claims.PlayerId, claims.Username},
	})
}

func (a Auth) credentials(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	if err := r.ParseForm(); err != nil {
		sendStatusJSONOrLog(w, a.logger, http.StatusBadRequest, wrapError(ErrBadAuthBody))
		return "", "", false
	}
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		sendStatusJSONOrLog(w, a.logger, http.StatusBadRequest, wrapError(ErrBadAuthBody))
		return "", "", false
	}
	if len(password) > maxPasswordLengthBytes {
		sendStatusJSONOrLog(w, a.logger, http.StatusBadRequest, wrapError(ErrBadPasswordTooLong))
		return "", "", false
	}
	return username, password, true
}

func (a Auth) Register(w http.ResponseWriter, r *http.Request) {
	username, password, ok := a.credentials(w, r)
	if !ok {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.logger.Error("unable to hash password", slog.Any("error", err))
		return
	}

	player, err := a.players.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     username,
		PasswordHash: hash,
	})
	if errors.Is(err, repository.ErrUsernameTaken) {
		sendStatusJSONOrLog(w, a.logger, http.StatusConflict, wrapError(err))
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.logger.Error("unable to insert player", slog.Any("error", err))
		return
	}

	a.logIn(w, player, http.StatusCreated)
}

func (a Auth) Login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := a.credentials(w, r)
	if !ok {
		return
	}

	player, err := a.players.FetchPlayer(r.Context(), username)
	if errors.Is(err, pgx.ErrNoRows) {
		sendStatusJSONOrLog(w, a.logger, http.StatusUnauthorized, wrapError(ErrInvalidCredentials))
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.logger.Error("unable to fetch player", slog.Any("error", err))
		return
	}

	err = bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(password))
	if err != nil {
		sendStatusJSONOrLog(w, a.logger, http.StatusUnauthorized, wrapError(ErrInvalidCredentials))
		return
	}

	a.logIn(w, player, http.StatusOK)
}

func (a Auth) logIn(w http.ResponseWriter, player *repository.Player, statusCode int) {
	claims := a.jwt.NewPlayerClaims(player.PlayerId, player.Username)
	if err := a.cookies.Refresh(w, claims); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.logger.Error("unable to create a jwt token", slog.Any("error", err))
		return
	}
	sendStatusJSONOrLog(w, a.logger, statusCode, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{player.PlayerId, player.Username},
	})
}

func (a Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
