package app

import "github.com/vancomm/minesweeper-engine/internal/handlers"

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(a.logger, a.sessions, a.ws)

	a.router.HandleFunc("GET /healthz", handlers.Healthz)

	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("POST /game/{id}/move", game.MakeAMove)
	a.router.HandleFunc("POST /game/{id}/reset", game.Reset)
	a.router.HandleFunc("DELETE /game/{id}", game.Close)
	a.router.HandleFunc("GET /game/{id}/connect", game.ConnectWS)

	if a.repo == nil {
		return
	}

	records := handlers.NewRecordsHandler(a.logger, a.repo)
	a.router.HandleFunc("GET /records", records.Highscores)

	if a.jwt == nil {
		return
	}

	auth := handlers.NewAuth(a.logger, a.repo, a.cookies, a.jwt)
	a.router.HandleFunc("POST /auth/register", auth.Register)
	a.router.HandleFunc("POST /auth/login", auth.Login)
	a.router.HandleFunc("POST /auth/logout", auth.Logout)
	a.router.HandleFunc("GET /auth/status", auth.Status)
}
