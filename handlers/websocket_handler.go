package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/battled-crew/battled-system/battles"
	"github.com/battled-crew/battled-system/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin once it is deployed.
		return true
	},
}

type WebSocketHandler struct {
	hub               *battles.Hub
	tournamentService services.TournamentService
	logger            *slog.Logger
}

func NewWebSocketHandler(hub *battles.Hub, tournamentService services.TournamentService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: tournamentService,
		logger:            logger,
	}
}

// ServeWs upgrades the connection and subscribes it to the tournament's
// event room (battle starts, results, phase changes).
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.tournamentService.GetTournament(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := battles.NewClient(h.hub, conn, tournamentID)
	client.Register()
}
