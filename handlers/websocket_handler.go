package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/inkzone/bracket-engine/brackets"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers subscribe from the frontend origin; tightening this is a
	// deployment concern.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *brackets.Hub
}

func NewWebSocketHandler(hub *brackets.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// SubscribeStage upgrades the connection and joins the stage's room. The
// client receives every event broadcast for that stage until it disconnects.
func (h *WebSocketHandler) SubscribeStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	client := brackets.NewClient(h.hub, conn, stageID)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
