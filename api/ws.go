package api

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"live-dashboard/live"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is sent by the server as "snapshot", "update", "removed" or
// "closed". Clients may send "snapshot" to ask for a full resend.
type wsMessage struct {
	Type   string       `json:"type"`
	Views  []live.View  `json:"views,omitempty"`
	Update *live.Update `json:"update,omitempty"`
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("client", uuid.NewString()))
	log.Debug("live client connected")
	defer log.Debug("live client disconnected")

	// Serialise all WebSocket writes; gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}
	snapshot := func() error {
		return writeMsg(wsMessage{Type: "snapshot", Views: h.board.Views()})
	}

	updates, unsubscribe := h.board.Subscribe()
	defer unsubscribe()

	if err := snapshot(); err != nil {
		log.Debug("ws snapshot failed", zap.Error(err))
		return
	}

	// Pump board updates to the client. The channel closes when the client
	// goes away (unsubscribe) or the board stops.
	go func() {
		for u := range updates {
			msg := wsMessage{Type: "update", Update: &u}
			if u.Removed {
				msg.Type = "removed"
			}
			if err := writeMsg(msg); err != nil {
				conn.Close()
				return
			}
		}
		writeMsg(wsMessage{Type: "closed"}) //nolint:errcheck
		conn.Close()
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "snapshot" {
			if err := snapshot(); err != nil {
				return
			}
		}
	}
}
