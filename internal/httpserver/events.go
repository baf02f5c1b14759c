// internal/httpserver/events.go
//
// GET /game/events upgrades to a websocket that streams session snapshots
// (state changes, boss timer ticks, damage flash) and accepts key presses:
//   {"type":"guess","letter":"a"}
//   {"type":"hint"}

package httpserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

type eventMsg struct {
	Type   string `json:"type"`
	Letter string `json:"letter,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == s.cfg.ClientOrigin || !s.cfg.IsProduction()
		},
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	var hdr http.Header
	if c := w.Header().Values("Set-Cookie"); len(c) > 0 {
		hdr = http.Header{"Set-Cookie": c}
	}
	conn, err := s.upgrader().Upgrade(w, r, hdr)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sess := s.reg.GetOrCreate(player)
	snaps, cancel := sess.Subscribe()
	defer cancel()

	// reader: client key presses
	input := make(chan eventMsg)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(input)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			var msg eventMsg
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case input <- msg:
			case <-done:
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-input:
			if !ok {
				return
			}
			switch msg.Type {
			case "guess":
				sess.Guess(msg.Letter)
			case "hint":
				sess.BuyHint()
			default:
				log.Debug().Str("type", msg.Type).Msg("websocket: unknown message")
			}

		case snap, ok := <-snaps:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
