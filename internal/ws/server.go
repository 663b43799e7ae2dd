package ws

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fathima-sithara/dm-service/internal/config"
	"github.com/fathima-sithara/dm-service/internal/dispatch"
	"github.com/fathima-sithara/dm-service/internal/metrics"
	"github.com/fathima-sithara/dm-service/internal/presence"
	"github.com/fathima-sithara/dm-service/internal/userdir"
)

// Server owns the websocket side: one connection per user, registered in the
// hub for the lifetime of the socket, frames fed to the dispatcher.
type Server struct {
	hub        *Hub
	dispatcher *dispatch.Dispatcher
	users      userdir.Directory
	presence   *presence.Store // optional
	cfg        *config.Config
	log        *zap.SugaredLogger
}

func NewServer(hub *Hub, d *dispatch.Dispatcher, users userdir.Directory, pres *presence.Store, cfg *config.Config, log *zap.SugaredLogger) *Server {
	return &Server{hub: hub, dispatcher: d, users: users, presence: pres, cfg: cfg, log: log}
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// HandleWS runs for the lifetime of one connection. Identity comes from the
// path and is trusted as authenticated upstream; the directory is only
// consulted to check that the id exists.
func (s *Server) HandleWS() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		userID := conn.Params("user_id")
		if userID == "" {
			_ = conn.Close()
			return
		}

		ctx := context.Background()
		ok, err := s.users.Exists(ctx, userID)
		if err != nil {
			s.log.Errorw("user lookup", "user", userID, "err", err)
			_ = conn.Close()
			return
		}
		if !ok {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"Unknown user"}`))
			_ = conn.Close()
			return
		}

		socketID := uuid.New().String()
		client := NewClient(conn, userID, socketID, s.cfg.WS.SendBuffer)

		s.hub.Register(userID, client)
		metrics.OpenConnections.Inc()
		if s.presence != nil {
			if err := s.presence.SetOnline(ctx, userID, socketID); err != nil {
				s.log.Warnw("presence online", "user", userID, "err", err)
			}
		}
		s.log.Infow("client connected", "user", userID, "socket", socketID)

		go client.WritePump(s.cfg.PingInterval, s.cfg.WriteDeadline)

		conn.SetReadLimit(s.cfg.WS.MaxMessageSizeBytes)
		for {
			mt, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if mt != websocket.TextMessage {
				continue
			}
			reply := s.dispatcher.Dispatch(ctx, userID, raw)
			if !client.TrySend(reply) {
				break
			}
		}

		// unregister before closing so a displaced connection cannot race
		// the newer one; the guard in Unregister covers the rest
		s.hub.Unregister(userID, client)
		metrics.OpenConnections.Dec()
		if s.presence != nil {
			if err := s.presence.SetOffline(context.Background(), userID, socketID); err != nil {
				s.log.Warnw("presence offline", "user", userID, "err", err)
			}
		}
		client.Close()
		s.log.Infow("client disconnected", "user", userID, "socket", socketID)
	}
}
