package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/waveline/timeline/engine"
	"go.uber.org/zap"
)

// client is one websocket connection. send is owned by the broker, which
// closes it when the client goes away.
type client struct {
	conn *websocket.Conn
	send chan Message
	addr string
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan Message, clientBufferSize), addr: r.RemoteAddr}
	err = s.Submit(r.Context(), func(e *engine.Engine) {
		s.broker.add(c)
		st := e.State()
		s.broker.send(c, Message{Type: "state", State: &st})
	})
	if err != nil {
		conn.Close()
		return
	}
	s.logger.Debug("client connected", zap.String("client", c.addr))
	go s.writePump(c)
	s.readPump(c)
}

// readPump executes the commands the client sends until the connection
// breaks.
func (s *Server) readPump(c *client) {
	defer func() {
		s.Submit(context.Background(), func(*engine.Engine) { s.broker.remove(c) })
		s.logger.Debug("client disconnected", zap.String("client", c.addr))
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var cmd engine.Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", zap.String("client", c.addr), zap.Error(err))
			}
			return
		}
		err := s.Submit(context.Background(), func(e *engine.Engine) {
			if err := e.Do(context.Background(), cmd); err != nil {
				s.broker.send(c, Message{Type: "error", Error: err.Error()})
			}
		})
		if err != nil {
			return
		}
	}
}

// writePump writes queued messages and keeps the connection alive with
// pings. It closes the connection once send is closed.
func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case m, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(m); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
