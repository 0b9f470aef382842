package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/session"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var (
	ErrUnknownOp = errors.New("unknown op")
	ErrRejected  = errors.New("change rejected")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type (
	// Command is what a board client sends over the websocket.
	Command struct {
		Op     string        `json:"op"`
		Code   currency.Code `json:"code,omitempty"`
		From   int           `json:"from,omitempty"`
		To     int           `json:"to,omitempty"`
		Amount string        `json:"amount,omitempty"`
	}

	client struct {
		conn    *websocket.Conn
		session *session.Session
		logger  log.Logger
		errs    chan errorResponse
		once    sync.Once
	}
)

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		level.Warn(s.logger).Log("msg", "failed to upgrade websocket", "err", err)
		return
	}

	sess, err := session.New(s.ctx, s.board)
	if err != nil {
		level.Error(s.logger).Log("msg", "cannot start board", "err", err)
		_ = conn.WriteJSON(errorResponse{Error: err.Error()})
		_ = conn.Close()
		return
	}

	s.lock.Lock()
	s.sessions[sess.ID] = sess
	s.lock.Unlock()

	cl := &client{
		conn:    conn,
		session: sess,
		logger:  log.With(s.logger, "session", sess.ID),
		errs:    make(chan errorResponse, 8),
	}

	level.Debug(cl.logger).Log("msg", "board connected", "remote", c.ClientIP())

	go func() {
		<-sess.Done()

		s.lock.Lock()
		delete(s.sessions, sess.ID)
		s.lock.Unlock()

		level.Debug(cl.logger).Log("msg", "board disconnected")
	}()

	go cl.writePump()
	go cl.readPump()
}

func (c *client) close() {
	c.once.Do(func() {
		c.session.Close()
		_ = c.conn.Close()
	})
}

func (c *client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				level.Info(c.logger).Log("msg", "websocket error", "err", err)
			}

			return
		}

		if err := c.handle(message); err != nil {
			select {
			case c.errs <- errorResponse{Error: err.Error()}:
			default:
			}
		}
	}
}

func (c *client) handle(message []byte) error {
	var cmd Command

	if err := json.Unmarshal(message, &cmd); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	var ok bool

	switch cmd.Op {
	case "add":
		ok = c.session.Add(cmd.Code)
	case "remove":
		ok = c.session.Remove(cmd.Code)
	case "reorder":
		ok = c.session.Reorder(cmd.From, cmd.To)
	case "focus":
		ok = c.session.Focus(cmd.Code)
	case "amount":
		return c.session.SetAmount(cmd.Amount)
	case "refresh":
		return c.session.Refresh()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, cmd.Op)
	}

	if !ok {
		return fmt.Errorf("%w: %s", ErrRejected, cmd.Op)
	}

	return nil
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	boards, unsubscribe := c.session.Subscribe()

	defer func() {
		ticker.Stop()
		unsubscribe()
		c.close()
	}()

	for {
		var payload interface{}

		select {
		case board, ok := <-boards:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload = board
		case e := <-c.errs:
			payload = e
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

			continue
		}

		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(payload); err != nil {
			level.Debug(c.logger).Log("msg", "write error", "err", err)
			return
		}
	}
}
