package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/elalgpt/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second    //time allowed to read the next pong message from client
	pingPeriod     = (pongWait * 9) / 10 //send pings to client with this period. must be less than pongWait
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{ //upgrade HTTP connections to WebSocket connections
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // terminal clients send no Origin
	},
}

// Client represents a WebSocket client
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger

	// canceled when the connection goes away so in-flight completions stop
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// HandleWebSocket upgrades the request and serves chat requests on it
func (s *Server) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		ID:     uuid.New().String(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
	client.logger = s.logger.With(zap.String("client", client.ID))
	client.logger.Debug("client connected")

	go client.writePump()
	go client.readPump(s)
}

// readPump reads requests until the connection fails, then tears the client down
func (c *Client) readPump(s *Server) {
	defer func() {
		c.cancel()
		c.wg.Wait()
		c.close()
		c.logger.Debug("client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket error", zap.Error(err))
			}
			break
		}

		c.handleMessage(s, message)
	}
}

// writePump pumps queued replies to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// one envelope per frame; the client decodes each frame as a single message
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// handleMessage handles incoming messages from the client
func (c *Client) handleMessage(s *Server, data []byte) {
	msg, err := protocol.DecodeMessage(data)
	if err != nil {
		c.logger.Debug("error decoding message", zap.Error(err))
		c.reply(protocol.MsgError, protocol.ErrorPayload{Message: "malformed message"})
		return
	}

	switch msg.Type {
	case protocol.MsgChatRequest:
		var payload protocol.ChatRequestPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.reply(protocol.MsgError, protocol.ErrorPayload{Message: "malformed chat request"})
			return
		}

		// requests are answered concurrently; the ID lets the client match replies
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.answer(s, payload)
		}()

	default:
		c.reply(protocol.MsgError, protocol.ErrorPayload{Message: "unknown message type " + string(msg.Type)})
	}
}

func (c *Client) answer(s *Server, req protocol.ChatRequestPayload) {
	text, err := s.respond(c.ctx, req.Message)
	if err != nil {
		c.logger.Warn("responder failed", zap.String("id", req.ID), zap.Error(err))
		c.reply(protocol.MsgError, protocol.ErrorPayload{ID: req.ID, Message: err.Error()})
		return
	}
	c.reply(protocol.MsgChatResponse, protocol.ChatResponsePayload{ID: req.ID, Response: text})
}

// reply queues an envelope for writePump. Replies for a closed client are dropped.
func (c *Client) reply(msgType protocol.MessageType, payload interface{}) {
	data, err := protocol.EncodeMessage(msgType, payload)
	if err != nil {
		c.logger.Error("encode reply", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, dropping reply")
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
