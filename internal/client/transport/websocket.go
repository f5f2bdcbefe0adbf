package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/elalgpt/internal/protocol"
)

const (
	handshakeTimeout = 10 * time.Second
	writeWait        = 10 * time.Second
)

// ErrDisconnected is returned for requests that were in flight when the connection dropped
var ErrDisconnected = errors.New("connection closed")

// result is what a waiting request receives from the read loop
type result struct {
	text string
	err  error
}

// WebSocket keeps one connection to the completion service open and multiplexes
// requests over it. Replies are matched to requests by ID, so they may arrive in
// any order. The connection is dialed lazily and redialed after it drops.
type WebSocket struct {
	url    string
	logger *zap.Logger
	dialer websocket.Dialer

	mu      sync.Mutex // guards conn and pending
	conn    *websocket.Conn
	pending map[string]chan result

	writeMu sync.Mutex // gorilla allows one concurrent writer
}

// NewWebSocket creates a WebSocket transport for a ws:// or wss:// URL
func NewWebSocket(url string, logger *zap.Logger) *WebSocket {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocket{
		url:    url,
		logger: logger,
		dialer: websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		pending: make(map[string]chan result),
	}
}

// Send implements Transport
func (w *WebSocket) Send(ctx context.Context, message string) string {
	reply, err := w.Do(ctx, message)
	if err != nil {
		w.logger.Warn("chat request failed", zap.String("url", w.url), zap.Error(err))
		return FallbackReply
	}
	return reply
}

// Do sends one chat_request and waits for its chat_response
func (w *WebSocket) Do(ctx context.Context, message string) (string, error) {
	conn, err := w.connect(ctx)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	ch := make(chan result, 1)

	w.mu.Lock()
	if w.conn != conn {
		// the read loop already gave up on this connection
		w.mu.Unlock()
		return "", ErrDisconnected
	}
	w.pending[id] = ch
	w.mu.Unlock()
	defer w.forget(id)

	data, err := protocol.EncodeMessage(protocol.MsgChatRequest, protocol.ChatRequestPayload{
		ID:      id,
		Message: message,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	if err := w.write(conn, data); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}

	select {
	case res := <-ch:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close drops the connection; requests still waiting fail with ErrDisconnected
func (w *WebSocket) Close() error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()

	if conn == nil {
		return nil
	}

	w.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	w.writeMu.Unlock()

	return conn.Close()
}

// IsConnected returns whether a connection is currently open
func (w *WebSocket) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn != nil
}

// connect returns the open connection, dialing a new one if needed
func (w *WebSocket) connect(ctx context.Context) (*websocket.Conn, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn != nil {
		return w.conn, nil
	}

	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", w.url, err)
	}
	w.conn = conn
	w.logger.Debug("websocket connected", zap.String("url", w.url))

	go w.readPump(conn)
	return conn, nil
}

func (w *WebSocket) write(conn *websocket.Conn, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (w *WebSocket) forget(id string) {
	w.mu.Lock()
	delete(w.pending, id)
	w.mu.Unlock()
}

// readPump reads replies until the connection fails, then fails every waiting request
func (w *WebSocket) readPump(conn *websocket.Conn) {
	defer func() {
		w.mu.Lock()
		if w.conn == conn {
			w.conn = nil
		}
		for id, ch := range w.pending {
			ch <- result{err: ErrDisconnected}
			delete(w.pending, id)
		}
		w.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				w.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		w.handleMessage(data)
	}
}

// handleMessage routes one server message to the request waiting for it
func (w *WebSocket) handleMessage(data []byte) {
	msg, err := protocol.DecodeMessage(data)
	if err != nil {
		w.logger.Warn("decode message", zap.Error(err))
		return
	}

	switch msg.Type {
	case protocol.MsgChatResponse:
		var payload protocol.ChatResponsePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			w.logger.Warn("decode chat response", zap.Error(err))
			return
		}
		w.deliver(payload.ID, result{text: payload.Response})

	case protocol.MsgError:
		var payload protocol.ErrorPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			w.logger.Warn("decode error payload", zap.Error(err))
			return
		}
		w.deliver(payload.ID, result{err: fmt.Errorf("server error: %s", payload.Message)})

	default:
		w.logger.Debug("unhandled message type", zap.String("type", string(msg.Type)))
	}
}

func (w *WebSocket) deliver(id string, res result) {
	w.mu.Lock()
	ch, ok := w.pending[id]
	delete(w.pending, id)
	w.mu.Unlock()

	if !ok {
		w.logger.Debug("reply for unknown request", zap.String("id", id))
		return
	}
	ch <- res
}
