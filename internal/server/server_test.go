package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/elalgpt/internal/client/transport"
	"github.com/yourusername/elalgpt/internal/protocol"
)

func newTestRouter(t *testing.T, r Responder) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewServer(r, nil, time.Second).Router()
}

func doRequest(t *testing.T, router *gin.Engine, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, protocol.GetResponsePath, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func upper(_ context.Context, message string) (string, error) {
	return strings.ToUpper(message), nil
}

func TestGetResponse(t *testing.T) {
	router := newTestRouter(t, ResponderFunc(upper))

	rec := doRequest(t, router, http.MethodPost, `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp protocol.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Response)
	assert.Equal(t, "HELLO", *resp.Response)
}

func TestGetResponseErrors(t *testing.T) {
	failing := ResponderFunc(func(context.Context, string) (string, error) {
		return "", errors.New("upstream down")
	})

	tests := []struct {
		name      string
		responder Responder
		method    string
		body      string
		want      int
	}{
		{"get", Echo, http.MethodGet, "", http.StatusMethodNotAllowed},
		{"put", Echo, http.MethodPut, `{"message": "hi"}`, http.StatusMethodNotAllowed},
		{"malformed json", Echo, http.MethodPost, `{"message":`, http.StatusBadRequest},
		{"wrong type", Echo, http.MethodPost, `{"message": 42}`, http.StatusBadRequest},
		{"blank message", Echo, http.MethodPost, `{"message": "   "}`, http.StatusBadRequest},
		{"missing message", Echo, http.MethodPost, `{}`, http.StatusBadRequest},
		{"responder failure", failing, http.MethodPost, `{"message": "hi"}`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, newTestRouter(t, tt.responder), tt.method, tt.body)
			assert.Equal(t, tt.want, rec.Code)

			var resp protocol.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestResponderTimeout(t *testing.T) {
	slow := ResponderFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	gin.SetMode(gin.TestMode)
	router := NewServer(slow, nil, 10*time.Millisecond).Router()

	rec := doRequest(t, router, http.MethodPost, `{"message": "hi"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWebSocketAnswersByID(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, ResponderFunc(upper)))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + protocol.WebSocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for id, text := range map[string]string{"a": "one", "b": "two"} {
		data, err := protocol.EncodeMessage(protocol.MsgChatRequest, protocol.ChatRequestPayload{ID: id, Message: text})
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
	}

	got := map[string]string{}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for len(got) < 2 {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		msg, err := protocol.DecodeMessage(data)
		require.NoError(t, err)
		require.Equal(t, protocol.MsgChatResponse, msg.Type)

		var payload protocol.ChatResponsePayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		got[payload.ID] = payload.Response
	}
	assert.Equal(t, map[string]string{"a": "ONE", "b": "TWO"}, got)
}

func TestWebSocketReportsErrors(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, Echo))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + protocol.WebSocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	readError := func() protocol.ErrorPayload {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		msg, err := protocol.DecodeMessage(data)
		require.NoError(t, err)
		require.Equal(t, protocol.MsgError, msg.Type)
		var payload protocol.ErrorPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		return payload
	}

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Empty(t, readError().ID)

	data, err := protocol.EncodeMessage(protocol.MsgChatRequest, protocol.ChatRequestPayload{ID: "x", Message: " "})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
	payload := readError()
	assert.Equal(t, "x", payload.ID)
	assert.Equal(t, ErrEmptyMessage.Error(), payload.Message)
}

func TestClientTransportsAgainstServer(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, ResponderFunc(upper)))
	defer srv.Close()
	ctx := context.Background()

	httpTr := transport.NewHTTP(srv.URL+protocol.GetResponsePath, srv.Client(), nil)
	assert.Equal(t, "PING", httpTr.Send(ctx, "ping"))

	wsTr := transport.NewWebSocket("ws"+strings.TrimPrefix(srv.URL, "http")+protocol.WebSocketPath, nil)
	defer wsTr.Close()
	assert.Equal(t, "PONG", wsTr.Send(ctx, "pong"))
	assert.Equal(t, transport.FallbackReply, wsTr.Send(ctx, "  "))
}

func TestNewGemini(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "")
	assert.Error(t, err)

	g, err := NewGemini(context.Background(), "test-key", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, g.Model())
}
