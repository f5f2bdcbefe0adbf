package protocol // wire formats shared by the chat client and the completion service

import "encoding/json"

// GetResponsePath is the HTTP route of the completion endpoint
const GetResponsePath = "/get_response"

// WebSocketPath is the route of the optional streaming endpoint
const WebSocketPath = "/ws"

// ChatRequest is the JSON body POSTed to the completion endpoint
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the JSON body returned by the completion endpoint.
// Response is a pointer so a missing or null field can be told apart from an empty reply.
type ChatResponse struct {
	Response *string `json:"response"`
}

// NewChatResponse wraps a reply text
func NewChatResponse(text string) ChatResponse {
	return ChatResponse{Response: &text}
}

// ErrorResponse is returned by the completion service on failure
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client -> Server
	MsgChatRequest MessageType = "chat_request"

	// Server -> Client
	MsgChatResponse MessageType = "chat_response"
	MsgError        MessageType = "error"
)

// Message is the wrapper for all WebSocket messages
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ChatRequestPayload carries one user message; ID correlates the reply
type ChatRequestPayload struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ChatResponsePayload carries the reply to the request with the same ID
type ChatResponsePayload struct {
	ID       string `json:"id"`
	Response string `json:"response"`
}

// ErrorPayload contains error information. ID is empty when the error is not tied to a request.
type ErrorPayload struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// EncodeMessage encodes a message with its payload
func EncodeMessage(msgType MessageType, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	msg := Message{
		Type:    msgType,
		Payload: payloadBytes,
	}

	return json.Marshal(msg)
}

// DecodeMessage decodes a message
func DecodeMessage(data []byte) (*Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
