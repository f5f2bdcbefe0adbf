package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/yourusername/elalgpt/internal/protocol"
)

// DefaultEndpoint is the hosted completion service
const DefaultEndpoint = "https://elalgpt.onrender.com" + protocol.GetResponsePath

// maxReplyBytes caps how much of a reply body is read
const maxReplyBytes = 8 << 20

// responseField is the only key read from a reply object. It is matched exactly.
const responseField = "response"

// HTTP posts each message as {"message": ...} and reads {"response": ...} back
type HTTP struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTP creates an HTTP transport. A nil client uses http.DefaultClient and a nil
// logger discards output.
func NewHTTP(endpoint string, client *http.Client, logger *zap.Logger) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTP{
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

// Endpoint returns the URL requests are posted to
func (t *HTTP) Endpoint() string {
	return t.endpoint
}

// Send implements Transport
func (t *HTTP) Send(ctx context.Context, message string) string {
	reply, err := t.Do(ctx, message)
	if err != nil {
		t.logger.Warn("chat request failed", zap.String("endpoint", t.endpoint), zap.Error(err))
		return FallbackReply
	}
	return reply
}

// Do performs the request and reports failures instead of hiding them
func (t *HTTP) Do(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(protocol.ChatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	t.logger.Debug("posting chat request", zap.String("endpoint", t.endpoint), zap.Int("bytes", len(body)))

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", t.endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	if len(data) > maxReplyBytes {
		return "", ErrReplyTooLarge
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	return decodeReply(data)
}

// decodeReply extracts the "response" string from a reply object. Keys are compared
// exactly, unlike struct decoding, so "Response" or "RESPONSE" count as missing.
func decodeReply(data []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}

	raw, ok := fields[responseField]
	if !ok || string(raw) == "null" {
		return "", ErrNoResponse
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", fmt.Errorf("decode %s field: %w", responseField, err)
	}
	return text, nil
}
