package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"occtl/internal/logging"
	"occtl/internal/types"
)

func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]types.Message, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	envelopes := make([]messageEnvelope, 0)
	if err := c.doJSON(ctx, http.MethodGet, "/session/"+sessionID+"/message", nil, nil, &envelopes); err != nil {
		return nil, err
	}
	messages := make([]types.Message, 0, len(envelopes))
	for _, envelope := range envelopes {
		messages = append(messages, envelope.flatten())
	}
	c.log.Debug("messages listed",
		logging.F("session", sessionID),
		logging.F("count", len(messages)))
	return messages, nil
}

func (c *Client) GetMessage(ctx context.Context, sessionID, messageID string) (*types.Message, error) {
	sessionID = strings.TrimSpace(sessionID)
	messageID = strings.TrimSpace(messageID)
	if sessionID == "" || messageID == "" {
		return nil, errors.New("session id and message id are required")
	}
	var envelope messageEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/session/"+sessionID+"/message/"+messageID, nil, nil, &envelope); err != nil {
		return nil, err
	}
	msg := envelope.flatten()
	return &msg, nil
}

// SendMessage submits a prompt to the session. The returned message is a
// local placeholder; the authoritative message arrives over the event stream.
func (c *Client) SendMessage(ctx context.Context, sessionID, text string) (*types.Message, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	if text == "" {
		return nil, errors.New("message text is required")
	}
	req := promptRequest{
		Parts: []types.Part{{Type: "text", Text: text}},
	}
	if err := c.doJSON(ctx, http.MethodPost, "/session/"+sessionID+"/message", nil, req, nil); err != nil {
		return nil, err
	}
	c.log.Info("message sent", logging.F("session", sessionID))
	return &types.Message{
		ID:        "local-" + ulid.Make().String(),
		SessionID: sessionID,
		Role:      types.RoleUser,
		Time:      types.MessageTime{Created: time.Now().UnixMilli()},
		Content:   text,
	}, nil
}
