package client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"occtl/internal/logging"
	"occtl/internal/types"
)

func (c *Client) ListSessions(ctx context.Context) ([]types.Session, error) {
	sessions := make([]types.Session, 0)
	if err := c.doJSON(ctx, http.MethodGet, "/session", nil, nil, &sessions); err != nil {
		return nil, err
	}
	c.log.Debug("sessions listed", logging.F("count", len(sessions)))
	return sessions, nil
}

func (c *Client) CreateSession(ctx context.Context, title, parentID string) (*types.Session, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("session title is required")
	}
	var session types.Session
	req := createSessionRequest{Title: title, ParentID: parentID}
	if err := c.doJSON(ctx, http.MethodPost, "/session", nil, req, &session); err != nil {
		return nil, err
	}
	c.log.Info("session created", logging.F("session", session.ID))
	return &session, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*types.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("session id is required")
	}
	var session types.Session
	if err := c.doJSON(ctx, http.MethodGet, "/session/"+id, nil, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) UpdateSession(ctx context.Context, id, title string) (*types.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("session id is required")
	}
	var session types.Session
	if err := c.doJSON(ctx, http.MethodPatch, "/session/"+id, nil, updateSessionRequest{Title: title}, &session); err != nil {
		return nil, err
	}
	c.log.Info("session updated", logging.F("session", id))
	return &session, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("session id is required")
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/session/"+id, nil, nil, nil); err != nil {
		return err
	}
	c.log.Info("session deleted", logging.F("session", id))
	return nil
}

// SessionStatus reports the activity state of every known session.
func (c *Client) SessionStatus(ctx context.Context) (map[string]types.SessionStatus, error) {
	raw := make(map[string]sessionStatusInfo)
	if err := c.doJSON(ctx, http.MethodGet, "/session/status", nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]types.SessionStatus, len(raw))
	for id, info := range raw {
		out[id] = info.Type
	}
	return out, nil
}
