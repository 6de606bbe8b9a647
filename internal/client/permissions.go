package client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"occtl/internal/logging"
	"occtl/internal/types"
)

// RespondPermission sends the operator's (or the auto-approver's) decision
// for one pending permission request.
func (c *Client) RespondPermission(ctx context.Context, sessionID, permissionID string, response types.PermissionResponse) error {
	sessionID = strings.TrimSpace(sessionID)
	permissionID = strings.TrimSpace(permissionID)
	if sessionID == "" || permissionID == "" {
		return errors.New("session id and permission id are required")
	}
	if !response.Valid() {
		return errors.New("permission response must be once, always or reject")
	}
	path := "/session/" + sessionID + "/permissions/" + permissionID
	if err := c.doJSON(ctx, http.MethodPost, path, nil, permissionResponseRequest{Response: response}, nil); err != nil {
		return err
	}
	c.log.Info("permission response sent",
		logging.F("session", sessionID),
		logging.F("permission", permissionID),
		logging.F("response", string(response)))
	return nil
}
