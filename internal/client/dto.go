package client

import "occtl/internal/types"

type createSessionRequest struct {
	Title    string `json:"title"`
	ParentID string `json:"parentID,omitempty"`
}

type updateSessionRequest struct {
	Title string `json:"title"`
}

type promptRequest struct {
	Parts []types.Part `json:"parts"`
}

type permissionResponseRequest struct {
	Response types.PermissionResponse `json:"response"`
}

type sessionStatusInfo struct {
	Type types.SessionStatus `json:"type"`
}

// messageEnvelope is the wire shape of a message: metadata under info, body
// segments under parts.
type messageEnvelope struct {
	Info  types.Message `json:"info"`
	Parts []types.Part  `json:"parts"`
}

func (e messageEnvelope) flatten() types.Message {
	msg := e.Info
	msg.Parts = e.Parts
	return msg
}
