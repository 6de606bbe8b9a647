package types

type PermissionType string

const (
	PermissionTool    PermissionType = "tool"
	PermissionFile    PermissionType = "file"
	PermissionCommand PermissionType = "command"
	PermissionNetwork PermissionType = "network"
	PermissionShell   PermissionType = "shell"
)

type PermissionResponse string

const (
	// ResponseOnce grants the single current request and is never remembered.
	ResponseOnce PermissionResponse = "once"
	// ResponseAlways grants the request and every future request with the
	// same session and type.
	ResponseAlways PermissionResponse = "always"
	ResponseReject PermissionResponse = "reject"
)

func (r PermissionResponse) Valid() bool {
	switch r {
	case ResponseOnce, ResponseAlways, ResponseReject:
		return true
	}
	return false
}

type PermissionRequest struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionID"`
	Type      PermissionType  `json:"type"`
	Message   string          `json:"message,omitempty"`
	Data      *PermissionData `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

type PermissionData struct {
	Tool    string `json:"tool,omitempty"`
	Path    string `json:"path,omitempty"`
	Command string `json:"command,omitempty"`
}

// PermissionDecision is one entry of the persisted decision history. Entries
// are only written for always and reject responses.
type PermissionDecision struct {
	ID        string             `json:"id"`
	SessionID string             `json:"sessionID"`
	Type      PermissionType     `json:"type"`
	Response  PermissionResponse `json:"response"`
	Timestamp int64              `json:"timestamp"`
}
