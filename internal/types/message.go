package types

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Message struct {
	ID        string        `json:"id"`
	SessionID string        `json:"sessionID"`
	Role      MessageRole   `json:"role"`
	Time      MessageTime   `json:"time"`
	Content   string        `json:"content,omitempty"`
	Parts     []Part        `json:"parts,omitempty"`
	Error     *MessageError `json:"error,omitempty"`
}

type MessageTime struct {
	Created   int64 `json:"created"`
	Completed int64 `json:"completed,omitempty"`
}

// Part is one segment of a message. Only the fields this client renders are
// modeled; the rest of the shape is provider-defined.
type Part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type MessageError struct {
	Name string           `json:"name"`
	Data MessageErrorData `json:"data"`
}

type MessageErrorData struct {
	Message string `json:"message"`
}
