package types

type SessionStatus string

const (
	SessionStatusIdle  SessionStatus = "idle"
	SessionStatusBusy  SessionStatus = "busy"
	SessionStatusRetry SessionStatus = "retry"
)

type Session struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"projectID,omitempty"`
	Directory string     `json:"directory,omitempty"`
	ParentID  string     `json:"parentID,omitempty"`
	Title     string     `json:"title"`
	Version   string     `json:"version,omitempty"`
	Share     *ShareInfo `json:"share,omitempty"`
	Time      TimeRange  `json:"time"`
}

type ShareInfo struct {
	URL string `json:"url"`
}

// TimeRange carries server timestamps in epoch milliseconds, matching the
// wire format of the agent server.
type TimeRange struct {
	Created int64 `json:"created"`
	Updated int64 `json:"updated,omitempty"`
}
