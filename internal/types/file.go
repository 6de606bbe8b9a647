package types

type FileEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Directory bool   `json:"directory"`
	Size      int64  `json:"size,omitempty"`
}

type FileContent struct {
	Path    string `json:"path"`
	Type    string `json:"type,omitempty"`
	Content string `json:"content"`
}
