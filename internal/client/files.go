package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"occtl/internal/types"
)

// ListFiles lists the entries under path. On failure the empty-safe slice is
// returned alongside the error so callers can tell "empty" from "failed".
func (c *Client) ListFiles(ctx context.Context, path string) ([]types.FileEntry, error) {
	entries := make([]types.FileEntry, 0)
	query := url.Values{"path": {path}}
	if err := c.doJSON(ctx, http.MethodGet, "/file", query, nil, &entries); err != nil {
		return []types.FileEntry{}, err
	}
	return entries, nil
}

func (c *Client) ReadFile(ctx context.Context, path string) (*types.FileContent, error) {
	if path == "" {
		return nil, errors.New("file path is required")
	}
	var content types.FileContent
	query := url.Values{"path": {path}}
	if err := c.doJSON(ctx, http.MethodGet, "/file/content", query, nil, &content); err != nil {
		return nil, err
	}
	if content.Path == "" {
		content.Path = path
	}
	return &content, nil
}
