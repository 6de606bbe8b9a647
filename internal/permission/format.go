package permission

import (
	"fmt"

	"occtl/internal/types"
)

// FormatMessage renders the operator-facing prompt for a request. A
// server-provided message wins; otherwise the category determines the text.
func FormatMessage(req types.PermissionRequest) string {
	if req.Message != "" {
		return req.Message
	}
	data := req.Data
	switch req.Type {
	case types.PermissionTool:
		tool := "unknown"
		if data != nil && data.Tool != "" {
			tool = data.Tool
		}
		return fmt.Sprintf("Allow the agent to use tool %q?", tool)
	case types.PermissionFile:
		if data != nil && data.Path != "" {
			return fmt.Sprintf("Allow the agent to access %q?", data.Path)
		}
		return "Allow the agent to access this file?"
	case types.PermissionCommand:
		if data != nil && data.Command != "" {
			return fmt.Sprintf("Allow the agent to execute command: %s?", data.Command)
		}
		return "Allow the agent to execute this command?"
	case types.PermissionNetwork:
		return "Allow the agent to make network requests?"
	case types.PermissionShell:
		return "Allow the agent to access shell commands?"
	default:
		return fmt.Sprintf("Allow the agent to perform action: %s?", req.Type)
	}
}
