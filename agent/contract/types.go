package contract

// ToolRequest is one discrete tool invocation decided by the external
// reasoning agent and relayed through the session orchestrator.
type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult carries a textual outcome back across the tool boundary.
// Errors are descriptive text, never exceptions: the orchestrator only
// understands text results.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
