package model

import "strings"

// ToolType selects the portal offer flavour a tool is subscribed through.
type ToolType string

const (
	ToolTypeApp     ToolType = "app"
	ToolTypeService ToolType = "service"
	ToolTypeOther   ToolType = "other"
)

// SelectedTool identifies the downstream package/offer a run targets.
type SelectedTool struct {
	Tool  string   `json:"tool"`
	Label string   `json:"label"`
	Type  ToolType `json:"type"`
}

// IsApp reports whether the tool is subscribed as a portal app.
func (t SelectedTool) IsApp() bool {
	return strings.EqualFold(string(t.Type), string(ToolTypeApp))
}

// WorkflowAction selects the orchestration direction.
type WorkflowAction string

const (
	ActionCreate WorkflowAction = "CREATE"
	ActionUpdate WorkflowAction = "UPDATE"
	ActionDelete WorkflowAction = "DELETE"
)

// Valid reports whether a is one of the known actions.
func (a WorkflowAction) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}
