package models

// Role identifies who authored a conversation turn.
type Role string

const (
	// RoleUser is a turn written by the caller.
	RoleUser Role = "user"
	// RoleAgent is a turn written by the generation backend.
	RoleAgent Role = "agent"
)

// Valid returns true if the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAgent:
		return true
	default:
		return false
	}
}

// Turn is one role/content pair sent to the generation backend.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// UserTurn builds a single user turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// Usage records token consumption for a single generation call.
type Usage struct {
	PromptUnits     int `json:"prompt_units" yaml:"prompt_units"`
	CompletionUnits int `json:"completion_units" yaml:"completion_units"`
}

// Total returns the sum of prompt and completion units.
func (u Usage) Total() int {
	return u.PromptUnits + u.CompletionUnits
}

// GenerationResult is the reply from a generation call.
type GenerationResult struct {
	Reply string `json:"reply" yaml:"reply"`
	Usage Usage  `json:"usage" yaml:"usage"`
}
