package models

// Priority is the urgency the assignment assistant attaches to a fault.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Suggestion is the assignment assistant's answer for a fault description.
type Suggestion struct {
	SuggestedTech string   `json:"suggestedTech"`
	Priority      Priority `json:"priority"`
	Explanation   string   `json:"explanation"`
}
