package enums

import "fmt"

// LineAction maps to the line_action enum in Postgres. It is only meaningful
// for package orders; simple product lines stay on the default.
type LineAction string

const (
	LineActionBase    LineAction = "base"
	LineActionAdded   LineAction = "added"
	LineActionRemoved LineAction = "removed"
)

var validLineActions = []LineAction{
	LineActionBase,
	LineActionAdded,
	LineActionRemoved,
}

// IsValid reports whether the value matches the canonical line_action enum.
func (a LineAction) IsValid() bool {
	for _, candidate := range validLineActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseLineAction converts raw input into LineAction.
func ParseLineAction(value string) (LineAction, error) {
	for _, candidate := range validLineActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line action %q", value)
}
