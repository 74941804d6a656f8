package enums

import "fmt"

// OrderSource maps to the order_source enum in Postgres.
type OrderSource string

const (
	OrderSourceInternal OrderSource = "internal"
	OrderSourceExternal OrderSource = "external"
)

var validOrderSources = []OrderSource{
	OrderSourceInternal,
	OrderSourceExternal,
}

// IsValid reports whether the value matches the canonical order_source enum.
func (s OrderSource) IsValid() bool {
	for _, candidate := range validOrderSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderSource converts raw input into OrderSource.
func ParseOrderSource(value string) (OrderSource, error) {
	for _, candidate := range validOrderSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order source %q", value)
}
