package types

// JSONMap is an open key/value payload persisted as jsonb via the GORM json
// serializer. Used for channel-specific order metadata that has no schema on
// our side.
type JSONMap map[string]any

// Merge overlays other onto a copy of m and returns the result. Nil maps are
// treated as empty.
func (m JSONMap) Merge(other JSONMap) JSONMap {
	if len(m) == 0 && len(other) == 0 {
		return nil
	}
	merged := make(JSONMap, len(m)+len(other))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}
