package enums

import "fmt"

// WebSyncStatus records the outcome of the most recent external push attempt
// for a sale. It is a two-state flag, not a retry queue.
type WebSyncStatus string

const (
	WebSyncUpdated WebSyncStatus = "updated"
	WebSyncFailed  WebSyncStatus = "failed"
)

var validWebSyncStatuses = []WebSyncStatus{
	WebSyncUpdated,
	WebSyncFailed,
}

// IsValid reports whether the value matches the canonical web_sync_status enum.
func (s WebSyncStatus) IsValid() bool {
	for _, candidate := range validWebSyncStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWebSyncStatus converts raw input into WebSyncStatus.
func ParseWebSyncStatus(value string) (WebSyncStatus, error) {
	for _, candidate := range validWebSyncStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid web sync status %q", value)
}
