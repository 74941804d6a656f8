package enums

import "fmt"

// Platform maps to the platform enum in Postgres.
type Platform string

const (
	PlatformMessenger Platform = "messenger"
	PlatformInstagram Platform = "instagram"
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformTelegram  Platform = "telegram"
)

var validPlatforms = []Platform{
	PlatformMessenger,
	PlatformInstagram,
	PlatformWhatsApp,
	PlatformTelegram,
}

// IsValid reports whether the value matches the canonical platform enum.
func (p Platform) IsValid() bool {
	for _, candidate := range validPlatforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlatform converts raw input into Platform.
func ParsePlatform(value string) (Platform, error) {
	for _, candidate := range validPlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid platform %q", value)
}
