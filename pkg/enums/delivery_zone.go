package enums

import "fmt"

// DeliveryZone maps to the delivery_zone enum in Postgres.
type DeliveryZone string

const (
	DeliveryZoneCity     DeliveryZone = "city"
	DeliveryZoneSuburb   DeliveryZone = "suburb"
	DeliveryZoneRegional DeliveryZone = "regional"
)

var validDeliveryZones = []DeliveryZone{
	DeliveryZoneCity,
	DeliveryZoneSuburb,
	DeliveryZoneRegional,
}

// IsValid reports whether the value matches the canonical delivery_zone enum.
func (z DeliveryZone) IsValid() bool {
	for _, candidate := range validDeliveryZones {
		if candidate == z {
			return true
		}
	}
	return false
}

// ParseDeliveryZone converts raw input into DeliveryZone.
func ParseDeliveryZone(value string) (DeliveryZone, error) {
	for _, candidate := range validDeliveryZones {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery zone %q", value)
}
