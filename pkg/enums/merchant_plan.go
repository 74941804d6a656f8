package enums

import "fmt"

// MerchantPlan maps to the merchant_plan enum in Postgres.
type MerchantPlan string

const (
	MerchantPlanFree       MerchantPlan = "free"
	MerchantPlanPro        MerchantPlan = "pro"
	MerchantPlanEnterprise MerchantPlan = "enterprise"
)

var validMerchantPlans = []MerchantPlan{
	MerchantPlanFree,
	MerchantPlanPro,
	MerchantPlanEnterprise,
}

// IsValid reports whether the value matches the canonical merchant_plan enum.
func (p MerchantPlan) IsValid() bool {
	for _, candidate := range validMerchantPlans {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseMerchantPlan converts raw input into MerchantPlan.
func ParseMerchantPlan(value string) (MerchantPlan, error) {
	for _, candidate := range validMerchantPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid merchant plan %q", value)
}
