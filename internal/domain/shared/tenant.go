package shared

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// TenantID is the opaque key scoping every record to one business.
// Tenants register with a phone number, so by default the key is a phone
// number normalized to E.164.
type TenantID string

// String returns the string representation of TenantID
func (t TenantID) String() string {
	return string(t)
}

// IsZero reports whether the tenant key is empty
func (t TenantID) IsZero() bool {
	return strings.TrimSpace(string(t)) == ""
}

// TenantKeyPolicy controls how raw tenant keys are validated
type TenantKeyPolicy struct {
	// DefaultRegion is the libphonenumber region used for numbers without a country prefix
	DefaultRegion string
	// RequirePhone rejects keys that are not valid phone numbers
	RequirePhone bool
}

// DefaultTenantKeyPolicy returns the policy used when none is configured
func DefaultTenantKeyPolicy() TenantKeyPolicy {
	return TenantKeyPolicy{
		DefaultRegion: "IN",
		RequirePhone:  true,
	}
}

// ParseTenantID validates a raw tenant key and returns its canonical form.
func ParseTenantID(raw string, policy TenantKeyPolicy) (TenantID, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", NewValidationError("Tenant key is required")
	}
	if !policy.RequirePhone {
		return TenantID(key), nil
	}

	num, err := libphonenumber.Parse(key, policy.DefaultRegion)
	if err != nil {
		return "", NewValidationError("Tenant key is not a phone number")
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", NewValidationError("Tenant key is not a valid phone number")
	}

	return TenantID(libphonenumber.Format(num, libphonenumber.E164)), nil
}
