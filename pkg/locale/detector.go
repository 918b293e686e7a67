// Package locale infers guest locale data that clients do not always send.
package locale

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// InferCountryFromPhone returns the ISO 3166-1 alpha-2 region of an E.164
// number, or "" when the number cannot be attributed to a single region.
func InferCountryFromPhone(phone string) string {
	normalized := strings.TrimSpace(phone)
	if !strings.HasPrefix(normalized, "+") {
		return ""
	}

	number, err := phonenumbers.Parse(normalized, "")
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return ""
	}

	region := phonenumbers.GetRegionCodeForNumber(number)
	if region == "" || region == "ZZ" || region == "001" {
		return ""
	}
	return region
}

// GuestCountry prefers the country the guest declared and falls back to the
// phone number's region.
func GuestCountry(declared, phone string) string {
	if declared = strings.ToUpper(strings.TrimSpace(declared)); declared != "" {
		return declared
	}
	return InferCountryFromPhone(phone)
}
