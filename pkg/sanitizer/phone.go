package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Numbers without a country prefix are read as local to these regions, in order.
var supportedRegions = []string{
	"MV",
	"US",
}

func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsedNumber) {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164)
		}
	}
	return ""
}
