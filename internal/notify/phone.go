package notify

import "strings"

// DefaultCountryCode is prepended to numbers that carry no country code.
const DefaultCountryCode = "91"

// FormatPhoneNumber keeps the digits of phone. Ten digits or fewer are treated as a
// national number and get the default country code in front of the last ten digits.
func FormatPhoneNumber(phone string) string {
	return FormatPhoneNumberWithCode(phone, DefaultCountryCode)
}

func FormatPhoneNumberWithCode(phone, countryCode string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	d := digits.String()
	if d == "" {
		return ""
	}

	if len(d) <= 10 {
		return "+" + countryCode + d
	}

	return "+" + d
}
