package scheduling

import (
	"net/url"
	"regexp"
	"time"
)

var (
	phonePattern  = regexp.MustCompile(`^\d{10,11}$`)
	cepPattern    = regexp.MustCompile(`^\d{8}$`)
	digitsPattern = regexp.MustCompile(`\D`)
)

// NormalizePhone strips everything that is not a digit.
func NormalizePhone(raw string) string {
	return digitsPattern.ReplaceAllString(raw, "")
}

// ValidPhone reports whether a normalized phone has 10 or 11 digits.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidCEP reports whether a postal code has exactly 8 digits.
func ValidCEP(cep string) bool {
	return cepPattern.MatchString(cep)
}

// ValidDate reports whether date is an ISO calendar date (2006-01-02).
func ValidDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// ValidURL reports whether s parses as an absolute URL, used to vet
// meeting links before they are stored.
func ValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
