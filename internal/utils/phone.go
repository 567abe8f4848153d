package utils

import (
	"regexp"
	"strings"
)

var mobilePattern = regexp.MustCompile(`^(?:\+92|92|0)?(3\d{9})$`)

// NormalizePhone converts a Pakistani mobile number in local (03xx), national (92xx)
// or international (+92xx) form into +923xxxxxxxxx.
func NormalizePhone(input string) (string, bool) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(input))
	match := mobilePattern.FindStringSubmatch(cleaned)
	if match == nil {
		return "", false
	}
	return "+92" + match[1], true
}

// MaskPhone hides all but the last four digits, for logs and OTP responses.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
