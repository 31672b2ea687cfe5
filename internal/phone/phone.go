package phone

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	italianPattern = regexp.MustCompile(`^\+39[0-9]{9,10}$`)
	inputPattern   = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
)

var separators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "\t", "")

// NormalizePhone converts an Italian phone number to +39XXXXXXXXX format.
// Numbers of other countries, or anything that does not look like a phone
// number, normalize to the empty string.
func NormalizePhone(raw string) string {
	phoneNumber := separators.Replace(strings.TrimSpace(raw))
	if phoneNumber == "" {
		return ""
	}

	// 0039... is the international dialing form of +39...
	if strings.HasPrefix(phoneNumber, "00") {
		phoneNumber = "+" + phoneNumber[2:]
	}

	switch {
	case strings.HasPrefix(phoneNumber, "+"):
		// already international, only +39 survives the final check
	case strings.HasPrefix(phoneNumber, "39") && (len(phoneNumber) == 11 || len(phoneNumber) == 12):
		phoneNumber = "+" + phoneNumber
	case (strings.HasPrefix(phoneNumber, "3") || strings.HasPrefix(phoneNumber, "0")) &&
		(len(phoneNumber) == 9 || len(phoneNumber) == 10):
		phoneNumber = "+39" + phoneNumber
	}

	if !italianPattern.MatchString(phoneNumber) {
		return ""
	}
	return phoneNumber
}

// Clean strips the separators a guest may type (spaces, dashes, parentheses)
func Clean(raw string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
}

// ValidatePhone reports whether raw is an acceptable contact number for the
// RSVP form: optional +, then 8 to 15 digits.
func ValidatePhone(raw string) bool {
	return inputPattern.MatchString(Clean(raw))
}

// Digits keeps only 0-9, the format WhatsApp uses for JIDs
func Digits(phoneNumber string) string {
	var b strings.Builder
	for _, r := range phoneNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WhatsAppLink builds a click-to-chat URL with an optional prefilled text
func WhatsAppLink(phoneNumber, text string) string {
	link := "https://wa.me/" + Digits(phoneNumber)
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}
