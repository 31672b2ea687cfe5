package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"wedding-invitations/internal/phone"
)

// GenerateSlug builds the invitation code from the household name and its
// phone number, e.g. "Mario Rossi" + "+393201234567" -> "mario-rossi-393201234567".
func GenerateSlug(name, phoneNumber string) string {
	parts := make([]string, 0, 2)
	if s := slugify(name); s != "" {
		parts = append(parts, s)
	}
	if d := phone.Digits(phoneNumber); d != "" {
		parts = append(parts, d)
	}
	return strings.Join(parts, "-")
}

func slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	dash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
