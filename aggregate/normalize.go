package aggregate

import (
	"fmt"
	"strings"
	"unicode"
)

// legalSuffixes are legal-entity tokens stripped from the end of a company
// name before identity comparison, so "Acme Co" and "ACME CO." match.
var legalSuffixes = map[string]struct{}{
	"inc":     {},
	"llc":     {},
	"corp":    {},
	"co":      {},
	"company": {},
	"ltd":     {},
}

// Normalize lowercases s, replaces punctuation with spaces, collapses
// internal whitespace, and trims. Used for every DedupKey component.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeName normalizes a company name for identity comparison:
// Normalize plus stripping a closing run of legal-entity suffix tokens.
// The name is never stripped to empty; a name that is nothing but suffix
// tokens keeps its last token.
func NormalizeName(s string) string {
	words := strings.Fields(Normalize(s))
	for len(words) > 1 {
		if _, ok := legalSuffixes[words[len(words)-1]]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// NormalizePhone canonicalizes US phone numbers to "(713) 555-0100".
// Eleven digits with a leading 1 drop the country code; anything else is
// returned trimmed but untouched.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	var digits []byte
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}

	switch {
	case len(digits) == 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	case len(digits) == 11 && digits[0] == '1':
		return fmt.Sprintf("(%s) %s-%s", digits[1:4], digits[4:7], digits[7:])
	}
	return phone
}

// NormalizeURL trims a URL and prefixes https:// when no scheme is present.
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "https://" + url
	}
	return url
}
