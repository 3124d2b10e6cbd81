package seek

import (
	"regexp"
	"strings"
	"unicode"
)

// Contact is one entry of a job ad's contactMatches list.
type Contact struct {
	Type  string // "Email" or "Phone"
	Value string
}

var emailRe = regexp.MustCompile(`[\p{L}\p{N}_.\-]+@[\p{L}\p{N}_.\-]+`)

const emailTrimChars = "!@#$%^&*()_+-=,./<>?;:'\"[]{}\\|`~"

// ExtractContacts cleans the email and phone entries of a contact list.
// Either result is nil when no entry of that type survives cleaning, never an
// empty non-nil slice.
func ExtractContacts(entries []Contact) (emails, phones []string) {
	for _, c := range entries {
		switch c.Type {
		case "Email":
			if e := CleanEmail(c.Value); e != "" {
				emails = append(emails, e)
			}
		case "Phone":
			if p := CleanPhone(c.Value); p != "" {
				phones = append(phones, p)
			}
		}
	}
	return emails, phones
}

// CleanEmail extracts the first address-like token from s. Returns "" when s
// holds no '@' address.
func CleanEmail(s string) string {
	s = strings.ReplaceAll(s, "&nbsp;", "")
	s = strings.Join(strings.Fields(s), "")
	m := emailRe.FindString(s)
	if m == "" {
		return ""
	}
	m = strings.Trim(m, emailTrimChars)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		switch r {
		case '@', '.', '_', '-':
			return r
		}
		return -1
	}, m)
}

// CleanPhone keeps the letters, digits and '+' of s.
func CleanPhone(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' {
			return r
		}
		return -1
	}, s)
}

// contactsFromPayload reads contactMatches entries of the form
// {"type": "Email", "value": "..."}. Malformed entries are skipped.
func contactsFromPayload(v any) []Contact {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []Contact
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		typ, _ := m["type"].(string)
		val, _ := m["value"].(string)
		if typ == "" || val == "" {
			continue
		}
		out = append(out, Contact{Type: typ, Value: val})
	}
	return out
}
