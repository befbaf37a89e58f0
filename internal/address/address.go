package address

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	pincodeRe = regexp.MustCompile(`\b\d{6}\b`)
	exactRe   = regexp.MustCompile(`^\d{6}$`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Entity is one token recognised by a NER model.
type Entity struct {
	Type string `json:"type"`
	Word string `json:"word"`
}

// ParsedAddress holds the components pulled out of a piece of address text.
type ParsedAddress struct {
	Components map[string][]string `json:"components"`
	Pincode    string              `json:"pincode,omitempty"`
}

// Parse groups the entities and looks for a pincode in the raw text.
func Parse(text string, entities []Entity) ParsedAddress {
	pincode, _ := ExtractPincode(text)
	return ParsedAddress{Components: Group(entities), Pincode: pincode}
}

// ExtractPincode returns the first standalone six-digit number in text.
func ExtractPincode(text string) (string, bool) {
	m := pincodeRe.FindString(text)
	return m, m != ""
}

// NormalizePincode trims the input and removes inner spaces ("560 034").
func NormalizePincode(raw string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(raw), "")
}

// ValidatePincode checks the six-digit shape of an already normalised pincode.
func ValidatePincode(pincode string) error {
	if !exactRe.MatchString(pincode) {
		return fmt.Errorf("invalid pincode %q: expected 6 digits", pincode)
	}
	return nil
}

// Group collects entity words by type, keeping first-seen order per type.
func Group(entities []Entity) map[string][]string {
	parsed := make(map[string][]string)
	for _, e := range entities {
		if e.Type == "" || strings.TrimSpace(e.Word) == "" {
			continue
		}
		parsed[e.Type] = append(parsed[e.Type], e.Word)
	}
	return parsed
}

// NeedsTranslation reports whether text carries letters outside the Latin
// script, such as Tamil or Devanagari.
func NeedsTranslation(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) && !unicode.In(r, unicode.Latin) {
			return true
		}
	}
	return false
}
