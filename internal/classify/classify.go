// Package classify turns a raw body from the postal pincode API into one of a
// fixed set of outcomes before anything downstream looks at it.
//
// Classification is a pure function of the body text. It never inspects the
// HTTP status code: callers gate on that first.
package classify

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// PostOfficeKey is the key holding the post office list in each top-level record.
const PostOfficeKey = "PostOffice"

// Outcome is the classification label for a response body.
type Outcome string

const (
	EmptyResponse    Outcome = "EmptyResponse"
	ParseError       Outcome = "ParseError"
	InvalidStructure Outcome = "InvalidStructure"
	ValidResponse    Outcome = "ValidResponse"
)

// Outcomes lists every label in decision order.
var Outcomes = []Outcome{EmptyResponse, ParseError, InvalidStructure, ValidResponse}

// Message returns the user-facing description of the outcome.
func (o Outcome) Message() string {
	switch o {
	case EmptyResponse:
		return "Error: Empty response from the server."
	case ParseError:
		return "Error: Failed to parse JSON response."
	case InvalidStructure:
		return "Error: Invalid response structure or no data found for this PIN code."
	case ValidResponse:
		return "Valid response."
	default:
		return "Error: Unknown classification outcome."
	}
}

// OK reports whether the outcome carries a post office record.
func (o Outcome) OK() bool { return o == ValidResponse }

// PostOfficeRecord is one post office entry exactly as the API returned it.
// Values are strings, json.Number or nil.
type PostOfficeRecord map[string]any

// String returns the field rendered as text, or "" when it is absent or null.
func (r PostOfficeRecord) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Classify labels a response body.
func Classify(responseText string) Outcome {
	_, outcome := Extract(responseText)
	return outcome
}

// Extract classifies the body and, for ValidResponse, returns the first entry
// of the first record's post office list. The record is nil for every other
// outcome.
func Extract(responseText string) (PostOfficeRecord, Outcome) {
	if strings.TrimSpace(responseText) == "" {
		return nil, EmptyResponse
	}

	var data any
	dec := json.NewDecoder(strings.NewReader(responseText))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, ParseError
	}
	// Trailing tokens after the first value make the body malformed.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ParseError
	}

	records, ok := data.([]any)
	if !ok || len(records) == 0 {
		return nil, InvalidStructure
	}
	first, ok := records[0].(map[string]any)
	if !ok {
		return nil, InvalidStructure
	}
	offices, ok := first[PostOfficeKey].([]any)
	if !ok || len(offices) == 0 {
		return nil, InvalidStructure
	}
	office, ok := offices[0].(map[string]any)
	if !ok {
		return nil, InvalidStructure
	}
	return PostOfficeRecord(office), ValidResponse
}
