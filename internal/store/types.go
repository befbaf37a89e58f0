package store

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// ScanResult is what the worker pool learned about a scan.
type ScanResult struct {
	RecognizedText string
	TranslatedText string
	Entities       map[string][]string
	Pincode        string
	Outcome        string
	Region         string
	Matched        bool
	Message        string
	Annotated      []byte
}
