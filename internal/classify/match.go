package classify

import (
	"fmt"
	"strings"
)

// RegionField is the record field compared against recognised text.
const RegionField = "Region"

// RegionMatch is the result of comparing a record's region with free text.
type RegionMatch struct {
	Matched bool   `json:"matched"`
	Region  string `json:"region"`
	Message string `json:"message"`
}

// MatchRegion reports whether any whitespace-delimited token of candidateText
// equals the record's lower-cased Region. Matching is per token, so a
// multi-word region never matches.
func MatchRegion(record PostOfficeRecord, candidateText string) RegionMatch {
	region := strings.ToLower(record.String(RegionField))

	for _, word := range strings.Fields(candidateText) {
		if strings.ToLower(word) == region {
			return RegionMatch{
				Matched: true,
				Region:  region,
				Message: fmt.Sprintf("Validation Successful: Region '%s' matches with scanned text.", region),
			}
		}
	}

	return RegionMatch{
		Region:  region,
		Message: fmt.Sprintf("No match found for the region '%s' in the scanned text.", region),
	}
}
