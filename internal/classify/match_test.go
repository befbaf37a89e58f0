package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchRegion(t *testing.T) {
	testCases := []struct {
		name     string
		region   any
		text     string
		matched  bool
		wantRegn string
	}{
		{
			name:    "Single-word region as standalone token",
			region:  "Koramangala",
			text:    "Flat 12 koramangala Bangalore 560034",
			matched: true, wantRegn: "koramangala",
		},
		{
			name:    "Case-insensitive token",
			region:  "Coimbatore",
			text:    "2 Gandhi Road COIMBATORE 641001",
			matched: true, wantRegn: "coimbatore",
		},
		{
			name:    "Multi-word region never matches",
			region:  "Bangalore South",
			text:    "123 MG Road Bangalore South Karnataka",
			matched: false, wantRegn: "bangalore south",
		},
		{
			name:    "Substring is not a token match",
			region:  "Koramangala",
			text:    "KoramangalaExtension 560034",
			matched: false, wantRegn: "koramangala",
		},
		{
			name:    "Punctuation attached to token",
			region:  "Coimbatore",
			text:    "Gandhi Road, Coimbatore, Tamil Nadu",
			matched: false, wantRegn: "coimbatore",
		},
		{
			name:    "Missing region",
			region:  nil,
			text:    "anything at all",
			matched: false, wantRegn: "",
		},
		{
			name:    "Empty text",
			region:  "Chennai",
			text:    "   ",
			matched: false, wantRegn: "chennai",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := PostOfficeRecord{"Pincode": "560034"}
			if tc.region != nil {
				rec[RegionField] = tc.region
			}

			got := MatchRegion(rec, tc.text)
			assert.Equal(t, tc.matched, got.Matched)
			assert.Equal(t, tc.wantRegn, got.Region)
			if tc.matched {
				assert.Equal(t, "Validation Successful: Region '"+tc.wantRegn+"' matches with scanned text.", got.Message)
			} else {
				assert.Equal(t, "No match found for the region '"+tc.wantRegn+"' in the scanned text.", got.Message)
			}
		})
	}
}
