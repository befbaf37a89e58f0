package classify

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected Outcome
	}{
		{name: "Empty string", body: "", expected: EmptyResponse},
		{name: "Spaces only", body: "   ", expected: EmptyResponse},
		{name: "Mixed whitespace", body: "\n\t \r\n", expected: EmptyResponse},
		{name: "Broken object", body: "{not json", expected: ParseError},
		{name: "Plain text", body: "Service Unavailable", expected: ParseError},
		{name: "Truncated array", body: `[{"PostOffice":[`, expected: ParseError},
		{name: "Trailing garbage", body: `[] []`, expected: ParseError},
		{name: "Empty array", body: "[]", expected: InvalidStructure},
		{name: "Empty array with padding", body: "  []\n", expected: InvalidStructure},
		{name: "Empty post office list", body: `[{"PostOffice":[]}]`, expected: InvalidStructure},
		{name: "Null post office list", body: `[{"Message":"No records found","Status":"Error","PostOffice":null}]`, expected: InvalidStructure},
		{name: "Missing post office key", body: `[{"Status":"Success"}]`, expected: InvalidStructure},
		{name: "Top-level object", body: `{"PostOffice":[{"Region":"X"}]}`, expected: InvalidStructure},
		{name: "First record not an object", body: `["PostOffice"]`, expected: InvalidStructure},
		{name: "Post office not a list", body: `[{"PostOffice":"Koramangala"}]`, expected: InvalidStructure},
		{name: "Post office entry not an object", body: `[{"PostOffice":["Koramangala"]}]`, expected: InvalidStructure},
		{name: "Valid single entry", body: `[{"PostOffice":[{"Region":"Koramangala","Pincode":"560034"}]}]`, expected: ValidResponse},
		{name: "Valid with surrounding whitespace", body: "\n [{\"PostOffice\":[{}]}] \n", expected: ValidResponse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.body))
		})
	}
}

func TestExtract_EndToEndScenarios(t *testing.T) {
	t.Run("Scenario 1: empty body", func(t *testing.T) {
		rec, outcome := Extract("")
		assert.Equal(t, EmptyResponse, outcome)
		assert.Nil(t, rec)
	})

	t.Run("Scenario 2: malformed body", func(t *testing.T) {
		rec, outcome := Extract("{not json")
		assert.Equal(t, ParseError, outcome)
		assert.Nil(t, rec)
	})

	t.Run("Scenario 3: empty array", func(t *testing.T) {
		rec, outcome := Extract("[]")
		assert.Equal(t, InvalidStructure, outcome)
		assert.Nil(t, rec)
	})

	t.Run("Scenario 4: empty post office list", func(t *testing.T) {
		rec, outcome := Extract(`[{"PostOffice":[]}]`)
		assert.Equal(t, InvalidStructure, outcome)
		assert.Nil(t, rec)
	})

	t.Run("Scenario 5: valid response", func(t *testing.T) {
		rec, outcome := Extract(`[{"PostOffice":[{"Region":"Koramangala","Pincode":"560034"}]}]`)
		require.Equal(t, ValidResponse, outcome)
		assert.Equal(t, PostOfficeRecord{"Region": "Koramangala", "Pincode": "560034"}, rec)
	})
}

func TestExtract_FirstEntryUnmodified(t *testing.T) {
	body := `[{"Message":"Number of pincode(s) found:2","Status":"Success","PostOffice":[
		{"Name":"Koramangala","Description":null,"BranchType":"Sub Post Office","DeliveryStatus":"Non-Delivery",
		 "Circle":"Karnataka","District":"Bangalore","Division":"Bangalore South","Region":"Bangalore HQ",
		 "Block":"Bangalore South","State":"Karnataka","Country":"India","Pincode":"560034","Code":560034},
		{"Name":"Koramangala VI Bk","Region":"Bangalore HQ"}]}]`

	rec, outcome := Extract(body)
	require.Equal(t, ValidResponse, outcome)

	assert.Equal(t, "Koramangala", rec["Name"])
	assert.Nil(t, rec["Description"])
	assert.Contains(t, rec, "Description")
	assert.Equal(t, json.Number("560034"), rec["Code"])
	assert.Len(t, rec, 13)
	assert.NotContains(t, rec, "Latitude")
}

func TestPostOfficeRecord_String(t *testing.T) {
	rec := PostOfficeRecord{
		"Region":      "Koramangala",
		"Code":        json.Number("560034"),
		"Description": nil,
		"Flags":       []any{"a"},
	}

	assert.Equal(t, "Koramangala", rec.String("Region"))
	assert.Equal(t, "560034", rec.String("Code"))
	assert.Equal(t, "", rec.String("Description"))
	assert.Equal(t, "", rec.String("Missing"))
	assert.Equal(t, `["a"]`, rec.String("Flags"))
}

func TestOutcome_Message(t *testing.T) {
	for _, o := range Outcomes {
		assert.NotEmpty(t, o.Message(), string(o))
	}
	assert.True(t, ValidResponse.OK())
	assert.False(t, InvalidStructure.OK())
	assert.Equal(t, "Error: Empty response from the server.", EmptyResponse.Message())
	assert.Equal(t, "Error: Failed to parse JSON response.", ParseError.Message())
	assert.Equal(t, "Error: Invalid response structure or no data found for this PIN code.", InvalidStructure.Message())
}

func TestClassify_Concurrent(t *testing.T) {
	bodies := map[string]Outcome{
		"":                           EmptyResponse,
		"{not json":                  ParseError,
		"[]":                         InvalidStructure,
		`[{"PostOffice":[{"a":1}]}]`: ValidResponse,
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for body, want := range bodies {
			wg.Add(1)
			go func(body string, want Outcome) {
				defer wg.Done()
				assert.Equal(t, want, Classify(body))
			}(body, want)
		}
	}
	wg.Wait()
}
