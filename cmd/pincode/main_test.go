package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newUpstream(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/") {
		case "641001":
			fmt.Fprint(w, `[{"Message":"Number of pincode(s) found:1","Status":"Success","PostOffice":[`+
				`{"Name":"Coimbatore","Description":null,"BranchType":"Head Post Office","Region":"Coimbatore","Pincode":"641001"}]}]`)
		case "000000":
			fmt.Fprint(w, `[{"Message":"No records found","Status":"Error","PostOffice":null}]`)
		case "123456":
			fmt.Fprint(w, `<html>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRun_Lookup(t *testing.T) {
	server := newUpstream(t)
	t.Setenv("POSTAL_ENDPOINT", server.URL)
	missingConfig := filepath.Join(t.TempDir(), "none.yaml")

	testCases := []struct {
		name         string
		args         []string
		stdin        string
		expectedCode int
		expectedOut  []string
	}{
		{
			name:         "Valid pincode argument",
			args:         []string{"-config", missingConfig, "641001"},
			expectedCode: 0,
			expectedOut: []string{
				"API Output:\nName: Coimbatore\nDescription: None\nBranchType: Head Post Office\nRegion: Coimbatore\nPincode: 641001\n",
			},
		},
		{
			name:         "Prompted pincode",
			args:         []string{"-config", missingConfig},
			stdin:        " 641 001 \n",
			expectedCode: 0,
			expectedOut:  []string{"Enter the pincode: ", "Name: Coimbatore"},
		},
		{
			name:         "No data for pincode",
			args:         []string{"-config", missingConfig, "000000"},
			expectedCode: 1,
			expectedOut:  []string{"Error: Invalid response structure or no data found for this PIN code.\n"},
		},
		{
			name:         "Unparseable body",
			args:         []string{"-config", missingConfig, "123456"},
			expectedCode: 1,
			expectedOut:  []string{"Error: Failed to parse JSON response.\n"},
		},
		{
			name:         "Upstream status",
			args:         []string{"-config", missingConfig, "999999"},
			expectedCode: 1,
			expectedOut:  []string{"Error: Unable to fetch data. HTTP Status Code: 404\n"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			code := run(context.Background(), tc.args, strings.NewReader(tc.stdin), &out)
			assert.Equal(t, tc.expectedCode, code)
			for _, want := range tc.expectedOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRun_ScanWithoutOCR(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	missingConfig := filepath.Join(t.TempDir(), "none.yaml")

	var out bytes.Buffer
	code := run(context.Background(), []string{"-config", missingConfig, "-scan", filepath.Join(t.TempDir(), "missing.png")}, strings.NewReader(""), &out)
	assert.Equal(t, 1, code)

	code = run(context.Background(), []string{"-bogus"}, strings.NewReader(""), &out)
	assert.Equal(t, 2, code)
}

func TestFormatComponents(t *testing.T) {
	assert.Equal(t, "{}", formatComponents(nil))
	assert.Equal(t, "{LOC: [Coimbatore, Tamil Nadu]; PER: [Ravi]}", formatComponents(map[string][]string{
		"PER": {"Ravi"},
		"LOC": {"Coimbatore", "Tamil Nadu"},
	}))
}
