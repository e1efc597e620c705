package salesforce

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "error list",
			status:   http.StatusBadRequest,
			body:     `[{"message":"\nSELECT Foo FROM Account\n       ^\nERROR at Row:1:Column:8\nNo such column 'Foo' on entity 'Account'.","errorCode":"INVALID_FIELD"}]`,
			wantCode: "INVALID_FIELD",
			wantMsg:  "\nSELECT Foo FROM Account\n       ^\nERROR at Row:1:Column:8\nNo such column 'Foo' on entity 'Account'.",
		},
		{
			name:     "several errors",
			status:   http.StatusBadRequest,
			body:     `[{"message":"first","errorCode":"A"},{"message":"second","errorCode":"B"}]`,
			wantCode: "A",
			wantMsg:  "first; second",
		},
		{
			name:     "single object",
			status:   http.StatusForbidden,
			body:     `{"message":"API is disabled","errorCode":"API_DISABLED_FOR_ORG"}`,
			wantCode: "API_DISABLED_FOR_ORG",
			wantMsg:  "API is disabled",
		},
		{
			name:    "plain text",
			status:  http.StatusBadGateway,
			body:    "upstream connect error\n",
			wantMsg: "upstream connect error",
		},
		{
			name:    "empty body",
			status:  http.StatusServiceUnavailable,
			wantMsg: "Service Unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseAPIError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.wantCode, err.ErrorCode)
			assert.Equal(t, tt.wantMsg, err.Message)
		})
	}
}

func TestInstanceFromServerURL(t *testing.T) {
	got, err := instanceFromServerURL("https://acme.my.salesforce.com/services/Soap/u/59.0/00D000000000001")
	assert.NoError(t, err)
	assert.Equal(t, "https://acme.my.salesforce.com", got)

	_, err = instanceFromServerURL("not a url")
	assert.Error(t, err)
}
