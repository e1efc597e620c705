package salesforce

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the REST API.
type APIError struct {
	StatusCode int
	ErrorCode  string
	// Message is the service's diagnostic text, unmodified.
	Message string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("salesforce %d %s: %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("salesforce %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether the session was rejected.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// LoginError is returned when the service rejects the credentials.
type LoginError struct {
	Code    string
	Message string
}

func (e *LoginError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("salesforce login failed: %s: %s", e.Code, e.Message)
	}
	return "salesforce login failed: " + e.Message
}

type restError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// parseAPIError builds an APIError from a REST error body, which is normally a
// JSON array of {message, errorCode}.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var list []restError
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		messages := make([]string, 0, len(list))
		for _, e := range list {
			messages = append(messages, e.Message)
		}
		apiErr.ErrorCode = list[0].ErrorCode
		apiErr.Message = strings.Join(messages, "; ")
		return apiErr
	}

	var single restError
	if err := json.Unmarshal(body, &single); err == nil && single.Message != "" {
		apiErr.ErrorCode = single.ErrorCode
		apiErr.Message = single.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
