// Package jsonutil provides shared helpers for decoding platform API bodies:
// context-wrapped decode errors and server error-text extraction.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// UnmarshalWithContext unmarshals JSON data into v and wraps any error
// with the provided context message.
func UnmarshalWithContext(data []byte, v interface{}, context string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", context, err)
	}
	return nil
}

// DecodeWithContext decodes a single JSON value from r into v.
func DecodeWithContext(r io.Reader, v interface{}, context string) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("%s: %w", context, err)
	}
	return nil
}

// ErrorMessage extracts the human-readable error text from an API error body.
// Accepts {"error": "text"}, {"error": {"message": "text"}} and {"message": "text"}.
// Returns "" when nothing usable is found.
func ErrorMessage(body []byte) string {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	switch e := m["error"].(type) {
	case string:
		return strings.TrimSpace(e)
	case map[string]interface{}:
		if msg := GetString(e, "message"); msg != "" {
			return strings.TrimSpace(msg)
		}
	}
	return strings.TrimSpace(GetString(m, "message"))
}

// ReadErrorMessage reads a bounded error body and returns ErrorMessage of it.
func ReadErrorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return ErrorMessage(body)
}

// GetString safely extracts a string value from a map[string]interface{}.
// Returns the value if it's a string, otherwise returns empty string.
func GetString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}
