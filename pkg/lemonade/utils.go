package lemonade

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// extractedResponseKeys are copied by ExtractModelInfo when present.
var extractedResponseKeys = []string{"model", "usage", "choices", "created", "data"}

// FormatMessages normalizes loosely-typed messages to role/content pairs,
// defaulting a missing role to "user" and missing content to "".
func FormatMessages(messages []map[string]any) []ChatMessage {
	formatted := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		role, ok := stringField(msg, "role")
		if !ok {
			role = "user"
		}
		content, _ := stringField(msg, "content")
		formatted = append(formatted, ChatMessage{Role: role, Content: content})
	}
	return formatted
}

// ExtractModelInfo returns the model, usage, choices, created and data
// entries of resp. Absent keys are omitted.
func ExtractModelInfo(resp Response) Response {
	info := Response{}
	for _, key := range extractedResponseKeys {
		if v, ok := resp[key]; ok {
			info[key] = v
		}
	}
	return info
}

// ValidateResponse reports whether resp looks like a usable server reply:
// it must be a JSON object, a "choices" entry must be a non-empty list and
// a "data" entry must be a list. Anything else passes.
func ValidateResponse(resp any) bool {
	var obj map[string]any
	switch v := resp.(type) {
	case Response:
		obj = v
	case map[string]any:
		obj = v
	default:
		return false
	}
	if obj == nil {
		return false
	}

	if choices, ok := obj["choices"]; ok {
		if !isList(choices) || reflect.ValueOf(choices).Len() == 0 {
			return false
		}
	}
	if data, ok := obj["data"]; ok && !isList(data) {
		return false
	}
	return true
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	kind := reflect.TypeOf(v).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

// SanitizeModelName trims surrounding whitespace and replaces inner spaces with underscores.
func SanitizeModelName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// FormatError renders err as "Error: <kind> - <message>". The kind is the
// RequestError kind for request failures and the Go type name otherwise.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if err == error(reqErr) {
			return fmt.Sprintf("Error: %s - %s", reqErr.Kind, reqErr.detail())
		}
		return fmt.Sprintf("Error: %s - %s", reqErr.Kind, err.Error())
	}

	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return fmt.Sprintf("Error: %s - %s", t.Name(), err.Error())
}
