package utils

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*[ \t]*\\n?(.*?)\\n?[ \t]*```$")

// ErrNotObject is returned by ParseObject for valid JSON that is not an object.
var ErrNotObject = errors.New("json value is not an object")

// StripCodeFence removes a surrounding markdown code fence (```json ... ```)
// from text. Text without a fence is returned trimmed.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// LooksStructured reports whether text is (possibly fenced) JSON object text.
func LooksStructured(text string) bool {
	return strings.HasPrefix(StripCodeFence(text), "{")
}

// ParseObject unwraps an optional code fence and decodes a JSON object.
func ParseObject(text string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}
