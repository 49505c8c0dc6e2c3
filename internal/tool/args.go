package tool

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// stringArg reads a string argument. The second return value reports
// whether the key was present at all.
func stringArg(args map[string]any, key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", true, fmt.Errorf("%s must be a string", key)
	}
	return s, true, nil
}

// optionalString returns a pointer when the key is present, keeping empty
// strings distinguishable from absent fields for partial updates.
func optionalString(args map[string]any, key string) (*string, error) {
	s, ok, err := stringArg(args, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func requiredString(args map[string]any, key string) (string, error) {
	s, ok, err := stringArg(args, key)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return strings.TrimSpace(s), nil
}

// numberArg accepts the numeric shapes a JSON decoder or an LLM may
// produce for a number.
func numberArg(args map[string]any, key string) (float64, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, true, nil
	case int:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, true, fmt.Errorf("%s must be a number", key)
		}
		return f, true, nil
	}
	return 0, true, fmt.Errorf("%s must be a number", key)
}

func boolArg(args map[string]any, key string) (bool, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return false, false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, true, fmt.Errorf("%s must be a boolean", key)
	}
	return b, true, nil
}

// dateArg parses an appointment date, accepting RFC 3339 timestamps and
// plain dates.
func dateArg(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("date must be RFC 3339 or YYYY-MM-DD")
}
