package utils

import (
	"encoding/json"
	"strconv"
)

// ParseID accepts a positive integer id given as a decimal string made only of
// digits. Signs, spaces and decimals are rejected.
func ParseID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseJSONID accepts an id from a decoded JSON body, where clients send
// either a number or a numeric string.
func ParseJSONID(v any) (int64, bool) {
	switch id := v.(type) {
	case json.Number:
		return ParseID(id.String())
	case string:
		return ParseID(id)
	case float64:
		if id <= 0 || id != float64(int64(id)) {
			return 0, false
		}
		return int64(id), true
	default:
		return 0, false
	}
}
