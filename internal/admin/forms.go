package admin

import (
	"encoding/json"
	"strings"
)

// FlexibleList normalizes the dynamic form fields (features, specifications,
// image URLs) that arrive either as an already-parsed JSON array or as a raw
// string holding JSON or newline-separated values.
type FlexibleList []string

// UnmarshalJSON accepts both shapes.
func (l *FlexibleList) UnmarshalJSON(data []byte) error {
	var parsed []string
	if err := json.Unmarshal(data, &parsed); err == nil {
		*l = normalizeList(parsed)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = ParseFlexibleList(raw)
	return nil
}

// ParseFlexibleList resolves a raw string: a JSON array when it parses as
// one, otherwise one value per non-empty line.
func ParseFlexibleList(raw string) FlexibleList {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return FlexibleList{}
	}

	var parsed []string
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return normalizeList(parsed)
	}

	lines := strings.Split(trimmed, "\n")
	return normalizeList(lines)
}

func normalizeList(values []string) FlexibleList {
	result := make(FlexibleList, 0, len(values))
	for _, value := range values {
		if cleaned := strings.TrimSpace(value); cleaned != "" {
			result = append(result, cleaned)
		}
	}
	return result
}
