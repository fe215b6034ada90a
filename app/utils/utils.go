package utils

import (
	"encoding/json"
	"fmt"
)

func ParseArguments(arguments string) (map[string]any, error) {
	var result map[string]any
	err := json.Unmarshal([]byte(arguments), &result)
	if err != nil {
		return nil, fmt.Errorf("error parsing arguments: %w", err)
	}
	return result, nil
}

// CastAny round-trips v through JSON into T, used to map loose tool-call
// parameter maps onto typed action structs.
func CastAny[T any](v any) (*T, error) {
	var result T
	jsonData, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error serializing input to JSON: %w", err)
	}

	err = json.Unmarshal(jsonData, &result)
	if err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}

	return &result, nil
}
