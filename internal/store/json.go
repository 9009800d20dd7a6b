package store

import (
	"encoding/json"
	"fmt"
)

// JSON array columns are stored as text and always decode to a non-nil slice.

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	list := []string{}
	if raw == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}
