package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidParameter = errors.New("parameter must be in key=value form")

// parseParameters turns repeated key=value flags into workflow parameters. Values that parse as
// JSON keep their JSON type, anything else is taken as a plain string.
func parseParameters(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	parameters := make(map[string]any, len(raw))

	for _, entry := range raw {
		key, value, found := strings.Cut(entry, "=")

		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidParameter, entry)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}

		parameters[key] = decoded
	}

	return parameters, nil
}
