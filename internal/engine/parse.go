package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTokenID parses a token id from user input; "#12" and "12" are both accepted.
func ParseTokenID(input string) (int64, error) {
	s := strings.TrimPrefix(strings.TrimSpace(input), "#")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid token id: %q", input)
	}
	return id, nil
}

// ParseElement parses an element name, case-insensitively.
func ParseElement(input string) (Element, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	for i, name := range elementNames {
		if strings.ToLower(name) == s {
			return Element(i), nil
		}
	}
	return ElementNone, fmt.Errorf("invalid element: %q", input)
}

func normalizeTrait(trait string, maxLen int) (string, error) {
	t := strings.TrimSpace(trait)
	if t == "" {
		return "", fmt.Errorf("trait is required")
	}
	if len(t) > maxLen {
		return "", fmt.Errorf("trait exceeds %d bytes", maxLen)
	}
	return t, nil
}
