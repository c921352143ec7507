package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSONMarkdown extracts a JSON object from a model completion. Models
// often wrap JSON in a fenced code block or prepend prose, so this tries the
// fenced block first, then the outermost brace pair, then the raw text.
func ParseJSONMarkdown(text string) (map[string]interface{}, error) {
	candidates := []string{}

	if start := strings.Index(text, "```"); start != -1 {
		rest := text[start+3:]
		// Skip an optional language tag line (```json)
		if nl := strings.Index(rest, "\n"); nl != -1 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end != -1 {
			candidates = append(candidates, rest[:end])
		}
	}

	if open := strings.Index(text, "{"); open != -1 {
		if close := strings.LastIndex(text, "}"); close > open {
			candidates = append(candidates, text[open:close+1])
		}
	}

	candidates = append(candidates, text)

	for _, candidate := range candidates {
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &parsed); err == nil {
			return parsed, nil
		}
	}
	return nil, fmt.Errorf("no JSON object found in completion")
}
