package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON unmarshals a model answer into out. Models often wrap JSON in
// markdown fences or add a sentence around it, so the outermost object is extracted first.
func DecodeJSON(raw string, out interface{}) error {
	body := strings.TrimSpace(raw)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```JSON")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}
	if !strings.HasPrefix(body, "{") {
		start := strings.Index(body, "{")
		end := strings.LastIndex(body, "}")
		if start < 0 || end <= start {
			return fmt.Errorf("no JSON object in model output: %q", truncate(raw, 80))
		}
		body = body[start : end+1]
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("invalid JSON from model: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
