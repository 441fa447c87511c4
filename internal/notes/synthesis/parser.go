package synthesis

import (
	"encoding/json"
	"strings"
)

// ParseResult is the tagged outcome of a parse attempt. Source names the
// envelope (and repair heuristic, when one fired) that produced the data,
// so parse behavior stays observable in audit logs. Failures are values,
// never panics.
type ParseResult struct {
	Success bool
	Data    map[string]any
	Source  string
	Err     string
}

func failure(msg string) ParseResult {
	return ParseResult{Success: false, Source: "error", Err: msg}
}

// Parse extracts a JSON object from whatever envelope the model provider
// wrapped its output in. Envelopes are tried in a fixed order:
//
//  1. already-decoded object with content keys
//  2. raw string
//  3. {"text": "..."}
//  4. {"candidates":[{"content":{"parts":[{"text":"..."}]}}]}
//  5. {"result": "..."}
//  6. {"data": string | object}
//
// String payloads get one direct JSON parse and, on failure, one reparse
// after repair heuristics (see repair.go).
func Parse(raw any) ParseResult {
	switch v := raw.(type) {
	case nil:
		return failure("nil response")
	case string:
		return parseText(v, "string")
	case []byte:
		return parseText(string(v), "string")
	case map[string]any:
		return parseObject(v)
	default:
		return failure("unrecognized response shape")
	}
}

func parseObject(m map[string]any) ParseResult {
	if !hasEnvelopeKeys(m) {
		return ParseResult{Success: true, Data: m, Source: "object"}
	}

	if text, ok := m["text"].(string); ok && strings.TrimSpace(text) != "" {
		return parseText(text, "text")
	}

	if text := candidateText(m); text != "" {
		return parseText(text, "candidates")
	}

	if result, ok := m["result"].(string); ok && strings.TrimSpace(result) != "" {
		return parseText(result, "result")
	}

	switch data := m["data"].(type) {
	case string:
		if strings.TrimSpace(data) != "" {
			return parseText(data, "data")
		}
	case map[string]any:
		return ParseResult{Success: true, Data: data, Source: "data"}
	}

	return failure("no usable payload in response envelope")
}

var envelopeKeys = []string{"text", "candidates", "result", "data"}

func hasEnvelopeKeys(m map[string]any) bool {
	for _, k := range envelopeKeys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// candidateText unwraps the nested provider envelope
// candidates[0].content.parts[0].text, tolerating any missing level.
func candidateText(m map[string]any) string {
	candidates, ok := m["candidates"].([]any)
	if !ok || len(candidates) == 0 {
		return ""
	}
	first, ok := candidates[0].(map[string]any)
	if !ok {
		return ""
	}
	content, ok := first["content"].(map[string]any)
	if !ok {
		return ""
	}
	parts, ok := content["parts"].([]any)
	if !ok || len(parts) == 0 {
		return ""
	}
	part, ok := parts[0].(map[string]any)
	if !ok {
		return ""
	}
	text, _ := part["text"].(string)
	return strings.TrimSpace(text)
}

func parseText(text, source string) ParseResult {
	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return failure("empty payload")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err == nil {
		return ParseResult{Success: true, Data: data, Source: source}
	}

	repaired, changed := Repair(cleaned)
	if !changed {
		return failure("unparseable payload from " + source)
	}
	if err := json.Unmarshal([]byte(repaired), &data); err != nil {
		return failure("payload from " + source + " unparseable after repair")
	}
	return ParseResult{Success: true, Data: data, Source: source + "+repair"}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (```json etc).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
