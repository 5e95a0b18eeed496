package provider

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// extractJSON digs a JSON object out of free-form model output: a ```json
// fence first, then the first balanced brace pair, then the whole body.
// Returns nil when nothing parses.
func extractJSON(content string) json.RawMessage {
	if m := fencedJSON.FindStringSubmatch(content); m != nil {
		if json.Valid([]byte(m[1])) {
			return json.RawMessage(m[1])
		}
	}

	if start := strings.IndexByte(content, '{'); start >= 0 {
		depth := 0
		for i := start; i < len(content); i++ {
			switch content[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := content[start : i+1]
					if json.Valid([]byte(candidate)) {
						return json.RawMessage(candidate)
					}
					i = len(content)
				}
			}
		}
	}

	trimmed := strings.TrimSpace(content)
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return json.RawMessage(trimmed)
	}
	return nil
}
