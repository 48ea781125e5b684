// Package jsonx extracts structured JSON documents from noisy model output.
//
// Model CLIs rarely return bare JSON: the document tends to arrive wrapped
// in prose, markdown code fences, or trailing commentary. Extract locates
// the first valid JSON object or array inside such text.
package jsonx

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoDocument means no valid JSON object or array was found in the text.
var ErrNoDocument = errors.New("jsonx: no structured document found")

// Extract returns the first valid JSON object or array embedded in text.
// The whole trimmed text is tried first, then fenced code blocks, then a
// brace-balanced scan of the raw text.
func Extract(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrNoDocument
	}

	if isDocument(trimmed) {
		return json.RawMessage(trimmed), nil
	}

	for _, block := range fencedBlocks(trimmed) {
		if isDocument(block) {
			return json.RawMessage(block), nil
		}
	}

	if doc := scanBalanced(trimmed); doc != "" {
		return json.RawMessage(doc), nil
	}

	return nil, ErrNoDocument
}

// isDocument reports whether s is valid JSON whose top-level value is an
// object or array. Bare strings and numbers are not documents.
func isDocument(s string) bool {
	if len(s) == 0 || (s[0] != '{' && s[0] != '[') {
		return false
	}
	return json.Valid([]byte(s))
}

// fencedBlocks returns the contents of every ``` code fence, language tag
// stripped.
func fencedBlocks(s string) []string {
	var blocks []string
	for {
		start := strings.Index(s, "```")
		if start < 0 {
			break
		}
		rest := s[start+3:]
		end := strings.Index(rest, "```")
		if end < 0 {
			break
		}
		block := rest[:end]
		if nl := strings.IndexByte(block, '\n'); nl >= 0 {
			// Drop the language tag line ("json", "JSON", ...).
			first := strings.TrimSpace(block[:nl])
			if first != "" && !strings.ContainsAny(first, "{[") {
				block = block[nl+1:]
			}
		}
		blocks = append(blocks, strings.TrimSpace(block))
		s = rest[end+3:]
	}
	return blocks
}

// scanBalanced walks the text for a brace-balanced candidate starting at
// each '{' or '[', tracking string literals and escapes, and returns the
// first candidate that parses.
func scanBalanced(s string) string {
	for start := 0; start < len(s); start++ {
		open := s[start]
		if open != '{' && open != '[' {
			continue
		}
		closing := byte('}')
		if open == '[' {
			closing = ']'
		}

		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			switch {
			case escaped:
				escaped = false
			case c == '\\' && inString:
				escaped = true
			case c == '"':
				inString = !inString
			case inString:
				// Braces inside strings do not count.
			case c == open:
				depth++
			case c == closing:
				depth--
				if depth == 0 {
					candidate := s[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate
					}
					i = len(s) // abandon this start position
				}
			}
		}
	}
	return ""
}
