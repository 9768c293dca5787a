package scrape

import (
	"encoding/json"
	"strings"
	"unicode"
)

// CleanJSON salvages a JSON document out of the noisy payloads the panel file
// API returns: a stray leading line-number digit run, a byte-order mark, or
// JSON embedded inside surrounding junk text. The cleaned string and true are
// returned when the result parses; otherwise the original raw content comes
// back unchanged with false. Deliberately permissive rather than strict.
func CleanJSON(raw string) (string, bool) {
	s := stripDigitPrefix(raw)
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})

	if json.Valid([]byte(s)) && s != "" {
		return s, true
	}

	if inner, ok := extractBalanced(s); ok && json.Valid([]byte(inner)) {
		return inner, true
	}

	return raw, false
}

// stripDigitPrefix drops a leading run of digits only when it is immediately
// followed by an opening brace, e.g. `12{"a":1}` -> `{"a":1}`.
func stripDigitPrefix(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && s[i] == '{' {
		return s[i:]
	}
	return s
}

// extractBalanced returns the first balanced {...} or [...] substring,
// tracking string literals so braces inside quoted values do not count.
func extractBalanced(s string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			start, open, close = i, '{', '}'
			break
		}
		if s[i] == '[' {
			start, open, close = i, '[', ']'
			break
		}
	}
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// NormalizeContent maps the three response shapes of the file-contents
// endpoint onto one canonical string: raw text is used verbatim, a pre-parsed
// JSON document is re-serialized with stable formatting, and a {data: ...}
// wrapper is unwrapped. Returns false only for empty content.
func NormalizeContent(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		// Not JSON at this level: raw file contents, use verbatim.
		return raw, true
	}

	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		if data, present := m["data"]; present {
			if s, isString := data.(string); isString {
				return s, true
			}
			if encoded, err := json.Marshal(data); err == nil {
				return string(encoded), true
			}
		}
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return raw, true
	}
	return string(encoded), true
}
