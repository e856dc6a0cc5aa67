package util

import "encoding/json"

// ExtractJSONObject pulls the first well-formed JSON object out of
// free-form model output. Generative backends cannot be trusted to
// return pure JSON: the object is routinely wrapped in a ```json fence
// or surrounded by prose, so the input is scanned for a `{` and walked
// with a brace-depth counter (braces inside quoted strings and escape
// sequences are ignored) until the matching `}`. Each candidate span is
// verified with the JSON parser; the first valid one wins. Pure
// function of its input.
func ExtractJSONObject(text string) (json.RawMessage, error) {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}

		end, ok := matchBrace(text, start)
		if !ok {
			// Unbalanced from this opening brace; a later `{` may
			// still open a complete object.
			continue
		}

		span := text[start : end+1]
		if json.Valid([]byte(span)) {
			return json.RawMessage(span), nil
		}
		// Keep scanning after this candidate.
		start = end
	}
	return nil, ErrNoJSONObject
}

// matchBrace returns the index of the `}` closing the `{` at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
