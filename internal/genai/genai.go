package genai

import "context"

// Client is the text-completion collaborator. Implementations return the raw
// model output; callers must not assume it is valid JSON and should recover
// structure with ExtractJSONObject / ExtractJSONArray.
type Client interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// ExtractJSONObject returns the first balanced JSON object in text, or ""
// if none is found. Braces inside string literals are ignored.
func ExtractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// ExtractJSONArray returns the first balanced JSON array in text, or "".
func ExtractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

func extractBalanced(text string, open, close byte) string {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == open {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
