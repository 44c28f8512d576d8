package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseAIJSON parses JSON out of raw model output. Models return bare JSON
// on a good day; on the rest they wrap it in markdown fences, surround it
// with prose, or hand back something slightly broken. Each fallback is only
// tried when the previous one failed to produce valid JSON.
func ParseAIJSON(input string, target interface{}) error {
	if input == "" {
		return fmt.Errorf("empty input")
	}

	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	if extracted := extractFromMarkdown(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	if extracted := extractJSONFromText(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	if repaired := repairJSON(input); repaired != "" {
		if err := json.Unmarshal([]byte(repaired), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// extractFromMarkdown pulls the body out of ```json ... ``` or plain
// ``` ... ``` fences.
func extractFromMarkdown(input string) string {
	reTagged := regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	if matches := reTagged.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	rePlain := regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	if matches := rePlain.FindStringSubmatch(input); len(matches) > 1 {
		content := strings.TrimSpace(matches[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}

	return ""
}

// extractJSONFromText finds the first balanced JSON object or array inside
// surrounding prose.
func extractJSONFromText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		if extracted := extractBalanced(input[start:], '{', '}'); extracted != "" {
			return extracted
		}
	}
	if start := strings.Index(input, "["); start >= 0 {
		if extracted := extractBalanced(input[start:], '[', ']'); extracted != "" {
			return extracted
		}
	}
	return ""
}

// extractBalanced returns the prefix of input spanning one balanced
// open/close pair, respecting strings and escapes.
func extractBalanced(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		if ch == '\\' {
			escape = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case open:
			if depth == 0 {
				start = i
			}
			depth++
		case close:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// repairJSON fixes the malformations models actually produce: trailing
// commas, unquoted keys, single-quoted strings, stray control characters.
func repairJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\ufeff")

	reTrailingComma := regexp.MustCompile(`,\s*([}\]])`)
	s = reTrailingComma.ReplaceAllString(s, "$1")

	reBareKey := regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	s = reBareKey.ReplaceAllString(s, `$1"$2"$3`)

	s = fixSingleQuotes(s)
	s = removeControlCharacters(s)

	return s
}

// fixSingleQuotes rewrites quote-position single quotes to double quotes
// while leaving apostrophes inside words alone.
func fixSingleQuotes(input string) string {
	var result strings.Builder
	inDoubleQuote := false
	escape := false
	var prev rune

	for i, ch := range input {
		if escape {
			result.WriteRune(ch)
			escape = false
			prev = ch
			continue
		}
		if ch == '\\' {
			result.WriteRune(ch)
			escape = true
			prev = ch
			continue
		}
		if ch == '"' {
			inDoubleQuote = !inDoubleQuote
			result.WriteRune(ch)
			prev = ch
			continue
		}

		if ch == '\'' && !inDoubleQuote {
			if i == 0 || prev == ':' || prev == ',' || prev == '[' || prev == '{' {
				result.WriteRune('"')
				prev = ch
				continue
			}
		}

		result.WriteRune(ch)
		prev = ch
	}

	return result.String()
}

func removeControlCharacters(input string) string {
	return regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`).ReplaceAllString(input, "")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// PrettyPrintJSON renders v as indented JSON for terminal output.
func PrettyPrintJSON(v interface{}) (string, error) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
