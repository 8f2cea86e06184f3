package matcher

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError reports a model reply from which no valid JSON object could be
// recovered.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExtractJSON locates and parses a JSON object inside a model's free-text
// reply. Models are not guaranteed to omit explanatory prose or markdown
// fencing, so extraction is permissive on formatting: a ```json fenced block
// wins, then any fenced block, then the text verbatim, then the outermost
// brace-delimited window. The final parse is strict; malformed JSON after
// extraction is a hard failure.
func ExtractJSON(text string) (map[string]any, error) {
	candidate := strings.TrimSpace(text)

	if interior, ok := fencedInterior(candidate, "```json"); ok {
		candidate = interior
	} else if interior, ok := fencedInterior(candidate, "```"); ok {
		candidate = interior
	}

	var obj map[string]any
	err := json.Unmarshal([]byte(candidate), &obj)
	if err == nil {
		return obj, nil
	}

	if window, ok := braceWindow(candidate); ok {
		if json.Unmarshal([]byte(window), &obj) == nil {
			return obj, nil
		}
	}

	return nil, &ParseError{Err: err}
}

func fencedInterior(text, fence string) (string, bool) {
	start := strings.Index(text, fence)
	if start == -1 {
		return "", false
	}
	rest := text[start+len(fence):]
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func braceWindow(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// parseAssessment extracts the score and reasoning from a model reply.
// Missing keys are not an error: score defaults to 0 and reasoning to the
// empty string. Only a wholly unparsable reply fails.
func parseAssessment(raw string) (float64, string, error) {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return 0, "", err
	}

	score := coerceFloat(obj["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return score, coerceString(obj["reasoning"]), nil
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
