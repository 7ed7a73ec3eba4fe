package producer

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
)

// ErrNoJSON is returned when no JSON object can be recovered from text
var ErrNoJSON = errors.New("no JSON object found in producer output")

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON recovers a JSON object from free text.
// 순서: 전체 파싱 -> ```json 코드 블록 -> 첫 번째 균형 잡힌 {...}
func ExtractJSON(text []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(text)
	if isObject(trimmed) {
		return trimmed, nil
	}

	if m := fencedJSON.FindSubmatch(text); m != nil && isObject(m[1]) {
		return m[1], nil
	}

	if obj := firstBalanced(text); obj != nil && isObject(obj) {
		return obj, nil
	}

	return nil, ErrNoJSON
}

func isObject(b []byte) bool {
	if len(b) == 0 || b[0] != '{' {
		return false
	}
	var probe map[string]json.RawMessage
	return json.Unmarshal(b, &probe) == nil
}

// firstBalanced returns the first {...} span with matching braces.
// 문자열 리터럴 안의 중괄호는 무시한다.
func firstBalanced(text []byte) []byte {
	start := bytes.IndexByte(text, '{')
	if start < 0 {
		return nil
	}

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
				return text[start : i+1]
			}
		}
	}
	return nil
}
