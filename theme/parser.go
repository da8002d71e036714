package theme

import (
	"fmt"
	"strings"

	"doctemplates/model"
)

// Extract locates the array literal opened by marker and parses it into
// theme records. It never returns a partial result.
func Extract(content, marker string) ([]model.ThemeRecord, error) {
	literal, err := ExtractArray(content, marker)
	if err != nil {
		return nil, err
	}
	return ParseLiteral(literal)
}

// ExtractArray returns the array literal that starts with the final '[' of
// marker, up to and including its matching ']'. Only the first occurrence of
// marker is considered.
func ExtractArray(content, marker string) (string, error) {
	if !strings.HasSuffix(marker, "[") {
		return "", fmt.Errorf("marker %q must end with '['", marker)
	}

	idx := strings.Index(content, marker)
	if idx == -1 {
		return "", fmt.Errorf("%w: %q", ErrMarkerNotFound, marker)
	}

	open := idx + len(marker) - 1
	end, ok := findArrayEnd(content, open+1)
	if !ok {
		return "", fmt.Errorf("%w: unterminated array starting at offset %d", ErrArrayParse, open)
	}

	return content[open : end+1], nil
}

// findArrayEnd returns the position of the ']' that closes an array whose
// opening bracket sits just before startPos. Brackets inside strings,
// template strings and comments are ignored.
func findArrayEnd(content string, startPos int) (int, bool) {
	depth := 1
	mode := modeCode
	var quote byte

	pos := startPos
	for pos < len(content) {
		ch := content[pos]

		if mode != modeCode {
			if ch == '\\' && pos+1 < len(content) {
				pos += 2
				continue
			}
			if (mode == modeTemplate && ch == '`') || (mode == modeQuoted && ch == quote) {
				mode = modeCode
			}
			pos++
			continue
		}

		switch ch {
		case '`':
			mode = modeTemplate
		case '\'', '"':
			mode = modeQuoted
			quote = ch
		case '/':
			if next := skipComment(content, pos); next > pos {
				pos = next
				continue
			}
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return pos, true
			}
		}
		pos++
	}

	return 0, false
}

// skipComment returns the position just past a comment starting at pos, or
// pos itself when there is no comment there.
func skipComment(content string, pos int) int {
	if pos+1 >= len(content) {
		return pos
	}
	switch content[pos+1] {
	case '/':
		nl := strings.IndexByte(content[pos:], '\n')
		if nl == -1 {
			return len(content)
		}
		return pos + nl
	case '*':
		end := strings.Index(content[pos+2:], "*/")
		if end == -1 {
			return len(content)
		}
		return pos + 2 + end + 2
	}
	return pos
}
