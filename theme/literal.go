package theme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tidwall/jsonc"

	"doctemplates/model"
)

var (
	jsonNumber  = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
	legacyOctal = regexp.MustCompile(`^[+-]?0[0-9_]`)
)

// ParseLiteral parses a TypeScript array literal of theme records.
//
// Only a restricted object/array grammar is accepted: JSON plus unquoted
// keys, single-quoted and backtick strings without interpolation, comments,
// trailing commas, undefined and non-decimal integer literals. Properties set
// to undefined are dropped and numbers are written in their shortest decimal
// form. Anything that would need evaluation is rejected with ErrArrayParse.
func ParseLiteral(literal string) ([]model.ThemeRecord, error) {
	tokens, err := lex(literal)
	if err != nil {
		return nil, err
	}

	jsoncText, err := transcode(dropUndefined(tokens))
	if err != nil {
		return nil, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, jsonc.ToJSON(jsoncText)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArrayParse, err)
	}

	var records []model.ThemeRecord
	if err := json.Unmarshal(compact.Bytes(), &records); err != nil {
		return nil, fmt.Errorf("%w: decode records: %w", ErrArrayParse, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: literal is not an array", ErrArrayParse)
	}

	return records, nil
}

func parseError(pos int, format string, args ...any) error {
	return fmt.Errorf("%w: offset %d: %s", ErrArrayParse, pos, fmt.Sprintf(format, args...))
}

// transcode rewrites tokens into JSONC. Comments and trailing commas are left
// in place for jsonc.ToJSON to strip.
func transcode(tokens []token) ([]byte, error) {
	var buf bytes.Buffer

	for i, tok := range tokens {
		if i > 0 {
			buf.WriteByte(' ')
		}

		switch tok.kind {
		case tokPunct:
			buf.WriteString(tok.text)
		case tokComment:
			buf.WriteString(tok.text)
			if strings.HasPrefix(tok.text, "//") {
				buf.WriteByte('\n')
			}
		case tokString:
			buf.Write(quoteJSON(tok.value))
		case tokNumber:
			if isKey(tokens, i) {
				buf.Write(quoteJSON(tok.text))
				continue
			}
			num, err := normalizeNumber(tok.text)
			if err != nil {
				return nil, parseError(tok.pos, "%v", err)
			}
			buf.WriteString(num)
		case tokIdent:
			if isKey(tokens, i) {
				buf.Write(quoteJSON(tok.text))
				continue
			}
			switch tok.text {
			case "true", "false", "null":
				buf.WriteString(tok.text)
			case "undefined":
				buf.WriteString("null")
			default:
				return nil, parseError(tok.pos, "unsupported identifier %q", tok.text)
			}
		}
	}

	return buf.Bytes(), nil
}

// dropUndefined removes object properties whose value is undefined along with
// their trailing comma. Array elements are left for transcode to turn into null.
func dropUndefined(tokens []token) []token {
	out := make([]token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.kind != tokIdent || tok.text != "undefined" || isKey(tokens, i) {
			out = append(out, tok)
			continue
		}

		colon := lastSignificant(out)
		if colon < 0 || out[colon].kind != tokPunct || out[colon].text != ":" {
			out = append(out, tok)
			continue
		}
		key := lastSignificant(out[:colon])
		if key < 0 || out[key].kind == tokPunct {
			out = append(out, tok)
			continue
		}
		out = out[:key]

		if next := nextSignificant(tokens, i); next > 0 && tokens[next].kind == tokPunct && tokens[next].text == "," {
			i = next
		}
	}
	return out
}

func lastSignificant(tokens []token) int {
	for j := len(tokens) - 1; j >= 0; j-- {
		if tokens[j].kind != tokComment {
			return j
		}
	}
	return -1
}

func nextSignificant(tokens []token, i int) int {
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].kind != tokComment {
			return j
		}
	}
	return -1
}

// isKey reports whether tokens[i] is an object key, i.e. the next
// non-comment token is ':'.
func isKey(tokens []token, i int) bool {
	j := nextSignificant(tokens, i)
	return j >= 0 && tokens[j].kind == tokPunct && tokens[j].text == ":"
}

// normalizeNumber converts a numeric literal to the text JSON.stringify would
// print for it: 1.0 becomes 1, 1e3 becomes 1000, 0x1F becomes 31.
func normalizeNumber(text string) (string, error) {
	if legacyOctal.MatchString(text) {
		return "", fmt.Errorf("unsupported number %q", text)
	}

	var f float64
	if jsonNumber.MatchString(text) {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return "", fmt.Errorf("unsupported number %q", text)
		}
		f = v
	} else if n, err := strconv.ParseInt(text, 0, 64); err == nil {
		f = float64(n)
	} else if v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64); err == nil && !isSpecialFloat(text) && !isHexFloat(text) {
		f = v
	} else {
		return "", fmt.Errorf("unsupported number %q", text)
	}

	return formatNumber(f), nil
}

// formatNumber prints f the way JavaScript's Number.prototype.toString does:
// plain decimals for magnitudes in [1e-6, 1e21), exponent form otherwise.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + exp
}

func isHexFloat(text string) bool {
	lower := strings.ToLower(strings.TrimLeft(text, "+-"))
	return strings.HasPrefix(lower, "0x")
}

func isSpecialFloat(text string) bool {
	lower := strings.ToLower(strings.TrimLeft(text, "+-"))
	return strings.HasPrefix(lower, "inf") || strings.HasPrefix(lower, "nan")
}

func quoteJSON(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

func lex(src string) ([]token, error) {
	var tokens []token
	pos := 0

	for pos < len(src) {
		ch := src[pos]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			pos++
		case strings.IndexByte("{}[]:,", ch) >= 0:
			tokens = append(tokens, token{kind: tokPunct, text: src[pos : pos+1], pos: pos})
			pos++
		case ch == '/':
			end := skipComment(src, pos)
			if end == pos {
				return nil, parseError(pos, "unexpected '/'")
			}
			if strings.HasPrefix(src[pos:], "/*") && (end-pos < 4 || !strings.HasSuffix(src[pos:end], "*/")) {
				return nil, parseError(pos, "unterminated block comment")
			}
			tokens = append(tokens, token{kind: tokComment, text: src[pos:end], pos: pos})
			pos = end
		case ch == '"' || ch == '\'' || ch == '`':
			value, end, err := lexString(src, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, text: src[pos:end], value: value, pos: pos})
			pos = end
		case strings.HasPrefix(src[pos:], "..."):
			return nil, parseError(pos, "spread syntax is not supported")
		case ch == '-' || ch == '+' || ch == '.' || isDigit(ch):
			end := pos + 1
			for end < len(src) && isNumberByte(src[end]) {
				end++
			}
			tokens = append(tokens, token{kind: tokNumber, text: src[pos:end], pos: pos})
			pos = end
		default:
			r, size := utf8.DecodeRuneInString(src[pos:])
			if !isIdentStart(r) {
				return nil, parseError(pos, "unexpected character %q", r)
			}
			end := pos + size
			for end < len(src) {
				r, size = utf8.DecodeRuneInString(src[end:])
				if !isIdentStart(r) && !unicode.IsDigit(r) {
					break
				}
				end += size
			}
			tokens = append(tokens, token{kind: tokIdent, text: src[pos:end], pos: pos})
			pos = end
		}
	}

	return tokens, nil
}

// lexString decodes the string literal starting at pos and returns its value
// and the position just past the closing quote.
func lexString(src string, pos int) (string, int, error) {
	quote := src[pos]
	var sb strings.Builder

	i := pos + 1
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == quote:
			return sb.String(), i + 1, nil
		case ch == '\\':
			next, err := decodeEscape(src, i, &sb)
			if err != nil {
				return "", 0, err
			}
			i = next
		case quote == '`' && ch == '$' && i+1 < len(src) && src[i+1] == '{':
			return "", 0, parseError(i, "template interpolation is not supported")
		case quote != '`' && (ch == '\n' || ch == '\r'):
			return "", 0, parseError(pos, "unterminated string")
		default:
			sb.WriteByte(ch)
			i++
		}
	}

	return "", 0, parseError(pos, "unterminated string")
}

// decodeEscape decodes the escape sequence at src[i] (a backslash) into sb
// and returns the position after it.
func decodeEscape(src string, i int, sb *strings.Builder) (int, error) {
	if i+1 >= len(src) {
		return 0, parseError(i, "unterminated escape")
	}

	c := src[i+1]
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		if i+2 < len(src) && isDigit(src[i+2]) {
			return 0, parseError(i, "octal escapes are not supported")
		}
		sb.WriteByte(0)
	case '\r':
		if i+2 < len(src) && src[i+2] == '\n' {
			return i + 3, nil
		}
	case '\n':
		// line continuation
	case 'x':
		if i+4 > len(src) {
			return 0, parseError(i, "invalid \\x escape")
		}
		n, err := strconv.ParseUint(src[i+2:i+4], 16, 8)
		if err != nil {
			return 0, parseError(i, "invalid \\x escape")
		}
		sb.WriteRune(rune(n))
		return i + 4, nil
	case 'u':
		return decodeUnicodeEscape(src, i, sb)
	default:
		r, size := utf8.DecodeRuneInString(src[i+1:])
		if r != '\u2028' && r != '\u2029' {
			sb.WriteRune(r)
		}
		return i + 1 + size, nil
	}

	return i + 2, nil
}

func decodeUnicodeEscape(src string, i int, sb *strings.Builder) (int, error) {
	r, next, ok := readUnicodeEscape(src, i)
	if !ok {
		return 0, parseError(i, "invalid \\u escape")
	}

	if utf16.IsSurrogate(r) {
		low, after, ok := readUnicodeEscape(src, next)
		if !ok {
			return 0, parseError(i, "unpaired surrogate \\u%04X", r)
		}
		pair := utf16.DecodeRune(r, low)
		if pair == unicode.ReplacementChar {
			return 0, parseError(i, "unpaired surrogate \\u%04X", r)
		}
		sb.WriteRune(pair)
		return after, nil
	}

	sb.WriteRune(r)
	return next, nil
}

// readUnicodeEscape reads \uXXXX or \u{X...} at src[i].
func readUnicodeEscape(src string, i int) (rune, int, bool) {
	if !strings.HasPrefix(src[i:], `\u`) {
		return 0, 0, false
	}
	start := i + 2

	if start < len(src) && src[start] == '{' {
		end := strings.IndexByte(src[start:], '}')
		if end < 2 {
			return 0, 0, false
		}
		n, err := strconv.ParseUint(src[start+1:start+end], 16, 32)
		if err != nil || n > unicode.MaxRune {
			return 0, 0, false
		}
		return rune(n), start + end + 1, true
	}

	if start+4 > len(src) {
		return 0, 0, false
	}
	n, err := strconv.ParseUint(src[start:start+4], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return rune(n), start + 4, true
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNumberByte(ch byte) bool {
	return isDigit(ch) || ch == '.' || ch == '_' || ch == '+' || ch == '-' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}
