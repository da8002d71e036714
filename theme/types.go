package theme

import "errors"

// DefaultMarker introduces the built-in theme array in shared-types/src/index.ts.
const DefaultMarker = "export const BUILT_IN_PPT_THEMES: PptTheme[] = ["

var (
	// ErrMarkerNotFound is returned when the marker does not occur in the source.
	ErrMarkerNotFound = errors.New("marker not found")
	// ErrArrayParse is returned when the array literal is unterminated or is
	// not a well-formed array of records.
	ErrArrayParse = errors.New("array literal could not be parsed")
)

type tokenKind int

const (
	tokPunct tokenKind = iota
	tokString
	tokNumber
	tokIdent
	tokComment
)

// token is one lexeme of an array literal. For strings, value holds the
// decoded text; text is always the raw source slice.
type token struct {
	kind  tokenKind
	text  string
	value string
	pos   int
}

// scanMode tracks which kind of region the boundary scanner is inside.
type scanMode int

const (
	modeCode scanMode = iota
	modeQuoted
	modeTemplate
)
