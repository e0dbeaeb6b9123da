// Package invite contains the invitation code format: normalization,
// classification, validation, and generation.
package invite

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	// DisplayPrefix is prepended to new-format codes for display only.
	// It is never persisted and is stripped during normalization.
	DisplayPrefix = "INV-"

	// CodeLength is the number of symbols in every invitation code.
	CodeLength = 6

	// SafeAlphabet is the generation alphabet for new-format codes.
	// O, I, L, 0 and 1 are excluded so a freshly issued code never
	// contains a glyph that normalization would rewrite.
	SafeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	// LegacyAlphabet is the generation alphabet for legacy numeric codes.
	LegacyAlphabet = "0123456789"
)

var (
	// LegacyCodePattern matches legacy numeric codes.
	LegacyCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

	// NewCodePattern matches new-format codes. It is a superset of the
	// legacy pattern, so classification checks legacy first.
	NewCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)
)

// CodeKind identifies which of the two coexisting code formats a
// normalized code belongs to.
type CodeKind int

const (
	CodeKindLegacy CodeKind = iota
	CodeKindNew
)

func (k CodeKind) String() string {
	switch k {
	case CodeKindLegacy:
		return "legacy"
	case CodeKindNew:
		return "new"
	default:
		return "unknown"
	}
}

// CodeFormat is a classified, normalized invitation code. It is used
// transiently during validation and never persisted.
type CodeFormat struct {
	Kind CodeKind
	Code string
}

// DisplayFormat renders the code for users. New-format codes carry the
// display prefix; legacy codes are shown bare.
func (f CodeFormat) DisplayFormat() string {
	if f.Kind == CodeKindNew {
		return DisplayPrefix + f.Code
	}
	return f.Code
}

// Classify determines which code format a normalized string matches.
// All-digit strings match both patterns and must classify as legacy:
// legacy codes predate the new format and keep priority during the
// migration period.
func Classify(normalized string) (CodeFormat, bool) {
	if LegacyCodePattern.MatchString(normalized) {
		return CodeFormat{Kind: CodeKindLegacy, Code: normalized}, true
	}
	if NewCodePattern.MatchString(normalized) {
		return CodeFormat{Kind: CodeKindNew, Code: normalized}, true
	}
	return CodeFormat{}, false
}

// ValidationReason discriminates why a code failed validation.
type ValidationReason int

const (
	ReasonEmpty ValidationReason = iota
	ReasonInvalidLength
	ReasonInvalidCharacters
)

// ValidationError is a user-correctable input error. The message is
// ready for display.
type ValidationError struct {
	Reason ValidationReason
	Length int // observed length, set for ReasonInvalidLength
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "enter an invitation code"
	case ReasonInvalidLength:
		return fmt.Sprintf("invitation codes are %d characters (entered: %d)", CodeLength, e.Length)
	case ReasonInvalidCharacters:
		return fmt.Sprintf("enter a code like %sXXXXXX (%d letters or digits) or %d digits",
			DisplayPrefix, CodeLength, CodeLength)
	default:
		return "invalid invitation code"
	}
}

// Validate checks a normalized code against the format rules and
// returns its classification. Unlike Classify it reports why a code is
// rejected. It never panics and performs no I/O.
func Validate(normalized string) (CodeFormat, *ValidationError) {
	if normalized == "" {
		return CodeFormat{}, &ValidationError{Reason: ReasonEmpty}
	}
	if n := utf8.RuneCountInString(normalized); n != CodeLength {
		return CodeFormat{}, &ValidationError{Reason: ReasonInvalidLength, Length: n}
	}

	format, ok := Classify(normalized)
	if !ok {
		return CodeFormat{}, &ValidationError{Reason: ReasonInvalidCharacters}
	}
	return format, nil
}
