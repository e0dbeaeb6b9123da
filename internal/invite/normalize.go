package invite

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// confusables maps letters commonly misread as digits onto the digit
// they resemble. The substitution runs letter-to-digit only and applies
// to every code regardless of format, so two transcriptions of the same
// code compare equal even when one reader saw a letter and the other a
// digit. Generated codes avoid these letters entirely (SafeAlphabet),
// so the substitution only ever rescues mistyped input and legacy
// codes that predate the safe alphabet.
var confusables = strings.NewReplacer(
	"O", "0",
	"I", "1",
	"L", "1",
)

// Normalize canonicalizes freely typed user input into the comparison
// form used as the persistence key: trimmed, width-folded, uppercased,
// separator-free, prefix-free, with confusable letters rewritten to
// digits. It is pure, never fails, and is idempotent. Empty or
// whitespace-only input normalizes to the empty string.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = width.Fold.String(s)
	s = strings.ToUpper(s)
	s = stripSeparators(s)
	s = strings.TrimPrefix(s, "INV")
	return confusables.Replace(s)
}

// stripSeparators removes whitespace and hyphens anywhere in the
// string. Both are cosmetic and carry no meaning.
func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s)
}

// Diagnostics records the value after each normalization step together
// with the final classification. It exists for debug logging only;
// control flow must use Normalize and Classify.
type Diagnostics struct {
	Input          string
	Trimmed        string
	WidthFolded    string
	Uppercased     string
	SeparatorsFree string
	PrefixStripped string
	Normalized     string
	Format         CodeFormat
	Classified     bool
}

// NormalizeWithDiagnostics runs the normalization pipeline step by
// step, recording each intermediate value.
func NormalizeWithDiagnostics(raw string) Diagnostics {
	d := Diagnostics{Input: raw}
	d.Trimmed = strings.TrimSpace(raw)
	d.WidthFolded = width.Fold.String(d.Trimmed)
	d.Uppercased = strings.ToUpper(d.WidthFolded)
	d.SeparatorsFree = stripSeparators(d.Uppercased)
	d.PrefixStripped = strings.TrimPrefix(d.SeparatorsFree, "INV")
	d.Normalized = confusables.Replace(d.PrefixStripped)
	d.Format, d.Classified = Classify(d.Normalized)
	return d
}
