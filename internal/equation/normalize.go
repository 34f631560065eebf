package equation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Sentinel replaces a normalized string that is too short to be an equation.
const Sentinel = "0=0"

// allowedSymbols is the complete alphabet of a normalized equation string.
const allowedSymbols = "0123456789+-*/()=xyz^.<>≤≥√∫∑∏![]{}"

// superscripts maps the superscript characters to what they stand for in an
// exponent.
var superscripts = map[rune]rune{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9',
	'⁺': '+', '⁻': '-',
}

// lookalikes folds characters that OCR engines and handwriting input commonly
// produce in place of the ASCII operators. It runs after NFKC, which turns
// vulgar fractions into digits around a fraction slash.
var lookalikes = strings.NewReplacer(
	"⁄", "/",
	"×", "*",
	"·", "*",
	"÷", "/",
	"−", "-",
	"–", "-",
	"—", "-",
)

// Normalize strips whitespace and every character outside the equation
// alphabet. Results shorter than two characters become Sentinel.
// Normalize is idempotent.
func Normalize(raw string) string {
	folded := lookalikes.Replace(norm.NFKC.String(foldSuperscripts(raw)))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) {
			continue
		}
		if r == 'X' || r == 'Y' || r == 'Z' {
			r = unicode.ToLower(r)
		}
		if strings.ContainsRune(allowedSymbols, r) {
			b.WriteRune(r)
		}
	}

	out := b.String()
	if utf8.RuneCountInString(out) < 2 {
		return Sentinel
	}
	return out
}

// foldSuperscripts rewrites each run of superscript characters as a caret
// followed by the run in plain form, so x⁻¹ becomes x^-1. NFKC alone would
// turn it into x-1.
func foldSuperscripts(s string) string {
	if !strings.ContainsFunc(s, isSuperscript) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	inRun := false
	for _, r := range s {
		plain, ok := superscripts[r]
		if !ok {
			inRun = false
			b.WriteRune(r)
			continue
		}
		if !inRun {
			b.WriteByte('^')
			inRun = true
		}
		b.WriteRune(plain)
	}
	return b.String()
}

func isSuperscript(r rune) bool {
	_, ok := superscripts[r]
	return ok
}

// IsSentinel reports whether s is the placeholder substituted by Normalize.
func IsSentinel(s string) bool {
	return s == Sentinel
}
