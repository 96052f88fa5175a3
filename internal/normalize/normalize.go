// Package normalize repairs common document-rendering artifacts in
// extracted page text before any linguistic analysis runs. All fixes are
// idempotent: normalizing already-normalized text is a no-op.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// FixKind identifies one class of repair for audit annotations.
type FixKind string

const (
	FixDoubledWord    FixKind = "doubled_word"    // "Pplloottttiinngg" -> "Plotting"
	FixCharRun        FixKind = "char_run"        // "Heeello" -> "Heello"
	FixLetterSpacing  FixKind = "letter_spacing"  // "S e n s o r" -> "Sensor"
	FixEncodingMarker FixKind = "encoding_marker" // "(cid:31)" stripped
	FixUnparseable    FixKind = "unparseable"     // Input left unchanged, flagged
)

// Fix is one applied-repair annotation, kept so every change to the input
// text is auditable.
type Fix struct {
	Kind     FixKind `json:"kind"`
	Original string  `json:"original"`
	Repaired string  `json:"repaired,omitempty"`
}

// cidMarker matches PDF ToUnicode fallback tokens that some extractors
// leak into the text, with or without the surrounding parentheses.
var cidMarker = regexp.MustCompile(`\(?cid:\d+\)?`)

// Normalizer applies the ordered fix set. It carries no mutable state and
// is safe for concurrent use.
type Normalizer struct{}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize repairs the page text and reports every applied fix. It never
// fails: input it cannot make sense of (empty or whitespace-only) is
// returned unchanged with an FixUnparseable annotation.
func (n *Normalizer) Normalize(text string) (string, []Fix) {
	if strings.TrimSpace(text) == "" {
		return text, []Fix{{Kind: FixUnparseable, Original: text}}
	}

	var fixes []Fix
	out := norm.NFC.String(text)

	// Order matters: the pairwise doubled-word check must see the raw word,
	// where a "tttt" is the two clean pairs (t,t)(t,t). Collapsing runs
	// first would turn "tttt" into "tt" and break the pairing. Run
	// collapsing then handles whatever doubling left behind, repeating
	// until stable so Normalize stays idempotent even for odd run lengths
	// (5 -> 3 -> 2).
	out, wordFixes := collapseDoubledWords(out)
	fixes = append(fixes, wordFixes...)

	for {
		collapsed, runFixes := collapseCharRuns(out)
		fixes = append(fixes, runFixes...)
		if collapsed == out {
			break
		}
		out = collapsed
	}

	out, spacingFixes := joinLetterSpacing(out)
	fixes = append(fixes, spacingFixes...)

	out, markerFixes := stripEncodingMarkers(out)
	fixes = append(fixes, markerFixes...)

	return out, fixes
}

// collapseCharRuns shortens runs of 3+ identical adjacent characters to
// half the run length rounded up. Legitimate double letters ("Mass",
// "Gitter") are runs of 2 and stay untouched.
func collapseCharRuns(text string) (string, []Fix) {
	var fixes []Fix
	var b strings.Builder
	b.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		run := j - i
		if run >= 3 && unicode.IsLetter(runes[i]) {
			keep := (run + 1) / 2
			fixes = append(fixes, Fix{
				Kind:     FixCharRun,
				Original: strings.Repeat(string(runes[i]), run),
				Repaired: strings.Repeat(string(runes[i]), keep),
			})
			run = keep
		}
		for k := 0; k < run; k++ {
			b.WriteRune(runes[i])
		}
		i = j
	}
	return b.String(), fixes
}

// collapseDoubledWords repairs words whose every letter was rendered twice
// ("Pplloottttiinngg"). A word qualifies when it has at least three pairs
// and each pair matches case-insensitively; the first rune of each pair is
// kept so the original casing survives.
func collapseDoubledWords(text string) (string, []Fix) {
	var fixes []Fix
	words := strings.FieldsFunc(text, func(r rune) bool { return r == ' ' || r == '\n' || r == '\t' })

	out := text
	for _, w := range words {
		// Trailing punctuation ("Wwoorrdd,") must not block the repair.
		core := strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
		repaired, ok := undoubleWord(core)
		if !ok {
			continue
		}
		fixes = append(fixes, Fix{Kind: FixDoubledWord, Original: core, Repaired: repaired})
		out = strings.Replace(out, core, repaired, 1)
	}
	return out, fixes
}

func undoubleWord(w string) (string, bool) {
	runes := []rune(w)
	if len(runes) < 6 || len(runes)%2 != 0 {
		return "", false
	}
	var b strings.Builder
	for i := 0; i < len(runes); i += 2 {
		a, c := runes[i], runes[i+1]
		if !unicode.IsLetter(a) || unicode.ToLower(a) != unicode.ToLower(c) {
			return "", false
		}
		b.WriteRune(a)
	}
	return b.String(), true
}

// joinLetterSpacing rejoins words rendered with a space after every glyph.
// Only maximal runs of 3+ single-letter tokens are joined, so stray "a" or
// "I" in normal prose are never touched.
func joinLetterSpacing(text string) (string, []Fix) {
	var fixes []Fix
	lines := strings.Split(text, "\n")

	for li, line := range lines {
		tokens := strings.Split(line, " ")
		var out []string
		for i := 0; i < len(tokens); {
			j := i
			for j < len(tokens) && isSingleLetter(tokens[j]) {
				j++
			}
			if j-i >= 3 {
				joined := strings.Join(tokens[i:j], "")
				fixes = append(fixes, Fix{
					Kind:     FixLetterSpacing,
					Original: strings.Join(tokens[i:j], " "),
					Repaired: joined,
				})
				out = append(out, joined)
				i = j
				continue
			}
			out = append(out, tokens[i])
			i++
		}
		lines[li] = strings.Join(out, " ")
	}
	return strings.Join(lines, "\n"), fixes
}

func isSingleLetter(tok string) bool {
	r, size := utf8.DecodeRuneInString(tok)
	return size == len(tok) && size > 0 && unicode.IsLetter(r)
}

// stripEncodingMarkers removes cid:<digits> tokens and tidies the
// whitespace they leave behind.
func stripEncodingMarkers(text string) (string, []Fix) {
	var fixes []Fix
	out := cidMarker.ReplaceAllStringFunc(text, func(m string) string {
		fixes = append(fixes, Fix{Kind: FixEncodingMarker, Original: m})
		return ""
	})
	if len(fixes) > 0 {
		// Collapse doubled spaces introduced by marker removal.
		for strings.Contains(out, "  ") {
			out = strings.ReplaceAll(out, "  ", " ")
		}
		out = strings.TrimSpace(out)
	}
	return out, fixes
}
