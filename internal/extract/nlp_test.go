package extract

import (
	"strings"
	"testing"
)

func TestNLPStrategy_NoArticleResidue(t *testing.T) {
	s := NewNLPStrategy()

	text := "The Bioreactor holds the culture. The Mixing Time is measured after inoculation."
	cands := s.Candidates(text, testPage, "en")
	if len(cands) == 0 {
		t.Fatal("expected noun phrase candidates")
	}
	for _, c := range cands {
		lower := strings.ToLower(c.Text)
		if strings.HasPrefix(lower, "the ") || strings.HasPrefix(lower, "a ") || strings.HasPrefix(lower, "an ") {
			t.Errorf("candidate retained leading article: %q", c.Text)
		}
	}
	if !containsText(cands, "Bioreactor") {
		t.Errorf("expected %q among %v", "Bioreactor", candidateTexts(cands))
	}
}

func TestNLPStrategy_OffsetsPointIntoText(t *testing.T) {
	s := NewNLPStrategy()

	text := "A stirred tank reactor supports aerobic cultivation."
	for _, c := range s.Candidates(text, testPage, "en") {
		if c.Offset < 0 || c.Offset >= len(text) {
			t.Fatalf("offset %d out of range for %q", c.Offset, c.Text)
		}
		firstWord := strings.Fields(c.Text)[0]
		if !strings.HasPrefix(text[c.Offset:], firstWord) {
			t.Errorf("offset %d of %q does not point at the phrase", c.Offset, c.Text)
		}
	}
}

func TestNLPStrategy_EmptyText(t *testing.T) {
	s := NewNLPStrategy()

	if got := s.Candidates("", testPage, "en"); len(got) != 0 {
		t.Errorf("expected no candidates, got %v", candidateTexts(got))
	}
}

func TestNLPStrategy_Deterministic(t *testing.T) {
	s := NewNLPStrategy()

	text := "The impeller drives bulk mixing inside the vessel."
	a := candidateTexts(s.Candidates(text, testPage, "en"))
	b := candidateTexts(s.Candidates(text, testPage, "en"))
	if strings.Join(a, "|") != strings.Join(b, "|") {
		t.Errorf("candidate generation not deterministic: %v vs %v", a, b)
	}
}
