package extract

import (
	"testing"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

func TestLocator_IsPattern(t *testing.T) {
	l := NewLocator()

	text := "Some context first. The Bioreactor is a vessel for controlled cultivation. More text follows."
	defs := l.Locate("Bioreactor", text, testPage, "en")
	if len(defs) == 0 {
		t.Fatal("expected definition candidates")
	}
	if defs[0].Kind != model.PatternIs {
		t.Errorf("expected is-pattern first, got %s", defs[0].Kind)
	}
	if !defs[0].Primary {
		t.Error("first is-match must carry the primary flag")
	}
	if defs[0].Sentence != "The Bioreactor is a vessel for controlled cultivation." {
		t.Errorf("unexpected sentence: %q", defs[0].Sentence)
	}
}

func TestLocator_SpecificityRanking(t *testing.T) {
	l := NewLocator()

	text := "Mixing Time (tm) was recorded. Mixing Time: the duration until homogeneity. The Mixing Time is a key scale-up parameter."
	defs := l.Locate("Mixing Time", text, testPage, "en")
	if len(defs) < 3 {
		t.Fatalf("expected 3 candidates, got %d: %+v", len(defs), defs)
	}
	wantOrder := []model.PatternKind{model.PatternIs, model.PatternColon, model.PatternParenthetical}
	for i, want := range wantOrder {
		if defs[i].Kind != want {
			t.Errorf("rank %d: got %s, want %s", i, defs[i].Kind, want)
		}
	}
	if !defs[0].Primary {
		t.Error("is-match should be primary")
	}
	for _, d := range defs[1:] {
		if d.Primary {
			t.Errorf("only the first is/colon match may be primary: %+v", d)
		}
	}
}

func TestLocator_DashPattern(t *testing.T) {
	l := NewLocator()

	defs := l.Locate("Rushton turbine", "Rushton turbine – a radial flow impeller with six blades.", testPage, "en")
	if len(defs) == 0 || defs[0].Kind != model.PatternDash {
		t.Fatalf("expected dash pattern, got %+v", defs)
	}
}

func TestLocator_ContextFallback(t *testing.T) {
	l := NewLocator()

	text := "The run used a calibrated Sensor during all phases. Results were stable."
	defs := l.Locate("Sensor", text, testPage, "en")
	if len(defs) != 1 {
		t.Fatalf("expected exactly one fallback candidate, got %d", len(defs))
	}
	if defs[0].Kind != model.PatternContext {
		t.Errorf("expected context fallback, got %s", defs[0].Kind)
	}
	if defs[0].Sentence != "The run used a calibrated Sensor during all phases." {
		t.Errorf("unexpected fallback sentence: %q", defs[0].Sentence)
	}
	if defs[0].Primary {
		t.Error("context fallback must not be primary")
	}
}

func TestLocator_TermAbsent(t *testing.T) {
	l := NewLocator()

	if defs := l.Locate("Impeller", "Nothing about that word here.", testPage, "en"); defs != nil {
		t.Errorf("expected nil for absent term, got %+v", defs)
	}
}

func TestLocator_GermanVerbs(t *testing.T) {
	l := NewLocator()

	defs := l.Locate("Mischzeit", "Die Mischzeit ist die Dauer bis zur Homogenität.", testPage, "de")
	if len(defs) == 0 || defs[0].Kind != model.PatternIs {
		t.Fatalf("expected German is-pattern, got %+v", defs)
	}
}

func TestSplitSentences_AbbreviationGuard(t *testing.T) {
	text := "Impellers, e.g. Rushton turbines, create radial flow. A second sentence."
	got := splitSentences(text, "en")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %+v", len(got), got)
	}
	if got[0].text != "Impellers, e.g. Rushton turbines, create radial flow." {
		t.Errorf("abbreviation split the first sentence: %q", got[0].text)
	}
}

func TestSplitSentences_Offsets(t *testing.T) {
	text := "First one. Second one."
	got := splitSentences(text, "en")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(got))
	}
	if got[1].start != 11 {
		t.Errorf("second sentence start = %d, want 11", got[1].start)
	}
}
