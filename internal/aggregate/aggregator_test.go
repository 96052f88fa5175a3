package aggregate

import (
	"fmt"
	"sync"
	"testing"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

func newTestAggregator() *Aggregator {
	return New(model.DefaultConfig(), nil)
}

func occurrence(text, docID string, page int) Occurrence {
	return Occurrence{
		Verdict: model.ValidationVerdict{
			Candidate:  text,
			Language:   "en",
			Accepted:   true,
			Confidence: 0.7,
		},
		Provenance: model.Provenance{DocumentID: docID, Language: "en", Class: model.ProvenanceInternal},
		Page:       model.PageRef{DocumentID: docID, Page: page},
		Excerpt:    fmt.Sprintf("... %s in %s page %d ...", text, docID, page),
	}
}

func TestAggregator_CrossDocumentMerge(t *testing.T) {
	a := newTestAggregator()

	a.Upsert(occurrence("Bioreactor", "doc1", 3))
	got := a.Upsert(occurrence("Bioreactor", "doc2", 7))

	if got.Frequency != 2 {
		t.Errorf("frequency = %d, want 2", got.Frequency)
	}
	wantPages := []model.PageRef{{DocumentID: "doc1", Page: 3}, {DocumentID: "doc2", Page: 7}}
	if len(got.Pages) != 2 || got.Pages[0] != wantPages[0] || got.Pages[1] != wantPages[1] {
		t.Errorf("pages = %+v, want %+v", got.Pages, wantPages)
	}
	if a.Len() != 1 {
		t.Errorf("expected one distinct key, got %d", a.Len())
	}
}

func TestAggregator_SeedContinuesPriorState(t *testing.T) {
	a := newTestAggregator()

	prior := model.AggregatedTerm{
		Key:         model.NewTermKey("Bioreactor", "en", model.ProvenanceInternal),
		DisplayText: "Bioreactor",
		Frequency:   3,
		Pages:       []model.PageRef{{DocumentID: "doc1", Page: 3}},
		SyncState:   model.SyncSynced,
	}
	a.Seed([]model.AggregatedTerm{prior})

	got, ok := a.Get(prior.Key)
	if !ok || got.Frequency != 3 || got.SyncState != model.SyncSynced {
		t.Fatalf("seeded term not preserved: %+v", got)
	}

	got = a.Upsert(occurrence("Bioreactor", "doc2", 7))
	if got.Frequency != 4 {
		t.Errorf("frequency = %d, want seeded 3 + 1", got.Frequency)
	}
	if !got.HasPage(model.PageRef{DocumentID: "doc1", Page: 3}) ||
		!got.HasPage(model.PageRef{DocumentID: "doc2", Page: 7}) {
		t.Errorf("pages = %+v, want prior and new page", got.Pages)
	}
	if got.SyncState != model.SyncPending {
		t.Errorf("sync state = %q, mutation must re-pend", got.SyncState)
	}

	// Seeding never clobbers live state and ignores empty records.
	a.Seed([]model.AggregatedTerm{prior, {Key: model.NewTermKey("ghost", "en", model.ProvenanceInternal)}})
	got, _ = a.Get(prior.Key)
	if got.Frequency != 4 {
		t.Errorf("re-seed overwrote live entry: frequency = %d", got.Frequency)
	}
	if a.Len() != 1 {
		t.Errorf("zero-frequency seed created an entry: len = %d", a.Len())
	}
}

func TestAggregator_KeyNormalization(t *testing.T) {
	a := newTestAggregator()

	a.Upsert(occurrence("Mixing Time", "doc1", 1))
	got := a.Upsert(occurrence("mixing  time", "doc1", 2))

	if got.Frequency != 2 {
		t.Errorf("case/spacing variants did not merge: frequency = %d", got.Frequency)
	}
	if got.DisplayText != "Mixing Time" {
		t.Errorf("canonical display text = %q, want first-seen form", got.DisplayText)
	}
}

func TestAggregator_LanguageAndClassSeparateKeys(t *testing.T) {
	a := newTestAggregator()

	en := occurrence("Bioreactor", "doc1", 1)
	de := occurrence("Bioreactor", "doc1", 1)
	de.Provenance.Language = "de"
	ext := occurrence("Bioreactor", "doc1", 1)
	ext.Provenance.Class = "iec-60050"

	a.Upsert(en)
	a.Upsert(de)
	a.Upsert(ext)

	if a.Len() != 3 {
		t.Errorf("expected 3 distinct keys, got %d", a.Len())
	}
}

func TestAggregator_SamePageNotDuplicated(t *testing.T) {
	a := newTestAggregator()

	a.Upsert(occurrence("Sensor", "doc1", 4))
	got := a.Upsert(occurrence("Sensor", "doc1", 4))

	if got.Frequency != 2 {
		t.Errorf("frequency = %d, want 2", got.Frequency)
	}
	if len(got.Pages) != 1 {
		t.Errorf("page list = %+v, want a single entry", got.Pages)
	}
}

func TestAggregator_ExcerptCap(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Aggregation.MaxExcerpts = 2
	a := New(cfg, nil)

	for i := 1; i <= 5; i++ {
		a.Upsert(occurrence("Impeller", "doc1", i))
	}
	got, ok := a.Get(model.NewTermKey("Impeller", "en", model.ProvenanceInternal))
	if !ok {
		t.Fatal("term missing")
	}
	if len(got.Excerpts) != 2 {
		t.Errorf("excerpts = %d, want cap of 2", len(got.Excerpts))
	}
	if got.Frequency != 5 {
		t.Errorf("frequency = %d, want 5", got.Frequency)
	}
}

func TestAggregator_DefinitionMerge(t *testing.T) {
	a := newTestAggregator()

	occ1 := occurrence("Bioreactor", "doc1", 1)
	occ1.Definitions = []model.DefinitionCandidate{
		{Term: "Bioreactor", Kind: model.PatternContext, Sentence: "Used a Bioreactor daily."},
	}
	a.Upsert(occ1)

	occ2 := occurrence("Bioreactor", "doc2", 2)
	occ2.Definitions = []model.DefinitionCandidate{
		{Term: "Bioreactor", Kind: model.PatternIs, Sentence: "The Bioreactor is a cultivation vessel.", Primary: true},
		{Term: "Bioreactor", Kind: model.PatternContext, Sentence: "used a  bioreactor DAILY."}, // dup after normalization
	}
	got := a.Upsert(occ2)

	if len(got.Definitions) != 2 {
		t.Fatalf("definitions = %+v, want 2 after dedup", got.Definitions)
	}
	if got.Definitions[0].Kind != model.PatternIs || !got.Definitions[0].Primary {
		t.Errorf("highest-specificity definition must rank first and be primary: %+v", got.Definitions)
	}
	if got.Definitions[1].Primary {
		t.Error("context definition must not be primary")
	}
}

func TestAggregator_ConcurrentFrequencyExact(t *testing.T) {
	a := newTestAggregator()

	const n = 200
	const m = 120
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a.Upsert(occurrence("Bioreactor", "doc1", i%7+1))
		}(i)
	}
	for i := 0; i < m; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a.Upsert(occurrence("Mischzeit", "doc2", i%5+1))
		}(i)
	}
	wg.Wait()

	first, _ := a.Get(model.NewTermKey("Bioreactor", "en", model.ProvenanceInternal))
	second, _ := a.Get(model.NewTermKey("Mischzeit", "en", model.ProvenanceInternal))
	if first.Frequency != n {
		t.Errorf("first key frequency = %d, want exactly %d", first.Frequency, n)
	}
	if second.Frequency != m {
		t.Errorf("second key frequency = %d, want exactly %d", second.Frequency, m)
	}
}

func TestAggregator_RejectionsRetained(t *testing.T) {
	a := newTestAggregator()

	a.RecordRejection(model.ValidationVerdict{
		Candidate:  "cid:31",
		Language:   "en",
		FailedRule: "pdf_artifacts",
		Reason:     model.ReasonPDFArtifact,
	}, model.PageRef{DocumentID: "doc1", Page: 2})
	a.RecordRejection(model.ValidationVerdict{
		Candidate:  "the",
		Language:   "en",
		FailedRule: "stop_words",
		Reason:     model.ReasonStopWord,
	}, model.PageRef{DocumentID: "doc1", Page: 2})

	if got := len(a.Rejections().List()); got != 2 {
		t.Fatalf("retained rejections = %d, want 2", got)
	}
	byReason := a.Rejections().CountByReason()
	if byReason[model.ReasonPDFArtifact] != 1 || byReason[model.ReasonStopWord] != 1 {
		t.Errorf("unexpected breakdown: %+v", byReason)
	}
	if a.Len() != 0 {
		t.Error("rejections must never be aggregated")
	}
}

func TestAggregator_PendingSyncOnMutation(t *testing.T) {
	a := newTestAggregator()

	got := a.Upsert(occurrence("Bioreactor", "doc1", 1))
	if got.SyncState != model.SyncPending {
		t.Errorf("new term sync state = %s, want pending", got.SyncState)
	}
}
