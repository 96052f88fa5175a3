// Package aggregate merges validated term occurrences across pages and
// documents into durable glossary records.
package aggregate

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// Occurrence is one accepted candidate with everything the aggregator
// needs to merge it: verdict, located definitions, provenance and context.
type Occurrence struct {
	Verdict     model.ValidationVerdict
	Definitions []model.DefinitionCandidate
	Provenance  model.Provenance
	Page        model.PageRef
	Excerpt     string
}

// Aggregator is the single shared-mutation point of the pipeline. Upsert
// is atomic per key: the map lock only covers entry lookup/creation, and
// each entry carries its own mutex, so concurrent upserts of different
// keys proceed in parallel while same-key upserts serialize and never lose
// an update.
type Aggregator struct {
	mu    sync.RWMutex
	terms map[model.TermKey]*entry

	maxExcerpts int
	rejections  *Rejections
	logger      *zap.Logger
	now         func() time.Time
}

type entry struct {
	mu   sync.Mutex
	term model.AggregatedTerm
}

// New creates an aggregator with the configured excerpt cap and rejection
// retention.
func New(cfg *model.Config, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		terms:       make(map[model.TermKey]*entry),
		maxExcerpts: cfg.Aggregation.MaxExcerpts,
		rejections:  NewRejections(cfg.Aggregation.RejectionTTL),
		logger:      logger,
		now:         time.Now,
	}
}

// Seed preloads previously persisted terms so a new run merges into the
// durable glossary instead of starting from scratch. Seeded records keep
// their frequency, pages and sync state until an Upsert touches them.
// Keys already present are left alone.
func (a *Aggregator) Seed(terms []model.AggregatedTerm) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range terms {
		if t.Frequency == 0 {
			continue
		}
		if _, ok := a.terms[t.Key]; ok {
			continue
		}
		a.terms[t.Key] = &entry{term: cloneTerm(&t)}
	}
}

// Upsert merges one accepted occurrence and returns the updated record.
// First occurrence of a key creates the record with frequency 1; later
// occurrences increment frequency, append unseen pages, cap excerpts and
// merge definitions. Any mutation moves the term back to pending sync.
func (a *Aggregator) Upsert(occ Occurrence) model.AggregatedTerm {
	key := model.NewTermKey(occ.Verdict.Candidate, occ.Provenance.Language, occ.Provenance.Class)

	a.mu.Lock()
	en, ok := a.terms[key]
	if !ok {
		en = &entry{}
		a.terms[key] = en
	}
	a.mu.Unlock()

	en.mu.Lock()
	defer en.mu.Unlock()

	ts := a.now().UTC()
	t := &en.term
	if t.Frequency == 0 {
		// Fresh record; the first-seen surface form is canonical.
		t.Key = key
		t.DisplayText = occ.Verdict.Candidate
		t.CreatedAt = ts
	}
	t.Frequency++
	t.UpdatedAt = ts
	t.SyncState = model.SyncPending
	t.SyncAttempts = 0
	t.SyncError = ""

	if !t.HasPage(occ.Page) {
		t.Pages = append(t.Pages, occ.Page)
	}
	if occ.Excerpt != "" && len(t.Excerpts) < a.maxExcerpts && !containsString(t.Excerpts, occ.Excerpt) {
		t.Excerpts = append(t.Excerpts, occ.Excerpt)
	}
	if occ.Verdict.Confidence > t.Confidence {
		t.Confidence = occ.Verdict.Confidence
	}
	t.Definitions = mergeDefinitions(t.Definitions, occ.Definitions)

	a.logger.Debug("term upserted",
		zap.String("term", t.DisplayText),
		zap.String("language", key.Language),
		zap.Int("frequency", t.Frequency),
	)
	return cloneTerm(t)
}

// RecordRejection retains a rejected candidate transiently for the run's
// rejection report. Rejections are never aggregated.
func (a *Aggregator) RecordRejection(v model.ValidationVerdict, page model.PageRef) {
	rec := model.RejectionRecord{
		Candidate:  v.Candidate,
		Language:   v.Language,
		Page:       page,
		FailedRule: v.FailedRule,
		Reason:     v.Reason,
		RejectedAt: a.now().UTC(),
	}
	a.rejections.Add(rec)
	a.logger.Debug("candidate rejected",
		zap.String("candidate", v.Candidate),
		zap.String("reason", string(v.Reason)),
	)
}

// Rejections exposes the transient rejection store.
func (a *Aggregator) Rejections() *Rejections {
	return a.rejections
}

// Get returns a copy of one aggregated term.
func (a *Aggregator) Get(key model.TermKey) (model.AggregatedTerm, bool) {
	a.mu.RLock()
	en, ok := a.terms[key]
	a.mu.RUnlock()
	if !ok {
		return model.AggregatedTerm{}, false
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	return cloneTerm(&en.term), true
}

// Snapshot returns copies of all aggregated terms, highest frequency
// first, ties broken by key text.
func (a *Aggregator) Snapshot() []model.AggregatedTerm {
	a.mu.RLock()
	entries := make([]*entry, 0, len(a.terms))
	for _, en := range a.terms {
		entries = append(entries, en)
	}
	a.mu.RUnlock()

	out := make([]model.AggregatedTerm, 0, len(entries))
	for _, en := range entries {
		en.mu.Lock()
		out = append(out, cloneTerm(&en.term))
		en.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Key.Text < out[j].Key.Text
	})
	return out
}

// Len reports the number of distinct term keys.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.terms)
}

// Purge removes a term. It exists for explicit administrative cleanup
// only; the pipeline itself never deletes.
func (a *Aggregator) Purge(key model.TermKey) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.terms[key]; !ok {
		return false
	}
	delete(a.terms, key)
	return true
}

// mergeDefinitions combines definition candidates, deduplicating by
// normalized sentence text and keeping the highest-specificity match
// ranked first with the primary flag.
func mergeDefinitions(existing, incoming []model.DefinitionCandidate) []model.DefinitionCandidate {
	merged := make([]model.DefinitionCandidate, 0, len(existing)+len(incoming))
	seen := make(map[string]int) // normalized sentence -> index in merged

	for _, d := range append(append([]model.DefinitionCandidate{}, existing...), incoming...) {
		norm := normalizeSentence(d.Sentence)
		if idx, ok := seen[norm]; ok {
			// Keep the more specific match for the same sentence.
			if d.Kind.Specificity() < merged[idx].Kind.Specificity() {
				merged[idx] = d
			}
			continue
		}
		seen[norm] = len(merged)
		merged = append(merged, d)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Kind.Specificity() < merged[j].Kind.Specificity()
	})
	for i := range merged {
		merged[i].Primary = i == 0 &&
			(merged[i].Kind == model.PatternIs || merged[i].Kind == model.PatternColon)
	}
	return merged
}

func normalizeSentence(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func cloneTerm(t *model.AggregatedTerm) model.AggregatedTerm {
	out := *t
	out.Pages = append([]model.PageRef(nil), t.Pages...)
	out.Excerpts = append([]string(nil), t.Excerpts...)
	out.Definitions = append([]model.DefinitionCandidate(nil), t.Definitions...)
	return out
}
