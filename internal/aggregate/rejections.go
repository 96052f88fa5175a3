package aggregate

import (
	"fmt"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// Rejections retains rejected candidates transiently for a run's audit
// report. Records expire after the configured TTL; rejections are a
// first-class outcome but not durable glossary state.
type Rejections struct {
	cache *gocache.Cache
	seq   atomic.Uint64
}

// NewRejections creates the transient rejection store.
func NewRejections(ttl time.Duration) *Rejections {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Rejections{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

// Add retains one rejection record.
func (r *Rejections) Add(rec model.RejectionRecord) {
	key := fmt.Sprintf("%s|%s|%d|%d", rec.Candidate, rec.Page.DocumentID, rec.Page.Page, r.seq.Add(1))
	r.cache.Set(key, rec, gocache.DefaultExpiration)
}

// List returns all retained rejection records.
func (r *Rejections) List() []model.RejectionRecord {
	items := r.cache.Items()
	out := make([]model.RejectionRecord, 0, len(items))
	for _, item := range items {
		if rec, ok := item.Object.(model.RejectionRecord); ok {
			out = append(out, rec)
		}
	}
	return out
}

// CountByReason aggregates retained rejections into the audit breakdown
// used by run reports.
func (r *Rejections) CountByReason() map[model.RejectReason]int {
	out := make(map[model.RejectReason]int)
	for _, rec := range r.List() {
		out[rec.Reason]++
	}
	return out
}
