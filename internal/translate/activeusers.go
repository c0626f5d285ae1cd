package translate

import (
	"time"

	"github.com/sievetools/jirasieve/internal/entity"
)

// Window bounds the recency heuristics for the active-users computation.
// IssueSince applies to issue reporters and comment authors; HistorySince
// applies to change-history editors and is usually wider.
type Window struct {
	IssueSince   time.Time
	HistorySince time.Time
}

// ComputeActiveUsers derives the set of user names considered current from
// participation recency: reporters of issues created within the issue
// window, authors of comments updated within it, and authors of change
// groups created within the history window. Excluded names are removed
// last, so they stay out even when they participated recently.
//
// The result is computed once per run, before any identity resolution, and
// treated as read-only afterward.
func ComputeActiveUsers(store *entity.Store, w Window, excluded []string) map[string]struct{} {
	active := make(map[string]struct{})

	collect := func(tag, userField, dateField string, since time.Time) {
		for _, r := range store.Records(tag) {
			name := r.Field(userField)
			if name == "" {
				continue
			}
			ts, ok := ParseDumpTime(r.Field(dateField))
			if !ok || ts.Before(since) {
				continue
			}
			active[name] = struct{}{}
		}
	}

	collect("Issue", "reporter", "created", w.IssueSince)
	collect("Action", "author", "updated", w.IssueSince)
	collect("ChangeGroup", "author", "created", w.HistorySince)

	for _, name := range excluded {
		delete(active, name)
	}
	return active
}
