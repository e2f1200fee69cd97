package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/repositories/state"
)

// Issue is one problem found in the mirror
type Issue struct {
	Key     string
	Problem string
	// Unknown is set for keys the store does not own
	Unknown bool
}

var knownKeys = map[string]bool{
	state.KeyRecords:      true,
	state.KeyActiveRecord: true,
	state.KeyGMMode:       true,
	state.KeyRollHistory:  true,
}

// Check scans the mirror without changing it and reports every value Load
// would have to repair or drop
func Check(ctx context.Context, repo state.Repository) ([]Issue, error) {
	if repo == nil {
		return nil, errors.InvalidArgument("repository is required")
	}

	out, err := repo.List(ctx, state.ListInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read state mirror")
	}

	var issues []Issue
	for _, entry := range out.Entries {
		if !knownKeys[entry.Key] {
			issues = append(issues, Issue{Key: entry.Key, Problem: "unknown key", Unknown: true})
			continue
		}
		if !gjson.ValidBytes(entry.Value) {
			issues = append(issues, Issue{Key: entry.Key, Problem: "not valid JSON"})
			continue
		}
		issues = append(issues, checkValue(entry.Key, gjson.ParseBytes(entry.Value))...)
	}

	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Key < issues[j].Key })
	return issues, nil
}

func checkValue(key string, doc gjson.Result) []Issue {
	var issues []Issue
	add := func(format string, args ...any) {
		issues = append(issues, Issue{Key: key, Problem: fmt.Sprintf(format, args...)})
	}

	switch key {
	case state.KeyRecords:
		if !doc.IsObject() {
			add("expected an object of fichas")
			break
		}
		doc.ForEach(func(id, value gjson.Result) bool {
			if !value.IsObject() {
				add("ficha %s is not an object", id.String())
				return true
			}
			if _, ok := entities.DisplayNameOf([]byte(value.Raw)); !ok {
				add("ficha %s has no name", id.String())
			}
			for _, attr := range entities.AllAttributes {
				saved := value.Get("attributes." + string(attr)).Int()
				locked := value.Get("lockedAttributes." + string(attr)).Int()
				if saved < locked {
					add("ficha %s has %s %d below its lock %d", id.String(), attr, saved, locked)
				}
			}
			if xp, locked := value.Get("experience").Int(), value.Get("lockedExperience").Int(); xp < locked {
				add("ficha %s has experience %d below its lock %d", id.String(), xp, locked)
			}
			return true
		})
	case state.KeyActiveRecord:
		if doc.Type != gjson.String {
			add("expected a ficha id")
		}
	case state.KeyGMMode:
		if !doc.IsBool() {
			add("expected true or false")
		}
	case state.KeyRollHistory:
		if !doc.IsObject() {
			add("expected an object of roll lists")
			break
		}
		doc.ForEach(func(id, value gjson.Result) bool {
			if !value.IsArray() {
				add("rolls of %s are not a list", id.String())
			}
			return true
		})
	}
	return issues
}

// Repair loads the mirror, writes the repaired state back and removes keys
// the store does not own. It returns the number of keys removed.
func (s *Store) Repair(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, errors.FailedPrecondition("store has no mirror to repair")
	}

	s.Load(ctx)
	if s.Degraded() {
		return 0, errors.Unavailable("failed to read state mirror")
	}

	s.mu.Lock()
	s.degraded = false
	s.mirrorRecords(ctx)
	s.mirror(ctx, state.KeyActiveRecord, s.activeID)
	s.mirror(ctx, state.KeyGMMode, s.gmMode)
	s.mirror(ctx, state.KeyRollHistory, s.rolls)
	degraded := s.degraded
	s.mu.Unlock()

	if degraded {
		return 0, errors.Unavailable("failed to write repaired state")
	}

	out, err := s.repo.List(ctx, state.ListInput{})
	if err != nil {
		return 0, errors.Wrap(err, "failed to read state mirror")
	}

	removed := 0
	for _, entry := range out.Entries {
		if knownKeys[entry.Key] {
			continue
		}
		deleted, err := s.repo.Delete(ctx, state.DeleteInput{Key: entry.Key})
		if err != nil {
			return removed, errors.Wrapf(err, "failed to delete %s", entry.Key)
		}
		if deleted.Deleted {
			removed++
			slog.InfoContext(ctx, "removed unknown state key", "key", entry.Key)
		}
	}

	return removed, nil
}

// Raw returns the stored value of one mirror key
func Raw(ctx context.Context, repo state.Repository, key string) ([]byte, error) {
	if repo == nil {
		return nil, errors.InvalidArgument("repository is required")
	}
	out, err := repo.Get(ctx, state.GetInput{Key: key})
	if err != nil {
		return nil, err
	}
	return out.Entry.Value, nil
}
