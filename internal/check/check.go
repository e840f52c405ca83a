// Package check aggregates GitHub check-run results for a commit into a
// single pass/fail/waiting verdict.
package check

import (
	"sort"

	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/platform"
)

const (
	conclusionSuccess = "success"
	conclusionFailure = "failure"
)

// Aggregate reduces a commit's check-runs to a single CheckStatus.
//
// Runs are first grouped by name, keeping only the most recent run per
// name (GitHub re-runs a check under the same name). The kept runs are
// then sorted by name for deterministic evaluation order before being
// reduced: any failure wins outright, any unconcluded run forces Waiting,
// and otherwise Pass requires at least one run to have actually
// succeeded — an aggregate made up entirely of inert conclusions stays
// Waiting rather than passing by default. Conclusions outside
// {success, failure, ""} (neutral, skipped, stale, cancelled,
// action_required, timed_out, startup_failure) are inert: they neither
// pass nor fail the aggregate.
func Aggregate(runs []platform.CheckRun) model.CheckStatus {
	if len(runs) == 0 {
		return model.CheckStatusWaiting
	}

	latest := make(map[string]platform.CheckRun, len(runs))
	for _, run := range runs {
		existing, ok := latest[run.Name]
		if !ok || run.StartedAt.After(existing.StartedAt) {
			latest[run.Name] = run
		}
	}

	names := make([]string, 0, len(latest))
	for name := range latest {
		names = append(names, name)
	}
	sort.Strings(names)

	waiting := false
	succeeded := false
	for _, name := range names {
		switch latest[name].Conclusion {
		case conclusionFailure:
			return model.CheckStatusFail
		case "":
			waiting = true
		case conclusionSuccess:
			succeeded = true
		default:
			// neutral/skipped/stale/cancelled/action_required/timed_out/startup_failure: inert
		}
	}

	if waiting || !succeeded {
		return model.CheckStatusWaiting
	}
	return model.CheckStatusPass
}
