// Package strategy resolves which merge method applies to a pull request.
package strategy

import "github.com/prbot/prbot/internal/model"

const defaultStrategy = model.MergeStrategyMerge

// Resolve picks the merge strategy for pr's base/head branches, in priority
// order: a per-PR override, the first matching merge rule for
// (baseBranch, headBranch), the repository's configured default, and
// finally MergeStrategyMerge.
func Resolve(override *model.MergeStrategy, baseBranch, headBranch string, rules []model.MergeRule, repo *model.Repository) model.MergeStrategy {
	if override != nil {
		return *override
	}

	for _, rule := range rules {
		if rule.Matches(baseBranch, headBranch) {
			return rule.Strategy
		}
	}

	if repo != nil && repo.DefaultStrategy != "" {
		return repo.DefaultStrategy
	}

	return defaultStrategy
}
