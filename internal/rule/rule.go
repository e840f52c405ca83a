// Package rule evaluates RepositoryRule conditions against an upstream pull
// request snapshot and applies the matched rules' actions to the local
// PullRequest record.
package rule

import (
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/platform"
	"github.com/prbot/prbot/internal/store"
)

// Resolve returns the RepositoryRules whose conditions match upstream.
//
// A rule with an empty condition list or empty action list is ignored
// entirely. Otherwise, each condition of a rule is evaluated in turn: a
// condition that matches causes the rule to be appended to the output; a
// condition that fails is simply skipped, leaving evaluation of the rule's
// remaining conditions unaffected. This means a rule with several matching
// conditions is appended to the output once per matching condition — the
// output is intentionally not deduplicated, preserving the original
// behavior byte for byte.
func Resolve(rules []model.RepositoryRule, upstream *platform.PullRequest) []model.RepositoryRule {
	var output []model.RepositoryRule

	for _, r := range rules {
		if !r.IsActive() {
			continue
		}

		for _, condition := range r.Conditions {
			switch condition.Type {
			case model.RuleConditionAuthor:
				if condition.Author != upstream.Author {
					continue
				}
			case model.RuleConditionBaseBranch:
				if condition.Branch.Type == model.RuleBranchNamed && condition.Branch.Value != upstream.BaseBranch {
					continue
				}
			case model.RuleConditionHeadBranch:
				if condition.Branch.Type == model.RuleBranchNamed && condition.Branch.Value != upstream.HeadBranch {
					continue
				}
			}

			output = append(output, r)
		}
	}

	return output
}

// Apply executes each matched rule's actions against pr, persisting
// changed fields via pullRequests, and returns whether pr changed.
func Apply(pullRequests store.PullRequestStore, pr *model.PullRequest, rules []model.RepositoryRule) (bool, error) {
	changed := false

	for _, r := range rules {
		for _, action := range r.Actions {
			switch action.Type {
			case model.RuleActionSetAutomerge:
				if pr.Automerge != action.Bool {
					pr.Automerge = action.Bool
					changed = true
				}
			case model.RuleActionSetQaStatus:
				if pr.QaStatus != action.QaStatus {
					pr.QaStatus = action.QaStatus
					changed = true
				}
			case model.RuleActionSetChecksEnabled:
				if pr.ChecksEnabled != action.Bool {
					pr.ChecksEnabled = action.Bool
					changed = true
				}
			}
		}
	}

	if changed {
		if err := pullRequests.Save(pr); err != nil {
			return false, err
		}
	}

	return changed, nil
}
