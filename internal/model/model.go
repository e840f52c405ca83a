// Package model defines the persisted entities and value types for prbot's
// synchronization engine: repositories, pull requests, merge rules,
// repository rules, and external accounts used for the external-auth
// endpoint.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MergeStrategy is the platform merge method used when a PR is merged.
type MergeStrategy string

const (
	MergeStrategyMerge  MergeStrategy = "merge"
	MergeStrategySquash MergeStrategy = "squash"
	MergeStrategyRebase MergeStrategy = "rebase"
)

// QaStatus is the manual QA verdict tracked on a PullRequest.
type QaStatus string

const (
	QaStatusWaiting QaStatus = "waiting"
	QaStatusSkipped QaStatus = "skipped"
	QaStatusPass    QaStatus = "pass"
	QaStatusFail    QaStatus = "fail"
)

// CheckStatus is the aggregated verdict over a PR's upstream check-runs.
type CheckStatus string

const (
	CheckStatusWaiting CheckStatus = "waiting"
	CheckStatusSkipped CheckStatus = "skipped"
	CheckStatusPass    CheckStatus = "pass"
	CheckStatusFail    CheckStatus = "fail"
)

// StepLabel is the `step/<label>` issue label projected onto a PR.
// StepMerged is reserved for a future extension; the decision ladder never
// returns it (see DESIGN.md Open Question decision #2).
type StepLabel string

const (
	StepWip              StepLabel = "wip"
	StepAwaitingChanges  StepLabel = "awaiting-changes"
	StepAwaitingChecks   StepLabel = "awaiting-checks"
	StepAwaitingReview   StepLabel = "awaiting-review"
	StepAwaitingQa       StepLabel = "awaiting-qa"
	StepLocked           StepLabel = "locked"
	StepAwaitingMerge    StepLabel = "awaiting-merge"
	StepMerged           StepLabel = "merged"
)

// RuleBranchType discriminates the two RuleBranch variants.
type RuleBranchType string

const (
	RuleBranchNamed    RuleBranchType = "named"
	RuleBranchWildcard RuleBranchType = "wildcard"
)

// RuleBranch is the tagged variant {Named(name) | Wildcard} used for
// MergeRule base/head branches. It is persisted as the literal branch name,
// or "*" for Wildcard.
type RuleBranch struct {
	Type  RuleBranchType `json:"type"`
	Value string         `json:"value,omitempty"`
}

// NamedBranch builds a RuleBranch matching a literal branch name.
func NamedBranch(name string) RuleBranch {
	return RuleBranch{Type: RuleBranchNamed, Value: name}
}

// WildcardBranch builds a RuleBranch matching any branch.
func WildcardBranch() RuleBranch {
	return RuleBranch{Type: RuleBranchWildcard}
}

// Matches reports whether this branch condition matches the given upstream
// branch name.
func (b RuleBranch) Matches(name string) bool {
	if b.Type == RuleBranchWildcard {
		return true
	}
	return b.Value == name
}

// String renders the branch the way it is persisted in the merge_rule table.
func (b RuleBranch) String() string {
	if b.Type == RuleBranchWildcard {
		return "*"
	}
	return b.Value
}

// BranchFromString parses the persisted column value back into a RuleBranch.
func BranchFromString(s string) RuleBranch {
	if s == "*" {
		return WildcardBranch()
	}
	return NamedBranch(s)
}

// RuleConditionType discriminates RuleCondition variants.
type RuleConditionType string

const (
	RuleConditionAuthor     RuleConditionType = "author"
	RuleConditionBaseBranch RuleConditionType = "base_branch"
	RuleConditionHeadBranch RuleConditionType = "head_branch"
)

// RuleCondition is the tagged variant
// {Author(login) | BaseBranch(Branch) | HeadBranch(Branch)}.
// Only the fields relevant to Type are populated; it is persisted as a JSON
// object with a "type" discriminator, matching spec.md §3/§9.
type RuleCondition struct {
	Type   RuleConditionType `json:"type"`
	Author string            `json:"author,omitempty"`
	Branch RuleBranch        `json:"branch,omitempty"`
}

// RuleActionType discriminates RuleAction variants.
type RuleActionType string

const (
	RuleActionSetAutomerge      RuleActionType = "set_automerge"
	RuleActionSetQaStatus       RuleActionType = "set_qa_enabled"
	RuleActionSetChecksEnabled  RuleActionType = "set_checks_enabled"
)

// RuleAction is the tagged variant
// {SetAutomerge(bool) | SetQaStatus(QaStatus) | SetChecksEnabled(bool)}.
type RuleAction struct {
	Type     RuleActionType `json:"type"`
	Bool     bool           `json:"bool,omitempty"`
	QaStatus QaStatus       `json:"qa_status,omitempty"`
}

// RuleConditionList and RuleActionList are GORM Valuer/Scanner types storing
// a tagged-variant list as a single JSON column, the pattern the teacher
// uses for its own StringArray/JSONMap columns.

// RuleConditionList is a JSON-column-backed list of RuleCondition.
type RuleConditionList []RuleCondition

// Value implements driver.Valuer.
func (l RuleConditionList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *RuleConditionList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("model: cannot scan %T into RuleConditionList", value)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, l)
}

// RuleActionList is a JSON-column-backed list of RuleAction.
type RuleActionList []RuleAction

// Value implements driver.Valuer.
func (l RuleActionList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *RuleActionList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("model: cannot scan %T into RuleActionList", value)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, l)
}

// AllModels lists every entity GORM should auto-migrate, in FK-safe order.
func AllModels() []interface{} {
	return []interface{}{
		&Repository{},
		&PullRequest{},
		&MergeRule{},
		&RepositoryRule{},
		&ExternalAccount{},
		&ExternalAccountRight{},
	}
}
