package model

import (
	"time"

	"gorm.io/gorm"
)

// MergeRule maps a (repository, base_branch, head_branch) triple to the
// merge strategy used when a PR matching both branches is merged.
type MergeRule struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RepositoryID uint       `gorm:"uniqueIndex:idx_merge_rule_repo_branches;not null" json:"repository_id"`
	Repository   Repository `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	// BaseBranch/HeadBranch are persisted as the literal branch name, or
	// "*" for Wildcard (see RuleBranch.String/BranchFromString).
	BaseBranch string `gorm:"uniqueIndex:idx_merge_rule_repo_branches;not null" json:"base_branch"`
	HeadBranch string `gorm:"uniqueIndex:idx_merge_rule_repo_branches;not null" json:"head_branch"`

	Strategy MergeStrategy `gorm:"not null" json:"strategy"`
}

func (MergeRule) TableName() string { return "merge_rule" }

// Base returns the BaseBranch column as a RuleBranch value.
func (m MergeRule) Base() RuleBranch { return BranchFromString(m.BaseBranch) }

// Head returns the HeadBranch column as a RuleBranch value.
func (m MergeRule) Head() RuleBranch { return BranchFromString(m.HeadBranch) }

// Matches reports whether this rule applies to a PR with the given upstream
// base and head branch names.
func (m MergeRule) Matches(base, head string) bool {
	return m.Base().Matches(base) && m.Head().Matches(head)
}
