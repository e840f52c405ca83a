package model

import (
	"time"

	"gorm.io/gorm"
)

// RepositoryRule is a named (conditions → actions) rule scoped to a
// repository. Either list being empty means the rule is never applied (see
// internal/rule.Resolve).
type RepositoryRule struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RepositoryID uint       `gorm:"uniqueIndex:idx_repository_rule_repo_name;not null" json:"repository_id"`
	Repository   Repository `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Name string `gorm:"uniqueIndex:idx_repository_rule_repo_name;not null" json:"name"`

	Conditions RuleConditionList `gorm:"type:text" json:"conditions"`
	Actions    RuleActionList    `gorm:"type:text" json:"actions"`
}

func (RepositoryRule) TableName() string { return "repository_rule" }

// IsActive reports whether the rule can ever match or act — both lists must
// be non-empty, matching spec.md §3's "empty list ⇒ rule is ignored" rule.
func (r RepositoryRule) IsActive() bool {
	return len(r.Conditions) > 0 && len(r.Actions) > 0
}
