package model

import (
	"time"

	"gorm.io/gorm"
)

// Repository holds per-repository configuration: merge defaults, the PR
// title validation pattern, and whether unknown PRs are auto-created by
// sync.
type Repository struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Owner string `gorm:"uniqueIndex:idx_repository_owner_name;not null" json:"owner"`
	Name  string `gorm:"uniqueIndex:idx_repository_owner_name;not null" json:"name"`

	// ManualInteraction, when true, means sync never auto-creates PR rows
	// for unknown PR numbers unless force_creation is requested.
	ManualInteraction bool `gorm:"not null;default:false" json:"manual_interaction"`

	// PRTitleValidationRegex is matched anchored at the start of the PR
	// title. An empty pattern is trivially valid for every title.
	PRTitleValidationRegex string `gorm:"not null;default:''" json:"pr_title_validation_regex"`

	DefaultStrategy      MergeStrategy `gorm:"not null;default:merge" json:"default_strategy"`
	DefaultAutomerge     bool          `gorm:"not null;default:false" json:"default_automerge"`
	DefaultEnableQa      bool          `gorm:"not null;default:true" json:"default_enable_qa"`
	DefaultEnableChecks  bool          `gorm:"not null;default:true" json:"default_enable_checks"`

	PullRequests    []PullRequest    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	MergeRules      []MergeRule      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RepositoryRules []RepositoryRule `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Repository) TableName() string { return "repository" }

// Path formats the repository's (owner, name) identity the way log lines
// and lock keys reference it.
func (r Repository) Path() string {
	return r.Owner + "/" + r.Name
}
