package model

import (
	"time"

	"gorm.io/gorm"
)

// PullRequest is the per-PR mutable record: the sync engine's view of a
// GitHub pull request, distinct from the upstream snapshot fetched live
// from the platform on every sync pass.
type PullRequest struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RepositoryID uint       `gorm:"uniqueIndex:idx_pull_request_repo_number;not null" json:"repository_id"`
	Repository   Repository `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Number uint `gorm:"uniqueIndex:idx_pull_request_repo_number;not null" json:"number"`

	QaStatus        QaStatus `gorm:"not null;default:waiting" json:"qa_status"`
	StatusCommentID int64    `gorm:"not null;default:0" json:"status_comment_id"`
	ChecksEnabled   bool     `gorm:"not null;default:true" json:"checks_enabled"`
	Automerge       bool     `gorm:"not null;default:false" json:"automerge"`
	Locked          bool     `gorm:"not null;default:false" json:"locked"`

	// StrategyOverride, if set, supersedes every merge rule for this PR.
	StrategyOverride *MergeStrategy `json:"strategy_override,omitempty"`
}

func (PullRequest) TableName() string { return "pull_request" }

// HasStatusComment reports whether a summary comment has already been
// created for this PR; 0 means none exists yet.
func (p PullRequest) HasStatusComment() bool {
	return p.StatusCommentID > 0
}
