package importexport

import (
	"encoding/json"
	"io"

	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/store"
	"github.com/prbot/prbot/pkg/errors"
)

// maxInt64 is the largest value an int64 column can hold; older exports
// sourced from a database with a wider ID type can carry a status comment
// ID past that, which SQLite/Postgres would reject outright.
const maxInt64 = 1<<63 - 1

// legacyRepository is the pre-path-addressing shape: every dependent
// record points at a repository by its integer primary key rather than
// (owner, name).
type legacyRepository struct {
	ID                     uint                `json:"id"`
	Owner                  string              `json:"owner"`
	Name                   string              `json:"name"`
	ManualInteraction      bool                `json:"manual_interaction"`
	PRTitleValidationRegex string              `json:"pr_title_validation_regex"`
	DefaultStrategy        model.MergeStrategy `json:"default_strategy"`
	DefaultAutomerge       bool                `json:"default_automerge"`
	DefaultEnableQa        bool                `json:"default_enable_qa"`
	DefaultEnableChecks    bool                `json:"default_enable_checks"`
}

type legacyPullRequest struct {
	RepositoryID     uint                 `json:"repository_id"`
	Number           uint                 `json:"number"`
	QaStatus         model.QaStatus       `json:"qa_status"`
	StatusCommentID  uint64               `json:"status_comment_id"`
	ChecksEnabled    bool                 `json:"checks_enabled"`
	Automerge        bool                 `json:"automerge"`
	Locked           bool                 `json:"locked"`
	StrategyOverride *model.MergeStrategy `json:"strategy_override"`
}

type legacyMergeRule struct {
	RepositoryID uint                `json:"repository_id"`
	BaseBranch   string              `json:"base_branch"`
	HeadBranch   string              `json:"head_branch"`
	Strategy     model.MergeStrategy `json:"strategy"`
}

// legacyRepositoryRule is keyed "pull_request_rules" in the older export
// format; "repository_rules" was its later rename.
type legacyRepositoryRule struct {
	RepositoryID uint                    `json:"repository_id"`
	Name         string                  `json:"name"`
	Conditions   model.RuleConditionList `json:"conditions"`
	Actions      model.RuleActionList    `json:"actions"`
}

type legacyExternalAccount struct {
	Username   string `json:"username"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

type legacyExternalAccountRight struct {
	RepositoryID uint   `json:"repository_id"`
	Username     string `json:"username"`
}

type legacyData struct {
	Repositories          []legacyRepository          `json:"repositories"`
	PullRequests          []legacyPullRequest          `json:"pull_requests"`
	PullRequestRules      []legacyRepositoryRule       `json:"pull_request_rules"`
	MergeRules            []legacyMergeRule            `json:"merge_rules"`
	ExternalAccounts      []legacyExternalAccount      `json:"external_accounts"`
	ExternalAccountRights []legacyExternalAccountRight `json:"external_account_rights"`
}

// ImportCompatibility reads the older integer-ID export format (the
// "pull_request_rules" key predates the repository_rules rename, and
// every dependent record refers to its repository by primary key rather
// than path) and loads it the same way Import does.
func ImportCompatibility(st store.Store, r io.Reader) error {
	var legacy legacyData
	if err := json.NewDecoder(r).Decode(&legacy); err != nil {
		return errors.Wrap(errors.ErrCodeValidation, "failed to parse legacy import data", err)
	}

	pathByID := make(map[uint][2]string, len(legacy.Repositories))
	data := &Data{}

	for _, rec := range legacy.Repositories {
		pathByID[rec.ID] = [2]string{rec.Owner, rec.Name}
		data.Repositories = append(data.Repositories, RepositoryRecord{
			Owner: rec.Owner, Name: rec.Name,
			ManualInteraction: rec.ManualInteraction, PRTitleValidationRegex: rec.PRTitleValidationRegex,
			DefaultStrategy: rec.DefaultStrategy, DefaultAutomerge: rec.DefaultAutomerge,
			DefaultEnableQa: rec.DefaultEnableQa, DefaultEnableChecks: rec.DefaultEnableChecks,
		})
	}

	for _, rec := range legacy.PullRequests {
		path, ok := pathByID[rec.RepositoryID]
		if !ok {
			return errors.New(errors.ErrCodeValidation, "pull request references unknown repository id")
		}
		var statusCommentID int64
		if rec.StatusCommentID <= maxInt64 {
			statusCommentID = int64(rec.StatusCommentID)
		}
		data.PullRequests = append(data.PullRequests, PullRequestRecord{
			Owner: path[0], Name: path[1], Number: rec.Number, QaStatus: rec.QaStatus,
			StatusCommentID: statusCommentID, ChecksEnabled: rec.ChecksEnabled,
			Automerge: rec.Automerge, Locked: rec.Locked, StrategyOverride: rec.StrategyOverride,
		})
	}

	for _, rec := range legacy.MergeRules {
		path, ok := pathByID[rec.RepositoryID]
		if !ok {
			return errors.New(errors.ErrCodeValidation, "merge rule references unknown repository id")
		}
		data.MergeRules = append(data.MergeRules, MergeRuleRecord{
			Owner: path[0], Name: path[1], BaseBranch: rec.BaseBranch, HeadBranch: rec.HeadBranch, Strategy: rec.Strategy,
		})
	}

	for _, rec := range legacy.ExternalAccounts {
		data.ExternalAccounts = append(data.ExternalAccounts, ExternalAccountRecord{
			Username: rec.Username, PublicKey: rec.PublicKey, PrivateKey: rec.PrivateKey,
		})
	}

	for _, rec := range legacy.ExternalAccountRights {
		path, ok := pathByID[rec.RepositoryID]
		if !ok {
			return errors.New(errors.ErrCodeValidation, "external account right references unknown repository id")
		}
		data.ExternalAccountRights = append(data.ExternalAccountRights, ExternalAccountRightRecord{
			Owner: path[0], Name: path[1], Username: rec.Username,
		})
	}

	for _, rec := range legacy.PullRequestRules {
		path, ok := pathByID[rec.RepositoryID]
		if !ok {
			return errors.New(errors.ErrCodeValidation, "pull request rule references unknown repository id")
		}
		data.RepositoryRules = append(data.RepositoryRules, RepositoryRuleRecord{
			Owner: path[0], Name: path[1], RuleName: rec.Name, Conditions: rec.Conditions, Actions: rec.Actions,
		})
	}

	return load(st, data)
}
