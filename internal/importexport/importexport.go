// Package importexport serializes the full entity graph to and from JSON,
// addressing repositories by (owner, name) rather than database ID so a
// dump taken from one instance can be replayed onto a fresh database.
package importexport

import (
	"encoding/json"
	"io"

	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/store"
	"github.com/prbot/prbot/pkg/errors"
)

// Data is the full export payload: every repository and everything scoped
// to one, addressed by path rather than numeric ID.
type Data struct {
	Repositories           []RepositoryRecord           `json:"repositories"`
	PullRequests           []PullRequestRecord          `json:"pull_requests"`
	RepositoryRules        []RepositoryRuleRecord       `json:"repository_rules"`
	MergeRules             []MergeRuleRecord            `json:"merge_rules"`
	ExternalAccounts       []ExternalAccountRecord      `json:"external_accounts"`
	ExternalAccountRights  []ExternalAccountRightRecord `json:"external_account_rights"`
}

type RepositoryRecord struct {
	Owner                  string              `json:"owner"`
	Name                   string              `json:"name"`
	ManualInteraction      bool                `json:"manual_interaction"`
	PRTitleValidationRegex string              `json:"pr_title_validation_regex"`
	DefaultStrategy        model.MergeStrategy `json:"default_strategy"`
	DefaultAutomerge       bool                `json:"default_automerge"`
	DefaultEnableQa        bool                `json:"default_enable_qa"`
	DefaultEnableChecks    bool                `json:"default_enable_checks"`
}

type PullRequestRecord struct {
	Owner            string               `json:"owner"`
	Name             string               `json:"name"`
	Number           uint                 `json:"number"`
	QaStatus         model.QaStatus       `json:"qa_status"`
	StatusCommentID  int64                `json:"status_comment_id"`
	ChecksEnabled    bool                 `json:"checks_enabled"`
	Automerge        bool                 `json:"automerge"`
	Locked           bool                 `json:"locked"`
	StrategyOverride *model.MergeStrategy `json:"strategy_override,omitempty"`
}

type MergeRuleRecord struct {
	Owner      string              `json:"owner"`
	Name       string              `json:"name"`
	BaseBranch string              `json:"base_branch"`
	HeadBranch string              `json:"head_branch"`
	Strategy   model.MergeStrategy `json:"strategy"`
}

type RepositoryRuleRecord struct {
	Owner      string                  `json:"owner"`
	Name       string                  `json:"name"`
	RuleName   string                  `json:"rule_name"`
	Conditions model.RuleConditionList `json:"conditions"`
	Actions    model.RuleActionList    `json:"actions"`
}

type ExternalAccountRecord struct {
	Username   string `json:"username"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

type ExternalAccountRightRecord struct {
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Export serializes the entire entity graph to w as indented JSON.
func Export(st store.Store, w io.Writer) error {
	data, err := collect(st)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode export data", err)
	}
	return nil
}

func collect(st store.Store) (*Data, error) {
	var repos []model.Repository
	if err := st.DB().Find(&repos).Error; err != nil {
		return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to list repositories", err)
	}
	pathByID := make(map[uint][2]string, len(repos))
	data := &Data{}
	for _, r := range repos {
		pathByID[r.ID] = [2]string{r.Owner, r.Name}
		data.Repositories = append(data.Repositories, RepositoryRecord{
			Owner:                  r.Owner,
			Name:                   r.Name,
			ManualInteraction:      r.ManualInteraction,
			PRTitleValidationRegex: r.PRTitleValidationRegex,
			DefaultStrategy:        r.DefaultStrategy,
			DefaultAutomerge:       r.DefaultAutomerge,
			DefaultEnableQa:        r.DefaultEnableQa,
			DefaultEnableChecks:    r.DefaultEnableChecks,
		})
	}

	var prs []model.PullRequest
	if err := st.DB().Find(&prs).Error; err != nil {
		return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to list pull requests", err)
	}
	for _, pr := range prs {
		path := pathByID[pr.RepositoryID]
		data.PullRequests = append(data.PullRequests, PullRequestRecord{
			Owner: path[0], Name: path[1],
			Number: pr.Number, QaStatus: pr.QaStatus, StatusCommentID: pr.StatusCommentID,
			ChecksEnabled: pr.ChecksEnabled, Automerge: pr.Automerge, Locked: pr.Locked,
			StrategyOverride: pr.StrategyOverride,
		})
	}

	var mergeRules []model.MergeRule
	if err := st.DB().Find(&mergeRules).Error; err != nil {
		return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to list merge rules", err)
	}
	for _, mr := range mergeRules {
		path := pathByID[mr.RepositoryID]
		data.MergeRules = append(data.MergeRules, MergeRuleRecord{
			Owner: path[0], Name: path[1],
			BaseBranch: mr.BaseBranch, HeadBranch: mr.HeadBranch, Strategy: mr.Strategy,
		})
	}

	var repoRules []model.RepositoryRule
	if err := st.DB().Find(&repoRules).Error; err != nil {
		return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to list repository rules", err)
	}
	for _, rr := range repoRules {
		path := pathByID[rr.RepositoryID]
		data.RepositoryRules = append(data.RepositoryRules, RepositoryRuleRecord{
			Owner: path[0], Name: path[1],
			RuleName: rr.Name, Conditions: rr.Conditions, Actions: rr.Actions,
		})
	}

	var accounts []model.ExternalAccount
	if err := st.DB().Find(&accounts).Error; err != nil {
		return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to list external accounts", err)
	}
	for _, a := range accounts {
		data.ExternalAccounts = append(data.ExternalAccounts, ExternalAccountRecord{
			Username: a.Username, PublicKey: a.PublicKey, PrivateKey: a.PrivateKey,
		})
	}

	var rights []model.ExternalAccountRight
	if err := st.DB().Find(&rights).Error; err != nil {
		return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to list external account rights", err)
	}
	for _, right := range rights {
		path := pathByID[right.RepositoryID]
		data.ExternalAccountRights = append(data.ExternalAccountRights, ExternalAccountRightRecord{
			Owner: path[0], Name: path[1], Username: right.Username,
		})
	}

	return data, nil
}

// Import reads a Data document from r and loads it into the store:
// repositories first, then everything scoped to one. Repositories and pull
// requests are upserted; merge rules, repository rules, external accounts
// and their rights are always inserted, so one that already exists fails
// the import. Unknown repository paths referenced by a dependent record
// are an error.
func Import(st store.Store, r io.Reader) error {
	var data Data
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return errors.Wrap(errors.ErrCodeValidation, "failed to parse import data", err)
	}
	return load(st, &data)
}

func load(st store.Store, data *Data) error {
	return st.Transaction(func(tx store.Store) error {
		repoIDs := make(map[string]uint, len(data.Repositories))

		for _, rec := range data.Repositories {
			repo, err := upsertRepository(tx, rec)
			if err != nil {
				return err
			}
			repoIDs[rec.Owner+"/"+rec.Name] = repo.ID
		}

		for _, rec := range data.PullRequests {
			repoID, ok := repoIDs[rec.Owner+"/"+rec.Name]
			if !ok {
				return errors.New(errors.ErrCodeValidation, "unknown repository "+rec.Owner+"/"+rec.Name+" referenced by pull request")
			}
			if err := upsertPullRequest(tx, repoID, rec); err != nil {
				return err
			}
		}

		for _, rec := range data.MergeRules {
			repoID, ok := repoIDs[rec.Owner+"/"+rec.Name]
			if !ok {
				return errors.New(errors.ErrCodeValidation, "unknown repository "+rec.Owner+"/"+rec.Name+" referenced by merge rule")
			}
			if err := tx.MergeRule().Create(&model.MergeRule{
				RepositoryID: repoID, BaseBranch: rec.BaseBranch, HeadBranch: rec.HeadBranch, Strategy: rec.Strategy,
			}); err != nil {
				return err
			}
		}

		for _, rec := range data.RepositoryRules {
			repoID, ok := repoIDs[rec.Owner+"/"+rec.Name]
			if !ok {
				return errors.New(errors.ErrCodeValidation, "unknown repository "+rec.Owner+"/"+rec.Name+" referenced by repository rule")
			}
			if err := tx.RepositoryRule().Create(&model.RepositoryRule{
				RepositoryID: repoID, Name: rec.RuleName, Conditions: rec.Conditions, Actions: rec.Actions,
			}); err != nil {
				return err
			}
		}

		for _, rec := range data.ExternalAccounts {
			if err := tx.ExternalAccount().Create(&model.ExternalAccount{
				Username: rec.Username, PublicKey: rec.PublicKey, PrivateKey: rec.PrivateKey,
			}); err != nil {
				return err
			}
		}

		for _, rec := range data.ExternalAccountRights {
			repoID, ok := repoIDs[rec.Owner+"/"+rec.Name]
			if !ok {
				return errors.New(errors.ErrCodeValidation, "unknown repository "+rec.Owner+"/"+rec.Name+" referenced by external account right")
			}
			if err := tx.ExternalAccount().GrantRight(&model.ExternalAccountRight{
				Username: rec.Username, RepositoryID: repoID,
			}); err != nil {
				return err
			}
		}

		return nil
	})
}

func upsertRepository(tx store.Store, rec RepositoryRecord) (*model.Repository, error) {
	existing, err := tx.Repository().FindByPath(rec.Owner, rec.Name)
	if err == nil {
		existing.ManualInteraction = rec.ManualInteraction
		existing.PRTitleValidationRegex = rec.PRTitleValidationRegex
		existing.DefaultStrategy = rec.DefaultStrategy
		existing.DefaultAutomerge = rec.DefaultAutomerge
		existing.DefaultEnableQa = rec.DefaultEnableQa
		existing.DefaultEnableChecks = rec.DefaultEnableChecks
		if err := tx.Repository().Save(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeUnknownRepository {
		return nil, err
	}

	repo := &model.Repository{
		Owner: rec.Owner, Name: rec.Name,
		ManualInteraction: rec.ManualInteraction, PRTitleValidationRegex: rec.PRTitleValidationRegex,
		DefaultStrategy: rec.DefaultStrategy, DefaultAutomerge: rec.DefaultAutomerge,
		DefaultEnableQa: rec.DefaultEnableQa, DefaultEnableChecks: rec.DefaultEnableChecks,
	}
	if err := tx.Repository().Create(repo); err != nil {
		return nil, err
	}
	return repo, nil
}

func upsertPullRequest(tx store.Store, repoID uint, rec PullRequestRecord) error {
	existing, err := tx.PullRequest().FindByNumber(repoID, rec.Number)
	if err == nil {
		existing.QaStatus = rec.QaStatus
		existing.StatusCommentID = rec.StatusCommentID
		existing.ChecksEnabled = rec.ChecksEnabled
		existing.Automerge = rec.Automerge
		existing.Locked = rec.Locked
		existing.StrategyOverride = rec.StrategyOverride
		return tx.PullRequest().Save(existing)
	}
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeUnknownPullRequest {
		return err
	}

	return tx.PullRequest().Create(&model.PullRequest{
		RepositoryID: repoID, Number: rec.Number, QaStatus: rec.QaStatus,
		StatusCommentID: rec.StatusCommentID, ChecksEnabled: rec.ChecksEnabled,
		Automerge: rec.Automerge, Locked: rec.Locked, StrategyOverride: rec.StrategyOverride,
	})
}
