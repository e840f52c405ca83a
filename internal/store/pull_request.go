package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prbot/prbot/internal/model"
	pkgerrors "github.com/prbot/prbot/pkg/errors"
)

// PullRequestStore manages PullRequest persistence.
type PullRequestStore interface {
	FindByNumber(repositoryID uint, number uint) (*model.PullRequest, error)
	FindByNumberForUpdate(repositoryID uint, number uint) (*model.PullRequest, error)
	Create(pr *model.PullRequest) error
	Save(pr *model.PullRequest) error
	// ListAllWithRepository returns every tracked pull request with its
	// Repository preloaded, for the periodic resync scheduler to walk.
	ListAllWithRepository() ([]model.PullRequest, error)
}

type pullRequestStore struct {
	db *gorm.DB
}

func newPullRequestStore(db *gorm.DB) PullRequestStore {
	return &pullRequestStore{db: db}
}

func (s *pullRequestStore) FindByNumber(repositoryID uint, number uint) (*model.PullRequest, error) {
	var pr model.PullRequest
	err := s.db.Where("repository_id = ? AND number = ?", repositoryID, number).First(&pr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.ErrCodeUnknownPullRequest, "pull request not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to load pull request", err)
	}
	return &pr, nil
}

func (s *pullRequestStore) FindByNumberForUpdate(repositoryID uint, number uint) (*model.PullRequest, error) {
	var pr model.PullRequest
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("repository_id = ? AND number = ?", repositoryID, number).First(&pr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.ErrCodeUnknownPullRequest, "pull request not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to load pull request", err)
	}
	return &pr, nil
}

func (s *pullRequestStore) Create(pr *model.PullRequest) error {
	if err := s.db.Create(pr).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to create pull request", err)
	}
	return nil
}

func (s *pullRequestStore) Save(pr *model.PullRequest) error {
	if err := s.db.Save(pr).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to save pull request", err)
	}
	return nil
}

func (s *pullRequestStore) ListAllWithRepository() ([]model.PullRequest, error) {
	var prs []model.PullRequest
	if err := s.db.Preload("Repository").Find(&prs).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to list pull requests", err)
	}
	return prs, nil
}
