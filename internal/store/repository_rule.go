package store

import (
	"gorm.io/gorm"

	"github.com/prbot/prbot/internal/model"
	pkgerrors "github.com/prbot/prbot/pkg/errors"
)

// RepositoryRuleStore manages RepositoryRule persistence.
type RepositoryRuleStore interface {
	ListByRepository(repositoryID uint) ([]model.RepositoryRule, error)
	Create(rule *model.RepositoryRule) error
	Delete(id uint) error
}

type repositoryRuleStore struct {
	db *gorm.DB
}

func newRepositoryRuleStore(db *gorm.DB) RepositoryRuleStore {
	return &repositoryRuleStore{db: db}
}

func (s *repositoryRuleStore) ListByRepository(repositoryID uint) ([]model.RepositoryRule, error) {
	var rules []model.RepositoryRule
	if err := s.db.Where("repository_id = ?", repositoryID).Order("id").Find(&rules).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to list repository rules", err)
	}
	return rules, nil
}

func (s *repositoryRuleStore) Create(rule *model.RepositoryRule) error {
	if err := s.db.Create(rule).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to create repository rule", err)
	}
	return nil
}

func (s *repositoryRuleStore) Delete(id uint) error {
	if err := s.db.Delete(&model.RepositoryRule{}, id).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to delete repository rule", err)
	}
	return nil
}
