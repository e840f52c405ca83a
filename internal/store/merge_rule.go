package store

import (
	"gorm.io/gorm"

	"github.com/prbot/prbot/internal/model"
	pkgerrors "github.com/prbot/prbot/pkg/errors"
)

// MergeRuleStore manages MergeRule persistence.
type MergeRuleStore interface {
	ListByRepository(repositoryID uint) ([]model.MergeRule, error)
	Create(rule *model.MergeRule) error
	Delete(id uint) error
}

type mergeRuleStore struct {
	db *gorm.DB
}

func newMergeRuleStore(db *gorm.DB) MergeRuleStore {
	return &mergeRuleStore{db: db}
}

func (s *mergeRuleStore) ListByRepository(repositoryID uint) ([]model.MergeRule, error) {
	var rules []model.MergeRule
	if err := s.db.Where("repository_id = ?", repositoryID).Order("id").Find(&rules).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to list merge rules", err)
	}
	return rules, nil
}

func (s *mergeRuleStore) Create(rule *model.MergeRule) error {
	if err := s.db.Create(rule).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to create merge rule", err)
	}
	return nil
}

func (s *mergeRuleStore) Delete(id uint) error {
	if err := s.db.Delete(&model.MergeRule{}, id).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to delete merge rule", err)
	}
	return nil
}
