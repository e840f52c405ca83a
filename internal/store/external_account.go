package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/prbot/prbot/internal/model"
	pkgerrors "github.com/prbot/prbot/pkg/errors"
)

// ExternalAccountStore manages ExternalAccount and ExternalAccountRight persistence.
type ExternalAccountStore interface {
	FindByUsername(username string) (*model.ExternalAccount, error)
	Create(account *model.ExternalAccount) error
	Delete(username string) error

	HasRight(username string, repositoryID uint) (bool, error)
	GrantRight(right *model.ExternalAccountRight) error
	RevokeRight(username string, repositoryID uint) error
}

type externalAccountStore struct {
	db *gorm.DB
}

func newExternalAccountStore(db *gorm.DB) ExternalAccountStore {
	return &externalAccountStore{db: db}
}

func (s *externalAccountStore) FindByUsername(username string) (*model.ExternalAccount, error) {
	var account model.ExternalAccount
	err := s.db.Where("username = ?", username).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.ErrCodeUnknownExternalAccount, "external account not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to load external account", err)
	}
	return &account, nil
}

func (s *externalAccountStore) Create(account *model.ExternalAccount) error {
	if err := s.db.Create(account).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to create external account", err)
	}
	return nil
}

func (s *externalAccountStore) Delete(username string) error {
	if err := s.db.Delete(&model.ExternalAccount{}, "username = ?", username).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to delete external account", err)
	}
	return nil
}

func (s *externalAccountStore) HasRight(username string, repositoryID uint) (bool, error) {
	var count int64
	err := s.db.Model(&model.ExternalAccountRight{}).
		Where("username = ? AND repository_id = ?", username, repositoryID).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to check external account right", err)
	}
	return count > 0, nil
}

func (s *externalAccountStore) GrantRight(right *model.ExternalAccountRight) error {
	if err := s.db.Create(right).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to grant external account right", err)
	}
	return nil
}

func (s *externalAccountStore) RevokeRight(username string, repositoryID uint) error {
	err := s.db.Delete(&model.ExternalAccountRight{}, "username = ? AND repository_id = ?", username, repositoryID).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to revoke external account right", err)
	}
	return nil
}
