package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prbot/prbot/internal/model"
	pkgerrors "github.com/prbot/prbot/pkg/errors"
)

// RepositoryStore manages Repository persistence.
type RepositoryStore interface {
	FindByPath(owner, name string) (*model.Repository, error)
	FindByPathForUpdate(owner, name string) (*model.Repository, error)
	Create(repo *model.Repository) error
	Save(repo *model.Repository) error
}

type repositoryStore struct {
	db *gorm.DB
}

func newRepositoryStore(db *gorm.DB) RepositoryStore {
	return &repositoryStore{db: db}
}

func (s *repositoryStore) FindByPath(owner, name string) (*model.Repository, error) {
	var repo model.Repository
	err := s.db.Where("owner = ? AND name = ?", owner, name).First(&repo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.ErrCodeUnknownRepository, "repository not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to load repository", err)
	}
	return &repo, nil
}

// FindByPathForUpdate loads the row with a SELECT ... FOR UPDATE locking
// clause, for callers that mutate it inside a transaction.
func (s *repositoryStore) FindByPathForUpdate(owner, name string) (*model.Repository, error) {
	var repo model.Repository
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner = ? AND name = ?", owner, name).First(&repo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.ErrCodeUnknownRepository, "repository not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to load repository", err)
	}
	return &repo, nil
}

func (s *repositoryStore) Create(repo *model.Repository) error {
	if err := s.db.Create(repo).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to create repository", err)
	}
	return nil
}

func (s *repositoryStore) Save(repo *model.Repository) error {
	if err := s.db.Save(repo).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeDBQuery, "failed to save repository", err)
	}
	return nil
}
