// Package store provides data access layer interfaces and implementations.
// This package abstracts database operations to improve maintainability
// and decouple business logic from specific database implementations.
package store

import "gorm.io/gorm"

// Store aggregates all data store interfaces.
// It provides a single point of access for all database operations.
type Store interface {
	Repository() RepositoryStore
	PullRequest() PullRequestStore
	MergeRule() MergeRuleStore
	RepositoryRule() RepositoryRuleStore
	ExternalAccount() ExternalAccountStore

	// DB returns the underlying database connection for advanced operations.
	// Use sparingly - prefer using specific store methods.
	DB() *gorm.DB

	// Transaction executes operations within a database transaction.
	Transaction(fn func(Store) error) error
}

// gormStore implements Store interface using GORM.
type gormStore struct {
	db                   *gorm.DB
	repositoryStore      RepositoryStore
	pullRequestStore     PullRequestStore
	mergeRuleStore       MergeRuleStore
	repositoryRuleStore  RepositoryRuleStore
	externalAccountStore ExternalAccountStore
}

// NewStore creates a new Store instance with GORM backend.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:                   db,
		repositoryStore:      newRepositoryStore(db),
		pullRequestStore:     newPullRequestStore(db),
		mergeRuleStore:       newMergeRuleStore(db),
		repositoryRuleStore:  newRepositoryRuleStore(db),
		externalAccountStore: newExternalAccountStore(db),
	}
}

func (s *gormStore) Repository() RepositoryStore { return s.repositoryStore }

func (s *gormStore) PullRequest() PullRequestStore { return s.pullRequestStore }

func (s *gormStore) MergeRule() MergeRuleStore { return s.mergeRuleStore }

func (s *gormStore) RepositoryRule() RepositoryRuleStore { return s.repositoryRuleStore }

func (s *gormStore) ExternalAccount() ExternalAccountStore { return s.externalAccountStore }

func (s *gormStore) DB() *gorm.DB { return s.db }

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		txStore := &gormStore{
			db:                   tx,
			repositoryStore:      newRepositoryStore(tx),
			pullRequestStore:     newPullRequestStore(tx),
			mergeRuleStore:       newMergeRuleStore(tx),
			repositoryRuleStore:  newRepositoryRuleStore(tx),
			externalAccountStore: newExternalAccountStore(tx),
		}
		return fn(txStore)
	})
}
