package model

import (
	"time"

	"gorm.io/gorm"
)

// ExternalAccount is a caller identity allowed to hit the
// POST /external/set-qa-status endpoint. Requests are authenticated with an
// RS256 JWT signed by PrivateKey and verified against PublicKey.
type ExternalAccount struct {
	Username  string         `gorm:"primarykey" json:"username"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PublicKey  string `gorm:"type:text;not null" json:"public_key"`
	PrivateKey string `gorm:"type:text;not null" json:"-"`

	Rights []ExternalAccountRight `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE" json:"-"`
}

func (ExternalAccount) TableName() string { return "external_account" }

// ExternalAccountRight grants an ExternalAccount permission to act on a
// single repository; many-to-many between accounts and repositories.
type ExternalAccountRight struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username string `gorm:"uniqueIndex:idx_external_account_right;not null" json:"username"`

	RepositoryID uint       `gorm:"uniqueIndex:idx_external_account_right;not null" json:"repository_id"`
	Repository   Repository `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (ExternalAccountRight) TableName() string { return "external_account_right" }
