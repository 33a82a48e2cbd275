package repository

import (
	"github.com/confcenter/confcenter/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmailHash(hash string) (*models.User, error)
	Update(user *models.User) error
}

// OAuthAccountRepository defines the interface for linked provider accounts
type OAuthAccountRepository interface {
	Create(account *models.OAuthAccount) error
	GetByProviderUserID(provider, providerUserID string) (*models.OAuthAccount, error)
}

// ConfigRepository defines the interface for config-record database operations
type ConfigRepository interface {
	Create(record *models.ConfigRecord) error
	GetByUUID(uuid string) (*models.ConfigRecord, error)
	GetByServiceEnv(serviceName, envName string) (*models.ConfigRecord, error)
	List(limit int) ([]models.ConfigRecord, error)
	Update(record *models.ConfigRecord) error
	DeleteByUUID(uuid string) error
	DistinctEnvironments() ([]string, error)
	DistinctServices() ([]string, error)
}

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	OAuthAccount OAuthAccountRepository
	Config       ConfigRepository
}
