package repository

import (
	"gorm.io/gorm"

	"github.com/confcenter/confcenter/app/models"
)

// oauthAccountRepository implements the OAuthAccountRepository interface
type oauthAccountRepository struct {
	db *gorm.DB
}

// NewOAuthAccountRepository creates a new provider-account repository instance
func NewOAuthAccountRepository(db *gorm.DB) OAuthAccountRepository {
	return &oauthAccountRepository{db: db}
}

// Create links a provider identity to a user
func (r *oauthAccountRepository) Create(account *models.OAuthAccount) error {
	return r.db.Create(account).Error
}

// GetByProviderUserID retrieves a linked account by its unique provider pair
func (r *oauthAccountRepository) GetByProviderUserID(provider, providerUserID string) (*models.OAuthAccount, error) {
	var account models.OAuthAccount
	err := r.db.Where("provider = ? AND provider_user_id = ?", provider, providerUserID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}
