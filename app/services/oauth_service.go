package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/confcenter/confcenter/app/models"
	"github.com/confcenter/confcenter/app/repository"
	"github.com/confcenter/confcenter/internal/pkg/apperrors"
)

// ExternalProfile is the provider-confirmed identity obtained after the
// authorization-code exchange and profile fetch.
type ExternalProfile struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	EmailVerified  bool
}

// OAuthExchangeError wraps any non-success from the provider side of
// the authorization flow.
func OAuthExchangeError(err error) error {
	return &apperrors.Error{Kind: apperrors.KindUpstream, Message: "OAuth exchange with provider failed", Err: err}
}

// OAuthService maps external identities onto local users.
type OAuthService struct {
	users    repository.UserRepository
	accounts repository.OAuthAccountRepository
}

func NewOAuthService(users repository.UserRepository, accounts repository.OAuthAccountRepository) *OAuthService {
	return &OAuthService{users: users, accounts: accounts}
}

// LinkOrCreateUser resolves a provider profile to a local user:
// an existing (provider, provider_user_id) link wins; otherwise the
// profile is merged onto an existing user by email, but only when the
// provider vouches for the email. Unverified emails always get a fresh
// account so an email claim alone cannot take over an existing user.
func (s *OAuthService) LinkOrCreateUser(profile ExternalProfile) (*models.User, error) {
	if profile.Provider == "" || profile.ProviderUserID == "" {
		return nil, apperrors.Upstreamf("provider profile is missing an identity")
	}

	account, err := s.accounts.GetByProviderUserID(profile.Provider, profile.ProviderUserID)
	if err == nil {
		user, err := s.users.GetByID(account.UserID)
		if err != nil {
			return nil, apperrors.Connectivity(err)
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Connectivity(err)
	}

	user, err := s.resolveUserForProfile(profile)
	if err != nil {
		return nil, err
	}

	link := &models.OAuthAccount{
		UserID:         user.ID,
		Provider:       profile.Provider,
		ProviderUserID: profile.ProviderUserID,
	}
	if err := s.accounts.Create(link); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperrors.Connectivity(err)
	}

	if !user.HasProvider(profile.Provider) {
		user.AddProvider(profile.Provider)
		if err := s.users.Update(user); err != nil {
			log.Printf("failed to record provider %s on user %d: %v", profile.Provider, user.ID, err)
		}
	}

	return user, nil
}

func (s *OAuthService) resolveUserForProfile(profile ExternalProfile) (*models.User, error) {
	if profile.Email != "" && profile.EmailVerified {
		user, err := s.users.GetByEmailHash(models.HashEmail(profile.Email))
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Connectivity(err)
		}
	}

	email := profile.Email
	if email == "" || !profile.EmailVerified {
		// Synthetic address keeps the unique email_hash index satisfied
		// without claiming a real mailbox.
		email = fmt.Sprintf("%s_%s@%s.oauth.local", profile.Provider, profile.ProviderUserID, profile.Provider)
	}

	name := profile.Name
	if name == "" {
		name = "User"
	}

	user, err := models.CreateProviderUser(name, email, profile.Provider)
	if err != nil {
		return nil, apperrors.Upstreamf("provider profile is unusable: %v", err)
	}
	user.EmailVerified = profile.EmailVerified

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflictf("user with email '%s' already exists", email)
		}
		return nil, apperrors.Connectivity(err)
	}

	log.Printf("created user %d via %s", user.ID, profile.Provider)
	return user, nil
}
