package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/confcenter/confcenter/app/models"
	"github.com/confcenter/confcenter/app/repository"
	"github.com/confcenter/confcenter/internal/pkg/apperrors"
	"github.com/confcenter/confcenter/internal/pkg/token"
)

// dummy bcrypt target so a login against an unknown email costs the
// same as one against a wrong password.
var timingPadHash, _ = models.HashPassword("confcenter-timing-pad")

// AuthService orchestrates registration, login and stateless token
// validation. It holds no per-session state.
type AuthService struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users repository.UserRepository, secret []byte) *AuthService {
	return &AuthService{
		users:    users,
		secret:   secret,
		tokenTTL: token.DefaultTTL,
	}
}

// Register creates a password-backed user. The email must not already
// be registered (case-insensitive). The caller is not logged in by this.
func (s *AuthService) Register(name, email, password string) (uint, error) {
	if len(password) < 6 {
		return 0, apperrors.Validationf("password must be at least 6 characters")
	}

	user, err := models.CreateUser(name, email, password)
	if err != nil {
		return 0, apperrors.Validationf("invalid user data: %v", err)
	}

	if _, err := s.users.GetByEmailHash(user.EmailHash); err == nil {
		return 0, apperrors.Conflictf("user with email '%s' already exists", user.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.Connectivity(err)
	}

	if err := s.users.Create(user); err != nil {
		// The unique email_hash index closes the pre-check race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperrors.Conflictf("user with email '%s' already exists", user.Email)
		}
		return 0, apperrors.Connectivity(err)
	}

	log.Printf("registered user %d (%s)", user.ID, user.Email)
	return user.ID, nil
}

// Login verifies the credentials and issues a signed session token. The
// failure is identical for unknown email and wrong password.
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmailHash(models.HashEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a hash comparison so the failure timing stays flat.
			models.CheckPasswordHash(password, timingPadHash)
			return "", nil, apperrors.Unauthorizedf("invalid email or password")
		}
		return "", nil, apperrors.Connectivity(err)
	}

	if user.Password == "" {
		// Provider-only account; no password login possible.
		models.CheckPasswordHash(password, timingPadHash)
		return "", nil, apperrors.Unauthorizedf("invalid email or password")
	}

	if !user.CheckPassword(password) {
		return "", nil, apperrors.Unauthorizedf("invalid email or password")
	}

	tok, err := token.Issue(user.ID, s.secret, s.tokenTTL)
	if err != nil {
		return "", nil, apperrors.Unauthorizedf("could not issue session token")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.users.Update(user); err != nil {
		log.Printf("failed to update last login for user %d: %v", user.ID, err)
	}

	return tok, user, nil
}

// IssueToken signs a session token for an already-authenticated user
// (used by the OAuth callback).
func (s *AuthService) IssueToken(userID uint) (string, error) {
	tok, err := token.Issue(userID, s.secret, s.tokenTTL)
	if err != nil {
		return "", apperrors.Unauthorizedf("could not issue session token")
	}
	return tok, nil
}

// AuthenticateToken validates a bearer token and loads its user. Any
// token defect or a missing user is unauthorized.
func (s *AuthService) AuthenticateToken(tok string) (*models.User, error) {
	userID, err := token.Verify(tok, s.secret)
	if err != nil {
		return nil, apperrors.Unauthorizedf("invalid or expired token")
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorizedf("invalid or expired token")
		}
		return nil, apperrors.Connectivity(err)
	}

	return user, nil
}

// GetUserByEmail returns the user behind an email address; the caller
// serializes it without the password hash.
func (s *AuthService) GetUserByEmail(email string) (*models.User, error) {
	user, err := s.users.GetByEmailHash(models.HashEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("user with email '%s' not found", email)
		}
		return nil, apperrors.Connectivity(err)
	}
	return user, nil
}
