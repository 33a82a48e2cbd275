package models

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	AuthProviderEmail  = "email"
	AuthProviderGoogle = "google"
)

// AuthProviders is the list of auth methods linked to a user, stored as
// a JSON array column.
type AuthProviders []string

func (p AuthProviders) Value() (driver.Value, error) {
	if p == nil {
		p = AuthProviders{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *AuthProviders) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported type for auth providers column")
	}
}

type User struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Name          string        `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email         string        `gorm:"type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	EmailHash     string        `gorm:"uniqueIndex;type:char(64)" json:"-"`
	EmailVerified bool          `gorm:"default:false" json:"email_verified"`
	Password      string        `gorm:"type:text" json:"-"` // empty for provider-only accounts
	AuthProviders AuthProviders `gorm:"type:json" json:"auth_providers"`
	IsAdmin       bool          `gorm:"default:false" json:"is_admin"`
	LastLoginAt   *time.Time    `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	if err := v.Struct(u); err != nil {
		return err
	}
	// At least one auth method must exist
	if u.Password == "" && len(u.AuthProviders) == 0 {
		return errors.New("user requires a password or a linked auth provider")
	}
	return nil
}

// CreateUser builds a password-backed user ready for persistence.
func CreateUser(name string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	u := &User{
		Name:          name,
		Email:         email,
		EmailHash:     HashEmail(email),
		Password:      pw,
		AuthProviders: AuthProviders{AuthProviderEmail},
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// CreateProviderUser builds a password-less user backed only by an
// external identity provider.
func CreateProviderUser(name string, email string, provider string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u := &User{
		Name:          name,
		Email:         email,
		EmailHash:     HashEmail(email),
		AuthProviders: AuthProviders{provider},
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// HashEmail produces the case-insensitive lookup hash for an email.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
// Fails closed on malformed or empty hashes.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// HasProvider reports whether the provider is already linked.
func (u *User) HasProvider(provider string) bool {
	for _, p := range u.AuthProviders {
		if p == provider {
			return true
		}
	}
	return false
}

// AddProvider links a provider name, keeping the list free of duplicates.
func (u *User) AddProvider(provider string) {
	if !u.HasProvider(provider) {
		u.AuthProviders = append(u.AuthProviders, provider)
	}
}
